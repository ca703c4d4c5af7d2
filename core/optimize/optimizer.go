package optimize

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/kilianp07/transitopt/core/logger"
	"github.com/kilianp07/transitopt/core/model"
	"github.com/kilianp07/transitopt/internal/mip"
)

// Status is the terminal state of an optimizer run.
type Status string

const (
	StatusOptimal    Status = "Optimal"
	StatusInfeasible Status = "Infeasible"
	StatusUnbounded  Status = "Unbounded"
	StatusFailed     Status = "Failed"
)

// Result holds a finished optimizer run. Rows and Summary are only
// populated when Status is StatusOptimal; a degraded solve carries the
// status alone and must not be simulated.
type Result struct {
	Status    Status
	Objective float64
	Rows      []model.Allocation
	Summary   model.AllocationSummary
	SolveTime time.Duration
}

// Optimizer builds and solves the bus allocation program.
type Optimizer struct {
	cfg    Config
	routes []string
	demand model.DemandTable
	log    logger.Logger
}

// New creates an Optimizer over the given route IDs and demand table.
func New(cfg Config, routes []string, demand model.DemandTable, log logger.Logger) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer config: %w", err)
	}
	return &Optimizer{cfg: cfg, routes: routes, demand: demand, log: log}, nil
}

// variable indexing: buses occupy [0, R*S), overload [R*S, 2*R*S).
func (o *Optimizer) busVar(route, slot int) int {
	return route*o.cfg.HorizonSlots + slot
}

func (o *Optimizer) overloadVar(route, slot int) int {
	return len(o.routes)*o.cfg.HorizonSlots + route*o.cfg.HorizonSlots + slot
}

// Solve builds the model, runs the integer-programming oracle and
// extracts the allocation. An empty demand table is still modeled and
// solved; it yields an all-zero allocation with objective zero.
func (o *Optimizer) Solve() Result {
	p := o.buildProblem()
	o.log.Infof("solving allocation model: %d routes, %d slots, %d variables, %d constraints",
		len(o.routes), o.cfg.HorizonSlots, len(p.C), len(p.H))

	start := time.Now()
	sol := mip.Solve(p)
	elapsed := time.Since(start)

	status := statusOf(sol.Status)
	if status != StatusOptimal {
		o.log.Warnf("allocation solve ended %s after %s", status, elapsed)
		return Result{Status: status, SolveTime: elapsed}
	}

	res := o.extract(sol)
	res.SolveTime = elapsed
	o.log.Infof("allocation solved in %s: objective=%.2f bus_hours=%.2f max_buses=%d/%d overload=%.1f",
		elapsed, res.Objective, res.Summary.TotalBusHours,
		res.Summary.MaxBusesUsed, o.cfg.FleetSize, res.Summary.TotalOverloadPassengers)
	return res
}

func statusOf(s mip.Status) Status {
	switch s {
	case mip.StatusOptimal:
		return StatusOptimal
	case mip.StatusInfeasible:
		return StatusInfeasible
	case mip.StatusUnbounded:
		return StatusUnbounded
	default:
		return StatusFailed
	}
}

// buildProblem assembles objective and constraint matrices. All rows
// are of the form g·x ≤ h.
func (o *Optimizer) buildProblem() mip.Problem {
	nRoutes := len(o.routes)
	nSlots := o.cfg.HorizonSlots
	nVars := 2 * nRoutes * nSlots

	c := make([]float64, nVars)
	integer := make([]bool, nVars)
	busHourCost := float64(o.cfg.SlotMinutes) / 60 * o.cfg.CostPerBusHour
	for r := 0; r < nRoutes; r++ {
		for s := 0; s < nSlots; s++ {
			c[o.busVar(r, s)] = busHourCost
			integer[o.busVar(r, s)] = true
			c[o.overloadVar(r, s)] = o.cfg.OverloadPenalty
		}
	}

	// Fleet cap rows come first, one per slot; demand-dependent rows
	// follow.
	minBuses := o.cfg.minBusesPerSlot()
	maxBuses := o.cfg.maxBusesPerSlot()
	rows := nSlots
	for r := 0; r < nRoutes; r++ {
		for s := 0; s < nSlots; s++ {
			if o.demandAt(r, s) <= 0 {
				continue
			}
			rows += 2 // capacity + min service
			if maxBuses > 0 {
				rows++
			}
		}
	}

	g := mat.NewDense(rows, nVars, nil)
	h := make([]float64, rows)

	for s := 0; s < nSlots; s++ {
		for r := 0; r < nRoutes; r++ {
			g.Set(s, o.busVar(r, s), 1)
		}
		h[s] = float64(o.cfg.FleetSize)
	}

	row := nSlots
	for r := 0; r < nRoutes; r++ {
		for s := 0; s < nSlots; s++ {
			demand := o.demandAt(r, s)
			if demand <= 0 {
				continue
			}
			// buses*capacity + overload >= demand
			g.Set(row, o.busVar(r, s), -float64(o.cfg.BusCapacity))
			g.Set(row, o.overloadVar(r, s), -1)
			h[row] = -demand
			row++
			// buses >= minBuses
			g.Set(row, o.busVar(r, s), -1)
			h[row] = -float64(minBuses)
			row++
			if maxBuses > 0 {
				g.Set(row, o.busVar(r, s), 1)
				h[row] = float64(maxBuses)
				row++
			}
		}
	}

	return mip.Problem{C: c, G: g, H: h, Integer: integer}
}

func (o *Optimizer) demandAt(route, slot int) float64 {
	return o.demand[model.RouteSlot{RouteID: o.routes[route], Slot: slot}]
}

// extract turns the variable assignment into allocation rows and the
// run summary. Rows are emitted for every (route,slot) with buses or
// overload, ordered by route then slot.
func (o *Optimizer) extract(sol mip.Solution) Result {
	res := Result{Status: StatusOptimal, Objective: round(sol.Objective, 2)}

	for r, routeID := range o.routes {
		for s := 0; s < o.cfg.HorizonSlots; s++ {
			buses := int(math.Round(sol.X[o.busVar(r, s)]))
			overload := sol.X[o.overloadVar(r, s)]
			if buses <= 0 && overload <= 1e-9 {
				continue
			}
			busHours := float64(buses) * float64(o.cfg.SlotMinutes) / 60
			res.Rows = append(res.Rows, model.Allocation{
				RouteID:            routeID,
				TimeSlot:           s,
				HourOfDay:          model.HourOfDay(s, o.cfg.SlotMinutes),
				Buses:              buses,
				OverloadPassengers: round(overload, 1),
				BusHours:           round(busHours, 2),
				CapacityProvided:   buses * o.cfg.BusCapacity,
				ForecastDemand:     o.demandAt(r, s),
			})
		}
	}

	res.Summary = Summarize(res.Rows, o.cfg.FleetSize)
	return res
}

// Summarize aggregates allocation rows into the run summary. It works
// on exported rows too, so a stored allocation can be replayed without
// the solver state that produced it.
func Summarize(rows []model.Allocation, fleetSize int) model.AllocationSummary {
	var sum model.AllocationSummary
	slotBuses := make(map[int]int)
	routesSeen := make(map[string]struct{})
	var totalDemand, totalCapacity float64

	for _, row := range rows {
		sum.TotalBusHours += row.BusHours
		sum.TotalOverloadPassengers += row.OverloadPassengers
		slotBuses[row.TimeSlot] += row.Buses
		routesSeen[row.RouteID] = struct{}{}
		totalDemand += row.ForecastDemand
		totalCapacity += float64(row.CapacityProvided)
	}

	for _, n := range slotBuses {
		if n > sum.MaxBusesUsed {
			sum.MaxBusesUsed = n
		}
	}
	if fleetSize > 0 {
		sum.FleetUtilization = round(float64(sum.MaxBusesUsed)/float64(fleetSize), 3)
	}
	if totalCapacity > 0 {
		sum.AverageLoadFactor = round(totalDemand/totalCapacity, 3)
	}
	sum.TotalBusHours = round(sum.TotalBusHours, 2)
	sum.TotalOverloadPassengers = round(sum.TotalOverloadPassengers, 1)
	sum.RoutesServed = len(routesSeen)
	sum.ActiveTimeSlots = len(slotBuses)
	return sum
}

func round(v float64, digits int) float64 {
	pow := math.Pow(10, float64(digits))
	return math.Round(v*pow) / pow
}
