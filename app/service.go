package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/transitopt/config"
	"github.com/kilianp07/transitopt/core/forecast"
	coremetrics "github.com/kilianp07/transitopt/core/metrics"
	"github.com/kilianp07/transitopt/core/model"
	"github.com/kilianp07/transitopt/core/optimize"
	"github.com/kilianp07/transitopt/core/sim"
	"github.com/kilianp07/transitopt/core/synth"
	"github.com/kilianp07/transitopt/infra/dataset"
	"github.com/kilianp07/transitopt/infra/logger"
	"github.com/kilianp07/transitopt/infra/metrics"
	"github.com/kilianp07/transitopt/pkg/export"
	"github.com/kilianp07/transitopt/pkg/report"
)

// Service orchestrates one planning run: data, forecast, allocation,
// simulation and export.
type Service struct {
	cfg         *config.Config
	sink        coremetrics.MetricsSink
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	return &Service{
		cfg:         cfg,
		sink:        sink,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// inputs bundles the tables a run operates on.
type inputs struct {
	routes     []model.Route
	demand     model.DemandTable
	stopDemand model.StopDemandTable
	travel     model.TravelTimeTable
	accuracy   *forecast.Accuracy
}

// Run executes the full pipeline and writes artifacts to the output
// directory. A non-optimal solve is reported in the run summary and
// skips the simulation stage.
func (s *Service) Run(ctx context.Context) error {
	return s.run(ctx, true)
}

// RunAllocationOnly solves the allocation and writes its artifacts
// without simulating.
func (s *Service) RunAllocationOnly(ctx context.Context) error {
	return s.run(ctx, false)
}

func (s *Service) run(ctx context.Context, simulate bool) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	in, err := s.loadInputs()
	if err != nil {
		return err
	}

	routeIDs := make([]string, len(in.routes))
	for i, r := range in.routes {
		routeIDs[i] = r.ID
	}
	opt, err := optimize.New(s.cfg.Optimizer, routeIDs, in.demand, logger.New("optimizer"))
	if err != nil {
		return err
	}
	res := opt.Solve()

	summary := export.NewRunSummary()
	summary.SolverStatus = string(res.Status)
	summary.Objective = res.Objective
	summary.SolveTimeSeconds = res.SolveTime.Seconds()
	summary.ForecastAccuracy = in.accuracy

	if res.Status == optimize.StatusOptimal {
		summary.Allocation = res.Summary
		if err := s.sink.RecordAllocation(res.Summary, res.Objective, res.SolveTime); err != nil {
			s.log.Warnf("record allocation: %v", err)
		}

		var simRes sim.Result
		if simulate {
			simulator, err := sim.New(s.cfg.Simulation, in.routes, in.stopDemand, in.travel, logger.New("simulator"))
			if err != nil {
				return err
			}
			simRes = simulator.Run(res.Rows, res.Summary)
			summary.KPIs = simRes.KPIs
			summary.SkippedRoutes = simRes.SkippedRoutes
			if err := s.sink.RecordKPIs(simRes.KPIs); err != nil {
				s.log.Warnf("record kpis: %v", err)
			}
		}
		if err := s.writeArtifacts(res.Rows, simRes, summary, simulate); err != nil {
			return err
		}
	} else {
		s.log.Warnf("solve ended %s, skipping simulation", res.Status)
		if err := s.writeArtifacts(nil, sim.Result{}, summary, false); err != nil {
			return err
		}
	}

	s.log.Infof("run %s complete: status=%s objective=%.2f", summary.RunID, summary.SolverStatus, summary.Objective)
	return ctx.Err()
}

// loadInputs reads the recorded tables, or generates synthetic demand
// and traffic when no demand paths are configured. Synthetic runs
// forecast over the generated history and report forecast accuracy.
func (s *Service) loadInputs() (*inputs, error) {
	routes, err := loadCSV(s.cfg.Data.RoutesPath, dataset.LoadRoutes)
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("no routes in %s", s.cfg.Data.RoutesPath)
	}

	if !s.cfg.Data.Synthetic() {
		demand, err := loadCSV(s.cfg.Data.DemandPath, dataset.LoadDemand)
		if err != nil {
			return nil, err
		}
		stopDemand, err := loadCSV(s.cfg.Data.StopDemandPath, dataset.LoadStopDemand)
		if err != nil {
			return nil, err
		}
		travel, err := loadCSV(s.cfg.Data.TravelTimesPath, dataset.LoadTravelTimes)
		if err != nil {
			return nil, err
		}
		return &inputs{routes: routes, demand: demand, stopDemand: stopDemand, travel: travel}, nil
	}

	s.log.Infof("no demand data configured, generating synthetic tables")
	stops := uniqueStops(routes)
	horizon := s.cfg.Optimizer.HorizonSlots
	slotMin := s.cfg.Optimizer.SlotMinutes
	history := synth.PassengerDemand(stops, horizon, slotMin, s.cfg.Synthetic)
	travel := synth.TravelTimes(routes, horizon, slotMin, s.cfg.Synthetic)

	stopForecast := forecast.MovingAverage(history, horizon, slotMin, s.cfg.Forecast.WindowSlots)
	demand := forecast.AggregateByRoute(routes, stopForecast, horizon)
	acc := forecast.Measure(history, stopForecast)

	return &inputs{
		routes:     routes,
		demand:     demand,
		stopDemand: history,
		travel:     travel,
		accuracy:   &acc,
	}, nil
}

func (s *Service) writeArtifacts(rows []model.Allocation, simRes sim.Result, summary export.RunSummary, simulated bool) error {
	dir := s.cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	if summary.SolverStatus == string(optimize.StatusOptimal) {
		if err := writeFile(filepath.Join(dir, "allocation.csv"), rows, export.WriteAllocationCSV); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, "report.html"), rows, func(w io.Writer, rows []model.Allocation) error {
			return report.WriteHTML(w, rows, s.cfg.Optimizer.SlotMinutes)
		}); err != nil {
			return err
		}
	}
	if simulated {
		if err := writeFile(filepath.Join(dir, "stop_events.csv"), simRes.Events, export.WriteEventsCSV); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, "trips.csv"), simRes.Trips, export.WriteTripsCSV); err != nil {
			return err
		}
	}
	return writeFile(filepath.Join(dir, "run_summary.json"), summary, export.WriteRunSummaryJSON)
}

// Simulate replays a stored allocation.csv from the output directory
// through the simulator, refreshing the event, trip and summary
// artifacts without re-solving.
func (s *Service) Simulate(ctx context.Context) error {
	rows, err := loadCSV(filepath.Join(s.cfg.Output.Dir, "allocation.csv"), dataset.LoadAllocations)
	if err != nil {
		return err
	}
	in, err := s.loadInputs()
	if err != nil {
		return err
	}

	allocSummary := optimize.Summarize(rows, s.cfg.Optimizer.FleetSize)
	simulator, err := sim.New(s.cfg.Simulation, in.routes, in.stopDemand, in.travel, logger.New("simulator"))
	if err != nil {
		return err
	}
	simRes := simulator.Run(rows, allocSummary)
	if err := s.sink.RecordKPIs(simRes.KPIs); err != nil {
		s.log.Warnf("record kpis: %v", err)
	}

	summary := export.NewRunSummary()
	summary.SolverStatus = string(optimize.StatusOptimal)
	summary.Allocation = allocSummary
	summary.KPIs = simRes.KPIs
	summary.SkippedRoutes = simRes.SkippedRoutes
	if err := s.writeArtifacts(rows, simRes, summary, true); err != nil {
		return err
	}
	s.log.Infof("replay %s complete: %d trips", summary.RunID, simRes.KPIs.TotalTrips)
	return ctx.Err()
}

func loadCSV[T any](path string, load func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck
	return load(f)
}

func writeFile[T any](path string, data T, write func(w io.Writer, data T) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f, data); err != nil {
		f.Close() //nolint:errcheck
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func uniqueStops(routes []model.Route) []string {
	seen := make(map[string]struct{})
	var stops []string
	for _, r := range routes {
		for _, stopID := range r.Stops {
			if _, ok := seen[stopID]; ok {
				continue
			}
			seen[stopID] = struct{}{}
			stops = append(stops, stopID)
		}
	}
	return stops
}
