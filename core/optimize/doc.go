// Package optimize formulates the fleet allocation problem as a
// mixed-integer program and extracts per-(route,slot) bus counts from
// the solution.
//
// The formulation minimizes operating cost (bus-hours) plus a penalty
// on overload, the passenger demand left uncovered by provided
// capacity. A single fleet-cap constraint per slot couples the routes;
// capacity and headway constraints apply per (route,slot) wherever
// demand is positive. The solving mechanism itself is an opaque
// oracle (internal/mip); only the formulation lives here.
package optimize
