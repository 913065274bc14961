// Package allocation implements the greedy time-stepped socket allocation
// heuristic.
//
// For every slot the heuristic forecasts each device's battery one slot ahead
// assuming it does not charge, marks devices with a non-negative forecast as
// in service, grants sockets to devices whose forecast crossed zero (least
// served first) and finally hands the remaining sockets to the most depleted
// devices that can charge without exceeding 100%. Decisions taken in one slot
// drive the battery levels of the next. Fairness metrics are computed once the
// horizon has been simulated.
//
// The heuristic is single threaded and deterministic. Allocators are exposed
// through the Allocator interface and a factory registry so that alternative
// producers of the same RunResult contract can be benchmarked side by side.
package allocation
