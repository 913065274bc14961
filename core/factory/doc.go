// Package factory is the generic registry used to build pluggable modules
// (allocators, metric sinks) from a type name and a raw settings map.
//
//	reg := factory.NewRegistry[allocation.Allocator]()
//	_ = reg.Register("heuristic", buildHeuristic)
//	a, err := reg.Create(factory.ModuleConfig{Type: "heuristic", Conf: map[string]any{"mode": "clamped"}})
package factory
