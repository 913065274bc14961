// Package events defines the allocation related events emitted on the event bus.
//
// Available event types:
//   - SlotEvent: decisions taken by an allocator for one slot
//   - RunEvent: completed run with its fairness metrics
//   - BoundEvent: relaxation bound computed for an instance
package events
