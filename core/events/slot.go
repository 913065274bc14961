package events

// SlotEvent is published by an allocator after each slot has been decided.
type SlotEvent struct {
	RunID     string
	Algorithm string
	Slot      int
	// Urgent counts devices whose forecast crossed zero.
	Urgent    int
	Deadline  int
	Surplus   int
	Forfeited int
	Denied    int
	InService int
}
