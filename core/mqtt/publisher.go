package mqtt

import (
	"time"

	"github.com/kilianp07/socketsched/core/model"
)

// Publisher sends slot assignments to devices and tracks their
// acknowledgments.
type Publisher interface {
	// PublishAssignment sends the assignment to its device and returns the
	// command identifier used to track the acknowledgment.
	PublishAssignment(a model.Assignment) (commandID string, err error)

	// WaitForAck waits for an acknowledgment of the command or until the
	// timeout expires.
	WaitForAck(commandID string, timeout time.Duration) (bool, error)
}
