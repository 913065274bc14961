package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/socketsched/core/model"
	coremqtt "github.com/kilianp07/socketsched/core/mqtt"
)

// MockPublisher records assignments in memory. Devices listed in FailIDs
// fail to publish and those in NoAck never acknowledge.
type MockPublisher struct {
	Messages []model.Assignment
	FailIDs  map[string]bool
	NoAck    map[string]bool
	acks     map[string]bool
	mu       sync.Mutex
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		FailIDs: make(map[string]bool),
		NoAck:   make(map[string]bool),
		acks:    make(map[string]bool),
	}
}

// PublishAssignment records the assignment or fails for devices in FailIDs.
func (m *MockPublisher) PublishAssignment(a model.Assignment) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[a.DeviceID] {
		return "", fmt.Errorf("publish failed for %s", a.DeviceID)
	}
	m.Messages = append(m.Messages, a)
	id := fmt.Sprintf("cmd-%s-%d", a.DeviceID, a.Slot)
	m.acks[id] = !m.NoAck[a.DeviceID]
	return id, nil
}

// WaitForAck answers immediately from the recorded outcome.
func (m *MockPublisher) WaitForAck(commandID string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ok, exists := m.acks[commandID]
	if !exists {
		return false, coremqtt.ErrUnknownCommand
	}
	if !ok {
		return false, coremqtt.ErrAckTimeout
	}
	return true, nil
}

// Sent returns a copy of the recorded assignments.
func (m *MockPublisher) Sent() []model.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Assignment(nil), m.Messages...)
}

var _ coremqtt.Publisher = (*MockPublisher)(nil)
