package simulator

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/socketsched/infra/logger"
)

type ackPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// AckStrategy defines how a device acknowledges assignments.
type AckStrategy interface {
	Ack(ctx context.Context, cli ackPublisher, topic, commandID string)
}

// AutoAck sends an ACK after an optional fixed delay.
type AutoAck struct {
	Delay time.Duration
}

// Ack implements AckStrategy.
func (a AutoAck) Ack(ctx context.Context, cli ackPublisher, topic, commandID string) {
	if !wait(ctx, a.Delay) {
		return
	}
	publishAck(cli, topic, commandID)
}

// RandomAck drops acknowledgments with the configured probability and
// waits for the specified delay before sending. It is safe for concurrent
// use.
type RandomAck struct {
	Delay    time.Duration
	DropRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomAck returns a RandomAck drawing from its own seeded source.
func NewRandomAck(delay time.Duration, dropRate float64, seed int64) *RandomAck {
	return &RandomAck{Delay: delay, DropRate: dropRate, rng: rand.New(rand.NewSource(seed))}
}

func (r *RandomAck) drop() bool {
	if r.DropRate <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < r.DropRate
}

// Ack implements AckStrategy.
func (r *RandomAck) Ack(ctx context.Context, cli ackPublisher, topic, commandID string) {
	if r.drop() || !wait(ctx, r.Delay) {
		return
	}
	publishAck(cli, topic, commandID)
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}

func publishAck(cli ackPublisher, topic, commandID string) {
	log := logger.New("simulator")
	payload, err := json.Marshal(struct {
		CommandID string `json:"command_id"`
	}{CommandID: commandID})
	if err != nil {
		log.Errorf("marshal ack: %v", err)
		return
	}
	token := cli.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Warnf("ack publish timeout on %s", topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Errorf("publish ack on %s: %v", topic, err)
	}
}
