package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/socketsched/core/allocation"
	"github.com/kilianp07/socketsched/core/model"
	"github.com/kilianp07/socketsched/infra/logger"
	infmqtt "github.com/kilianp07/socketsched/infra/mqtt"
)

// SimulatedDevice follows the assignments published for one device, tracks
// its battery level and acknowledges every assignment it applied.
// It assumes every slot is dispatched: a skipped slot is not applied.
type SimulatedDevice struct {
	Device      model.Device
	Broker      string
	TopicPrefix string
	Strategy    AckStrategy

	log     logger.Logger
	mu      sync.Mutex
	battery float64
	applied int
	client  paho.Client
	ackCh   chan string
}

// NewSimulatedDevice creates a device starting at its initial battery level.
func NewSimulatedDevice(dev model.Device, broker, topicPrefix string, strat AckStrategy) *SimulatedDevice {
	return &SimulatedDevice{
		Device:      dev,
		Broker:      broker,
		TopicPrefix: topicPrefix,
		Strategy:    strat,
		log:         logger.New("simulator"),
		battery:     dev.InitialBattery,
		ackCh:       make(chan string, 50),
	}
}

func (d *SimulatedDevice) assignmentTopic() string {
	return fmt.Sprintf("%s/%s/assignment", d.TopicPrefix, d.Device.ID)
}

func (d *SimulatedDevice) ackTopic() string {
	return fmt.Sprintf("%s/%s/ack", d.TopicPrefix, d.Device.ID)
}

// Apply decodes an assignment payload and advances the battery by one slot.
// It returns the command id to acknowledge.
func (d *SimulatedDevice) Apply(payload []byte) (string, error) {
	var m infmqtt.AssignmentMessage
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", fmt.Errorf("decode assignment: %w", err)
	}
	if m.DeviceID != d.Device.ID {
		return "", fmt.Errorf("assignment for %s received by %s", m.DeviceID, d.Device.ID)
	}
	d.mu.Lock()
	d.battery = allocation.NextBattery(d.battery, m.Charging, m.InService, d.Device, m.Duration)
	d.applied++
	d.mu.Unlock()
	return m.CommandID, nil
}

// Battery returns the current battery level.
func (d *SimulatedDevice) Battery() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.battery
}

// Applied returns how many assignments have been applied.
func (d *SimulatedDevice) Applied() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.applied
}

// Connect joins the broker and subscribes to the device's assignments.
func (d *SimulatedDevice) Connect() error {
	cli, err := newMQTTClient(d.Broker, "sim-"+d.Device.ID)
	if err != nil {
		return err
	}
	d.client = cli
	if token := cli.Subscribe(d.assignmentTopic(), 1, d.onAssignment); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}
	return nil
}

// Serve acknowledges applied assignments until ctx is done. Connect must
// have succeeded first.
func (d *SimulatedDevice) Serve(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.worker(ctx)
		}()
	}
	<-ctx.Done()
	wg.Wait()
	d.client.Disconnect(250)
}

func (d *SimulatedDevice) onAssignment(_ paho.Client, msg paho.Message) {
	id, err := d.Apply(msg.Payload())
	if err != nil {
		d.log.Warnf("%s: %v", d.Device.ID, err)
		return
	}
	select {
	case d.ackCh <- id:
	default:
		d.log.Warnf("%s: ack queue full, dropping command %s", d.Device.ID, id)
	}
}

func (d *SimulatedDevice) worker(ctx context.Context) {
	for {
		select {
		case cmdID := <-d.ackCh:
			d.Strategy.Ack(ctx, d.client, d.ackTopic(), cmdID)
		case <-ctx.Done():
			return
		}
	}
}
