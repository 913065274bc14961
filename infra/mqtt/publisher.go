package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/socketsched/core/model"
	coremon "github.com/kilianp07/socketsched/core/monitoring"
	coremqtt "github.com/kilianp07/socketsched/core/mqtt"
	"github.com/kilianp07/socketsched/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// AssignmentMessage is the JSON payload published for every assignment.
type AssignmentMessage struct {
	CommandID string `json:"command_id"`
	model.Assignment
	Timestamp int64 `json:"timestamp"`
}

// PahoPublisher publishes assignments with Eclipse Paho and collects the
// acknowledgments devices send back on the ack topic.
type PahoPublisher struct {
	cli    pahoClient
	cfg    Config
	log    logger.Logger
	mu     sync.Mutex
	acks   map[string]chan struct{}
	sleep  func(time.Duration)
	closed bool
}

// NewPahoPublisher connects to the broker and subscribes to the ack topic.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &PahoPublisher{cfg: cfg, log: log, acks: make(map[string]chan struct{}), sleep: time.Sleep}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.AckTopic, cfg.qos("ack"), p.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// Topic returns the assignment topic of a device.
func (p *PahoPublisher) Topic(deviceID string) string {
	return fmt.Sprintf("%s/%s/assignment", p.cfg.TopicPrefix, deviceID)
}

func (p *PahoPublisher) onAck(_ paho.Client, msg paho.Message) {
	var m struct {
		CommandID string `json:"command_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.log.Errorf("failed to decode ack: %v", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if ch, ok := p.acks[m.CommandID]; ok {
		select {
		case ch <- struct{}{}:
		default:
		}
		p.log.Debugf("received ack %s", m.CommandID)
	}
}

// PublishAssignment publishes a to the device topic, retrying with
// exponential backoff, and registers the command for acknowledgment.
func (p *PahoPublisher) PublishAssignment(a model.Assignment) (string, error) {
	cmdID := uuid.NewString()
	payload, err := json.Marshal(AssignmentMessage{CommandID: cmdID, Assignment: a, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		return "", err
	}
	topic := p.Topic(a.DeviceID)
	backoff := time.Duration(p.cfg.BackoffMS) * time.Millisecond

	// Register before publishing so a fast ack is not lost.
	p.mu.Lock()
	p.acks[cmdID] = make(chan struct{}, 1)
	p.mu.Unlock()

	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.qos("assignment"), false, payload)
		token.Wait()
		if publishErr = token.Error(); publishErr == nil {
			p.log.Debugf("sent assignment %s to %s", cmdID, topic)
			return cmdID, nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.cfg.MaxRetries {
			p.sleep(backoff * time.Duration(1<<attempt))
		}
	}
	p.forget(cmdID)
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "device_id": a.DeviceID})
	return "", fmt.Errorf("publish %s: %w", topic, publishErr)
}

// WaitForAck blocks until the command is acknowledged or the timeout expires.
func (p *PahoPublisher) WaitForAck(commandID string, timeout time.Duration) (bool, error) {
	p.mu.Lock()
	ch := p.acks[commandID]
	p.mu.Unlock()
	if ch == nil {
		return false, coremqtt.ErrUnknownCommand
	}
	defer p.forget(commandID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ch:
		return true, nil
	case <-timer.C:
		return false, coremqtt.ErrAckTimeout
	}
}

func (p *PahoPublisher) forget(commandID string) {
	p.mu.Lock()
	delete(p.acks, commandID)
	p.mu.Unlock()
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoPublisher) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

var _ coremqtt.Publisher = (*PahoPublisher)(nil)
