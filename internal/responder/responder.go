package responder

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/rwanda"
	"github.com/nerrad567/rwanda/internal/infrastructure/logging"
	"github.com/nerrad567/rwanda/internal/infrastructure/mqtt"
	"github.com/nerrad567/rwanda/internal/metrics"
)

// ErrNotRequest is returned for topics outside the request scheme.
var ErrNotRequest = errors.New("not a lookup request topic")

// Bus is the subset of the MQTT client the responder needs.
type Bus interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Unsubscribe(topic string) error
}

// Response is the payload published on a response topic.
type Response struct {
	Level    rwanda.Level `json:"level,omitempty"`
	Names    []string     `json:"names"`
	Count    int          `json:"count"`
	Resolved bool         `json:"resolved"`
	Complete bool         `json:"complete"`
	Error    string       `json:"error,omitempty"`
}

// Responder serves lookups from a table.
type Responder struct {
	table   *rwanda.Table
	metrics *metrics.Recorder
	logger  *logging.Logger
	qos     byte
}

// New creates a Responder. rec may be nil.
func New(table *rwanda.Table, rec *metrics.Recorder, logger *logging.Logger, qos byte) *Responder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Responder{table: table, metrics: rec, logger: logger, qos: qos}
}

// Start subscribes to every request topic on bus. Responses are published
// with the responder's QoS and are not retained.
func (r *Responder) Start(bus Bus) error {
	return bus.Subscribe(mqtt.Topics{}.AllRequests(), r.qos, func(topic string, payload []byte) error {
		respTopic, body, err := r.Handle(topic, payload)
		if err != nil {
			return err
		}
		if err := bus.Publish(respTopic, body, r.qos, false); err != nil {
			return fmt.Errorf("publishing response to %s: %w", respTopic, err)
		}
		return nil
	})
}

// Stop unsubscribes from the request topics. Requests already delivered
// are still answered.
func (r *Responder) Stop(bus Bus) error {
	if err := bus.Unsubscribe(mqtt.Topics{}.AllRequests()); err != nil {
		return fmt.Errorf("unsubscribing from requests: %w", err)
	}
	return nil
}

// Handle answers one request and returns the response topic and payload.
// It fails only when topic is not a request topic; bad levels and bad
// payloads produce an error response instead.
func (r *Responder) Handle(topic string, payload []byte) (string, []byte, error) {
	levelName, requestID, ok := mqtt.Topics{}.ParseRequest(topic)
	if !ok {
		return "", nil, fmt.Errorf("%w: %s", ErrNotRequest, topic)
	}
	respTopic, _ := mqtt.Topics{}.ResponseFor(topic)

	resp := r.lookup(levelName, payload)
	if resp.Error != "" {
		r.logger.Debug("lookup request rejected",
			"request_id", requestID,
			"level", levelName,
			"error", resp.Error,
		)
	}

	body, err := json.Marshal(resp)
	if err != nil {
		return "", nil, fmt.Errorf("encoding response: %w", err)
	}
	return respTopic, body, nil
}

func (r *Responder) lookup(levelName string, payload []byte) Response {
	level, err := rwanda.ParseLevel(levelName)
	if err != nil {
		return Response{Error: err.Error()}
	}

	var filter rwanda.Filter
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &filter); err != nil {
			return Response{Level: level, Error: fmt.Sprintf("invalid filter: %v", err)}
		}
	}

	start := time.Now()
	res := r.table.Lookup(level, &filter)
	r.metrics.Record(metrics.Lookup{
		Level:    level,
		Source:   metrics.SourceMQTT,
		Resolved: res.Resolved,
		Count:    len(res.Names),
		Duration: time.Since(start),
	})

	return Response{
		Level:    level,
		Names:    res.Names,
		Count:    len(res.Names),
		Resolved: res.Resolved,
		Complete: res.Complete,
	}
}
