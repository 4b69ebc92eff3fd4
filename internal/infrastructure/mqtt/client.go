package mqtt

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/rwanda/internal/infrastructure/config"
)

// Client is a broker connection that keeps its subscriptions across
// reconnects and announces itself on the retained status topic.
//
// All methods are safe for concurrent use.
type Client struct {
	paho pahomqtt.Client
	cfg  config.MQTTConfig

	connected atomic.Bool

	mu               sync.RWMutex
	subscriptions    map[string]subscription
	logger           Logger
	onConnect        func()
	onConnectionLost func(err error)
}

// Logger receives handler failures and reconnect notices.
// *logging.Logger and *slog.Logger both satisfy it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// MessageHandler receives one message. A returned error is logged; it does
// not affect acknowledgment.
type MessageHandler func(topic string, payload []byte) error

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Option configures a Client at Connect time.
type Option func(*Client)

// WithLogger sets where handler panics and errors are reported.
func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

// OnConnect runs fn after the first connect and after every reconnect,
// once subscriptions have been restored.
func OnConnect(fn func()) Option {
	return func(c *Client) { c.onConnect = fn }
}

// OnConnectionLost runs fn when the broker connection drops.
func OnConnectionLost(fn func(err error)) Option {
	return func(c *Client) { c.onConnectionLost = fn }
}

// Connect dials the broker named in cfg and waits up to ten seconds for
// the first connection. An empty client ID becomes "rwanda-<uuid>" so
// several instances can share a broker.
func Connect(cfg config.MQTTConfig, opts ...Option) (*Client, error) {
	if cfg.Broker.ClientID == "" {
		cfg.Broker.ClientID = "rwanda-" + uuid.NewString()
	}

	c := &Client{
		cfg:           cfg,
		subscriptions: make(map[string]subscription),
	}
	for _, opt := range opts {
		opt(c)
	}

	po := clientOptions(cfg).
		SetOnConnectHandler(func(pahomqtt.Client) { c.connectionUp() }).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.connectionDown(err) }).
		SetReconnectingHandler(func(pahomqtt.Client, *pahomqtt.ClientOptions) {
			if l := c.log(); l != nil {
				l.Warn("MQTT reconnecting", "broker", cfg.Broker.Host)
			}
		})

	c.paho = pahomqtt.NewClient(po)
	token := c.paho.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// The on-connect handler runs asynchronously; IsConnected must already
	// hold when Connect returns.
	c.connected.Store(true)
	return c, nil
}

func (c *Client) connectionUp() {
	c.connected.Store(true)

	c.mu.RLock()
	for topic, sub := range c.subscriptions {
		c.paho.Subscribe(topic, sub.qos, c.wrapHandler(sub.handler))
	}
	fn := c.onConnect
	c.mu.RUnlock()

	if err := c.PublishRetained(Topics{}.SystemStatus(), statusPayload(c.cfg.Broker.ClientID, StateOnline, "")); err != nil {
		if l := c.log(); l != nil {
			l.Warn("MQTT online status not published", "error", err)
		}
	}
	if fn != nil {
		fn()
	}
}

func (c *Client) connectionDown(err error) {
	c.connected.Store(false)

	c.mu.RLock()
	fn := c.onConnectionLost
	c.mu.RUnlock()
	if fn != nil {
		fn(err)
	}
}

// Close replaces the retained status with a graceful offline message,
// distinct from the crash will, then disconnects.
func (c *Client) Close() error {
	if c == nil || c.paho == nil {
		return nil
	}

	if c.IsConnected() {
		if err := c.PublishRetained(Topics{}.SystemStatus(), statusPayload(c.cfg.Broker.ClientID, StateOffline, reasonShutdown)); err != nil {
			if l := c.log(); l != nil {
				l.Warn("MQTT offline status not published", "error", err)
			}
		}
	}

	c.paho.Disconnect(disconnectQuiesce)
	c.connected.Store(false)
	return nil
}

// HealthCheck returns ErrNotConnected while the broker is unreachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// IsConnected reports the last known connection state.
func (c *Client) IsConnected() bool {
	if c == nil || c.paho == nil {
		return false
	}
	return c.connected.Load() && c.paho.IsConnected()
}

// QoS returns the configured default QoS.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}

func (c *Client) log() Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// wrapHandler adapts h to paho, recovering panics and logging errors.
func (c *Client) wrapHandler(h MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if l := c.log(); l != nil {
					l.Error("MQTT handler panic recovered", "topic", msg.Topic(), "panic", r)
				}
			}
		}()

		if err := h(msg.Topic(), msg.Payload()); err != nil {
			if l := c.log(); l != nil {
				l.Warn("MQTT handler returned error", "topic", msg.Topic(), "error", err)
			}
		}
	}
}
