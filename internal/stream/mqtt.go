package stream

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/eclipse/paho.golang/packets"
	"github.com/eclipse/paho.golang/paho"
	"github.com/google/uuid"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
)

// MQTTConfig configures the MQTT transport.
type MQTTConfig struct {
	// URL is the broker address. Supported schemes: tcp, mqtt, ssl, tls,
	// mqtts, ws, wss.
	URL string

	// ClientID identifies the session. A random ID is used when empty.
	ClientID string

	// KeepAlive is the MQTT keep-alive interval (default: 4s).
	KeepAlive time.Duration

	// TLS overrides the TLS settings for secure schemes.
	TLS *tls.Config
}

// MQTTTransport dials an MQTT v5 broker using paho.
type MQTTTransport struct {
	cfg  MQTTConfig
	addr *url.URL
	log  logger.Logger
}

// NewMQTTTransport validates the broker URL and returns a transport.
func NewMQTTTransport(cfg MQTTConfig, log logger.Logger) (*MQTTTransport, error) {
	u, err := ParseBrokerURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "sensorwatch-" + uuid.NewString()[:8]
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 4 * time.Second
	}
	return &MQTTTransport{cfg: cfg, addr: u, log: logger.OrDefault(log)}, nil
}

// ParseBrokerURL checks that raw is a broker URL with a supported scheme and a host.
func ParseBrokerURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Stream URL '%s' is not a valid URL", raw),
			"Use something like tcp://localhost:1883 or ws://localhost:8080/mqtt.")
	}
	switch u.Scheme {
	case "tcp", "mqtt", "ssl", "tls", "mqtts", "ws", "wss":
	default:
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Stream URL scheme '%s' isn't supported", u.Scheme),
			"Supported schemes: tcp, mqtt, ssl, tls, mqtts, ws, wss.")
	}
	if u.Host == "" {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Stream URL '%s' has no host", raw),
			"Include the broker host and port, like tcp://localhost:1883.")
	}
	return u, nil
}

// Dial opens the network connection and completes the MQTT handshake.
func (t *MQTTTransport) Dial(ctx context.Context) (Conn, error) {
	nc, err := t.dialNet(ctx)
	if err != nil {
		return nil, err
	}

	mc := &mqttConn{
		done:    make(chan struct{}),
		removes: make(map[string]func()),
		log:     t.log,
	}
	mc.client = paho.NewClient(paho.ClientConfig{
		ClientID:      t.cfg.ClientID,
		Conn:          nc,
		OnClientError: mc.fail,
		OnServerDisconnect: func(d *paho.Disconnect) {
			reason := "no reason given"
			if d != nil {
				reason = fmt.Sprintf("reason code %d", d.ReasonCode)
				if d.Properties != nil && d.Properties.ReasonString != "" {
					reason += ": " + d.Properties.ReasonString
				}
			}
			mc.fail(fmt.Errorf("broker disconnected the session (%s)", reason))
		},
	})

	ack, err := mc.client.Connect(ctx, &paho.Connect{
		ClientID:   t.cfg.ClientID,
		KeepAlive:  uint16(t.cfg.KeepAlive.Round(time.Second) / time.Second),
		CleanStart: true,
	})
	if err != nil {
		_ = nc.Close()
		return nil, errors.WrapWithCode(err, errors.ErrStream,
			fmt.Sprintf("MQTT handshake with %s failed", t.addr.Host), "")
	}
	if ack != nil && ack.ReasonCode >= 0x80 {
		_ = nc.Close()
		return nil, errors.New(errors.ErrStream,
			fmt.Sprintf("Broker refused connection (reason code %d)", ack.ReasonCode), "")
	}
	t.log.Debug("MQTT session %s established with %s", t.cfg.ClientID, t.addr.Host)
	return mc, nil
}

func (t *MQTTTransport) dialNet(ctx context.Context) (net.Conn, error) {
	host := t.addr.Host
	var (
		conn net.Conn
		err  error
	)
	switch t.addr.Scheme {
	case "ws", "wss":
		return dialWebSocket(ctx, t.addr, t.cfg.TLS)
	case "ssl", "tls", "mqtts":
		if t.addr.Port() == "" {
			host = net.JoinHostPort(host, "8883")
		}
		d := tls.Dialer{Config: t.cfg.TLS}
		conn, err = d.DialContext(ctx, "tcp", host)
	default:
		if t.addr.Port() == "" {
			host = net.JoinHostPort(host, "1883")
		}
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", host)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStream,
			fmt.Sprintf("Couldn't reach broker at %s", host),
			"Is the broker running? Check stream_url or SENSORWATCH_STREAM_URL.")
	}
	return packets.NewThreadSafeConn(conn), nil
}

// mqttConn adapts a paho client to Conn.
type mqttConn struct {
	client *paho.Client
	log    logger.Logger

	mu      sync.Mutex
	removes map[string]func()
	closed  bool
	err     error
	done    chan struct{}
	once    sync.Once
}

func (c *mqttConn) Subscribe(ctx context.Context, topic string, h Handler) error {
	remove := c.client.AddOnPublishReceived(func(pr paho.PublishReceived) (bool, error) {
		if !topicMatches(topic, pr.Packet.Topic) {
			return false, nil
		}
		payload := make([]byte, len(pr.Packet.Payload))
		copy(payload, pr.Packet.Payload)
		h(Message{Topic: pr.Packet.Topic, Payload: payload, Received: time.Now()})
		return true, nil
	})

	c.mu.Lock()
	if old, ok := c.removes[topic]; ok {
		old()
	}
	c.removes[topic] = remove
	c.mu.Unlock()

	ack, err := c.client.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: 0}},
	})
	if err == nil && ack != nil && len(ack.Reasons) > 0 && ack.Reasons[0] >= 0x80 {
		err = fmt.Errorf("broker rejected subscription to %s (reason code %d)", topic, ack.Reasons[0])
	}
	if err != nil {
		c.mu.Lock()
		delete(c.removes, topic)
		c.mu.Unlock()
		remove()
		return err
	}
	return nil
}

func (c *mqttConn) Unsubscribe(ctx context.Context, topic string) error {
	c.mu.Lock()
	remove, ok := c.removes[topic]
	delete(c.removes, topic)
	c.mu.Unlock()
	if !ok {
		return nil
	}
	remove()

	_, err := c.client.Unsubscribe(ctx, &paho.Unsubscribe{Topics: []string{topic}})
	return err
}

func (c *mqttConn) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *mqttConn) Done() <-chan struct{} {
	return c.done
}

func (c *mqttConn) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// fail records a transport fault and ends the connection.
func (c *mqttConn) fail(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.err = err
	c.mu.Unlock()

	c.log.Debug("MQTT client error: %v", err)
	c.once.Do(func() { close(c.done) })
}

func (c *mqttConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.once.Do(func() { close(c.done) })
		return nil
	}
	c.closed = true
	for topic, remove := range c.removes {
		remove()
		delete(c.removes, topic)
	}
	c.mu.Unlock()

	err := c.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
	c.once.Do(func() { close(c.done) })
	return err
}

// topicMatches reports whether name matches an MQTT topic filter with + and #
// wildcards.
func topicMatches(filter, name string) bool {
	filters := strings.Split(filter, "/")
	names := strings.Split(name, "/")

	for i, f := range filters {
		if f == "#" {
			return i == len(filters)-1
		}
		if f == "+" {
			if i >= len(names) {
				return false
			}
			continue
		}
		if i >= len(names) || f != names[i] {
			return false
		}
	}
	return len(filters) == len(names)
}
