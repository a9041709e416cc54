package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kilianp07/loadshare/core/model"
	"github.com/kilianp07/loadshare/infra/logger"
)

// DefaultTopicPrefix prefixes every published topic.
const DefaultTopicPrefix = "loadshare"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	Retain      bool        `json:"retain"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher publishes allocated bus profiles to an MQTT broker. It
// implements outputs.Writer.
type Publisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	logger     logger.Logger
}

// BusMessage is the payload published for each allocated bus entry.
type BusMessage struct {
	RunID   string      `json:"run_id"`
	Bus     string      `json:"bus"`
	Entry   int         `json:"entry"`
	Days    int         `json:"days"`
	Hours   int         `json:"hours"`
	Profile [][]float64 `json:"profile"`
}

// RunMessage is the payload published once all bus entries are out.
type RunMessage struct {
	RunID       string   `json:"run_id"`
	Nodes       int      `json:"nodes"`
	TotalWeight float64  `json:"total_weight"`
	Buses       []string `json:"buses"`
	Timestamp   int64    `json:"timestamp"`
}

// NewPublisher connects to the MQTT broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	p := &Publisher{
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		logger:     log,
	}
	if p.prefix == "" {
		p.prefix = DefaultTopicPrefix
	}
	if p.maxRetries <= 0 {
		p.maxRetries = 3
	}
	if p.backoff <= 0 {
		p.backoff = 100 * time.Millisecond
	}
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, model.IOError("mqtt.connect", cfg.Broker, token.Error())
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is required")
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// BusTopic returns the topic a bus profile is published on.
func (p *Publisher) BusTopic(nodes int, bus string) string {
	return fmt.Sprintf("%s/%d/bus/%s", p.prefix, nodes, bus)
}

// RunTopic returns the topic the run summary is published on.
func (p *Publisher) RunTopic(nodes int) string {
	return fmt.Sprintf("%s/%d/run", p.prefix, nodes)
}

// Write publishes every bus entry, then the run summary. When a publish
// fails, retained messages already sent for this run are cleared.
func (p *Publisher) Write(ctx context.Context, meta model.RunMeta, res model.AllocationResult) error {
	var sent []string
	for i, bp := range res {
		msg := BusMessage{
			RunID:   meta.RunID,
			Bus:     bp.Bus,
			Entry:   i,
			Days:    meta.Shape.Days,
			Hours:   meta.Shape.Hours,
			Profile: bp.Profile,
		}
		topic := p.BusTopic(meta.Nodes, bp.Bus)
		if err := p.publish(ctx, topic, msg); err != nil {
			p.clearRetained(sent)
			return err
		}
		sent = append(sent, topic)
	}
	created := meta.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	summary := RunMessage{
		RunID:       meta.RunID,
		Nodes:       meta.Nodes,
		TotalWeight: meta.TotalWeight,
		Buses:       res.Buses(),
		Timestamp:   created.UnixMilli(),
	}
	if err := p.publish(ctx, p.RunTopic(meta.Nodes), summary); err != nil {
		p.clearRetained(sent)
		return err
	}
	return nil
}

// clearRetained publishes an empty retained payload on each topic, which
// makes the broker drop the stored message. Best effort.
func (p *Publisher) clearRetained(topics []string) {
	if !p.retain {
		return
	}
	for _, topic := range topics {
		token := p.cli.Publish(topic, p.qos, true, []byte{})
		token.Wait()
		if err := token.Error(); err != nil {
			p.logger.Warnf("clear retained %s: %v", topic, err)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return model.IOError("mqtt.publish", topic, publishErr)
}

// Close gracefully closes the MQTT connection.
func (p *Publisher) Close() error {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
	return nil
}
