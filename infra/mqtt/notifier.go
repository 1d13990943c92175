package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/koryxa/dispatch/core/model"
	"github.com/koryxa/dispatch/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	QoS         byte        `json:"qos"`
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

// PahoNotifier publishes offer and mission transitions to an MQTT broker so
// provider-facing channels (mobile push, mail relays) can fan them out.
type PahoNotifier struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewPahoNotifier connects to the MQTT broker.
func NewPahoNotifier(cfg Config) (*PahoNotifier, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_notifier")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
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
	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = "dispatch"
	}
	return &PahoNotifier{cli: c, prefix: prefix, qos: cfg.QoS, log: log}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
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

func (p *PahoNotifier) publish(topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	token := p.cli.Publish(topic, p.qos, false, data)
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	p.log.Debugf("published to %s", topic)
	return nil
}

// OfferPending publishes a pending offer to the provider's topic.
func (p *PahoNotifier) OfferPending(o model.Offer) error {
	topic := fmt.Sprintf("%s/provider/%s/offer", p.prefix, o.ProviderID)
	return p.publish(topic, struct {
		OfferID   string `json:"offer_id"`
		MissionID string `json:"mission_id"`
		Wave      int    `json:"wave"`
		SentAt    int64  `json:"sent_at"`
		ExpiresAt int64  `json:"expires_at"`
	}{
		OfferID:   o.ID,
		MissionID: o.MissionID,
		Wave:      o.Wave,
		SentAt:    o.SentAt.UnixMilli(),
		ExpiresAt: o.ExpiresAt.UnixMilli(),
	})
}

// MissionConfirmed publishes the confirmation to the mission topic.
func (p *PahoNotifier) MissionConfirmed(m model.Mission, o model.Offer) error {
	topic := fmt.Sprintf("%s/mission/%s/confirmed", p.prefix, m.ID)
	return p.publish(topic, struct {
		MissionID  string `json:"mission_id"`
		ProviderID string `json:"provider_id"`
		OfferID    string `json:"offer_id"`
		Wave       int    `json:"wave"`
		Timestamp  int64  `json:"timestamp"`
	}{
		MissionID:  m.ID,
		ProviderID: o.ProviderID,
		OfferID:    o.ID,
		Wave:       o.Wave,
		Timestamp:  time.Now().UnixMilli(),
	})
}

// MissionEscalated publishes the handoff to the operator topic.
func (p *PahoNotifier) MissionEscalated(m model.Mission, reasons []string) error {
	topic := fmt.Sprintf("%s/mission/%s/escalated", p.prefix, m.ID)
	return p.publish(topic, struct {
		MissionID string   `json:"mission_id"`
		Title     string   `json:"title"`
		Tier      string   `json:"tier"`
		Reasons   []string `json:"reasons"`
		Timestamp int64    `json:"timestamp"`
	}{
		MissionID: m.ID,
		Title:     m.Title,
		Tier:      m.Tier.String(),
		Reasons:   reasons,
		Timestamp: time.Now().UnixMilli(),
	})
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoNotifier) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
