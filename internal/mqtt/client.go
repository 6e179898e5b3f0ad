package mqtt

import (
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"xfinance-dashboard/internal/config"
)

// MessageHandler handles one received message.
type MessageHandler func(topic string, payload []byte) error

// Client paho client wrapper
type Client struct {
	client paho.Client
	config *config.MQTTConfig
	logger *zap.Logger
}

// NewClient connects to the broker.
func NewClient(cfg *config.MQTTConfig, logger *zap.Logger) (*Client, error) {
	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		logger.Warn("MQTT connection lost", zap.Error(err))
	})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.Info("Connected to MQTT broker",
		zap.String("broker", cfg.Broker),
		zap.String("client_id", cfg.ClientID),
	)

	return &Client{client: client, config: cfg, logger: logger}, nil
}

// Subscribe handler errors are logged and never stop delivery.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if token := c.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Error("Error handling MQTT message",
				zap.String("topic", msg.Topic()),
				zap.Error(err),
			)
		}
	}); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}
	return nil
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}
	return nil
}

// Disconnect waits up to 250ms for in-flight work.
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}
