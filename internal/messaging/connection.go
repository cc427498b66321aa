package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/config"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
)

// OrderEventsBinding matches every order event routing key
const OrderEventsBinding = "order.#"

// Topology describes the exchange and queue the platform declares
type Topology struct {
	Exchange   string
	Queue      string
	BindingKey string
	MessageTTL time.Duration
}

// TopologyFromConfig derives the order events topology from configuration
func TopologyFromConfig(cfg *config.Config) Topology {
	return Topology{
		Exchange:   cfg.RabbitMQ.Exchange,
		Queue:      cfg.RabbitMQ.Queue,
		BindingKey: OrderEventsBinding,
		MessageTTL: 24 * time.Hour,
	}
}

// Connection wraps RabbitMQ connection with reconnection logic
type Connection struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	topology Topology
	logger   *logger.Logger
	url      string
}

// New creates a new RabbitMQ connection
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Connection, error) {
	conn := &Connection{
		topology: TopologyFromConfig(cfg),
		logger:   log,
		url:      cfg.RabbitMQURL(),
	}

	if err := conn.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}

	return conn, nil
}

// connect establishes connection to RabbitMQ with retry logic
func (c *Connection) connect(ctx context.Context) error {
	maxRetries := 5
	var err error

	for i := 0; i < maxRetries; i++ {
		c.conn, err = amqp091.Dial(c.url)
		if err == nil {
			c.channel, err = c.conn.Channel()
			if err == nil {
				if setupErr := c.setupTopology(); setupErr != nil {
					c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "startup", setupErr, nil)
					c.close()
					err = setupErr
				} else {
					return nil
				}
			} else {
				c.conn.Close()
			}
		}

		if i < maxRetries-1 {
			waitTime := time.Duration(i+1) * 2 * time.Second
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", waitTime),
				"startup", err, nil)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitTime):
			}
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

// setupTopology declares the order events topic exchange and the
// notifications queue bound to every order routing key
func (c *Connection) setupTopology() error {
	t := c.topology

	err := c.channel.ExchangeDeclare(
		t.Exchange, // name
		"topic",    // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", t.Exchange, err)
	}

	_, err = c.channel.QueueDeclare(
		t.Queue, // name
		true,    // durable
		false,   // delete when unused
		false,   // exclusive
		false,   // no-wait
		amqp091.Table{
			"x-message-ttl": t.MessageTTL.Milliseconds(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", t.Queue, err)
	}

	err = c.channel.QueueBind(
		t.Queue,      // queue name
		t.BindingKey, // routing key
		t.Exchange,   // exchange
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to bind queue %s with routing key %s: %w", t.Queue, t.BindingKey, err)
	}

	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// Topology returns the declared topology
func (c *Connection) Topology() Topology {
	return c.topology
}

// Close closes the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect attempts to reconnect to RabbitMQ
func (c *Connection) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.close()
	return c.connect(ctx)
}
