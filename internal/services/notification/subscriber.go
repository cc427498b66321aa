// Package notification prints a readable line for every order event
// consumed from the order events exchange.
package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rishabhd491/savor-rbac-regional-platform/internal/logger"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/messaging"
	"github.com/rishabhd491/savor-rbac-regional-platform/internal/models"
)

// Consumer is the message source of the subscriber
type Consumer interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber handles order event notifications
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewSubscriber creates a new notification subscriber writing to out
func NewSubscriber(consumer Consumer, log *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
	}
}

// Start consumes events until ctx is cancelled, then closes the consumer
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.StartConsuming(ctx, s.handleEvent)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	if closeErr := s.consumer.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}
	s.logger.Info("graceful_shutdown", "Notification subscriber stopped", requestID, nil)
	return err
}

func (s *Subscriber) handleEvent(ctx context.Context, routingKey string, body []byte) error {
	requestID := logger.RequestID(ctx)

	var evt models.OrderEvent
	if err := messaging.ParseMessage(body, &evt); err != nil {
		return fmt.Errorf("failed to parse order event: %w", err)
	}
	if evt.OrderID == "" {
		return fmt.Errorf("%w: order event without order id", messaging.ErrDiscard)
	}

	s.logger.Debug("notification_received", "Received order event", requestID, map[string]interface{}{
		"routing_key": routingKey,
		"order_id":    evt.OrderID,
		"new_status":  evt.NewStatus,
		"changed_by":  evt.ChangedBy,
	})

	s.mu.Lock()
	_, err := fmt.Fprintln(s.out, FormatNotification(&evt))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Notification displayed", requestID, map[string]interface{}{
		"order_id":   evt.OrderID,
		"region":     evt.Region,
		"old_status": evt.OldStatus,
		"new_status": evt.NewStatus,
	})
	return nil
}

// FormatNotification renders an order event as one human readable line
func FormatNotification(evt *models.OrderEvent) string {
	timestamp := evt.Timestamp.Format("2006-01-02 15:04:05")

	switch evt.Type {
	case models.EventOrderCreated:
		if evt.NewStatus == models.StatusPaid {
			return fmt.Sprintf("[%s] Order %s placed and paid in %s by %s. Total: %s",
				timestamp, evt.OrderID, evt.Region, evt.ChangedBy, evt.TotalAmount.StringFixed(2))
		}
		return fmt.Sprintf("[%s] Order %s placed in %s by %s. Total: %s, awaiting payment.",
			timestamp, evt.OrderID, evt.Region, evt.ChangedBy, evt.TotalAmount.StringFixed(2))
	case models.EventPaymentUpdated:
		return fmt.Sprintf("[%s] Payment for order %s recorded by %s (was %s).",
			timestamp, evt.OrderID, evt.ChangedBy, evt.OldStatus)
	}

	switch evt.NewStatus {
	case models.StatusPaid:
		return fmt.Sprintf("[%s] Order %s has been paid. Marked by %s.", timestamp, evt.OrderID, evt.ChangedBy)
	case models.StatusCancelled:
		return fmt.Sprintf("[%s] Order %s has been cancelled by %s.", timestamp, evt.OrderID, evt.ChangedBy)
	default:
		return fmt.Sprintf("[%s] Order %s status changed from '%s' to '%s' by %s.",
			timestamp, evt.OrderID, evt.OldStatus, evt.NewStatus, evt.ChangedBy)
	}
}
