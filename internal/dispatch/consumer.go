package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/ordena-app/ordena-backend/pkg/logger"
)

const consumerName = "dispatch"

// Handler processes one decoded document event.
type Handler interface {
	Handle(ctx context.Context, event DocumentEvent) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer pulls document events from Pub/Sub and feeds the router. Delivery
// is at-least-once, so a Redis idempotency guard drops replays; malformed
// payloads are acked since redelivery can never fix them.
type Consumer struct {
	subscription *gcppubsub.Subscriber
	handler      Handler
	manager      idempotencyChecker
	logg         *logger.Logger
}

func NewConsumer(subscription *gcppubsub.Subscriber, handler Handler, manager idempotencyChecker, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, errors.New("document events subscription is required")
	}
	if handler == nil {
		return nil, errors.New("dispatch handler is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		subscription: subscription,
		handler:      handler,
		manager:      manager,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes document events until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if c.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	logCtx := c.logg.WithField(ctx, "message_id", msg.ID)

	var event DocumentEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "dispatch.envelope_invalid")
		return processResult{}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"event_id":    event.EventID,
		"collection":  event.Collection,
		"kind":        event.Kind,
		"occurred_at": event.OccurredAt.Format(time.RFC3339Nano),
	})

	eventID, err := uuid.Parse(event.EventID)
	if err != nil {
		c.logg.Warn(logCtx, "dispatch.event_id_invalid")
		return processResult{}
	}

	already, err := c.manager.CheckAndMarkProcessed(logCtx, consumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "dispatch.idempotency_check_failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "dispatch.event_already_processed")
		return processResult{}
	}

	if err := c.handler.Handle(logCtx, event); err != nil {
		// Decode failures are permanent: ack, keep the idempotency mark.
		c.logg.Error(logCtx, "dispatch.event_rejected", err)
		return processResult{}
	}

	c.logg.Info(logCtx, "dispatch.event_handled")
	return processResult{}
}
