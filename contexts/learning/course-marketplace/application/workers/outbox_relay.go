package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	application "academy/contexts/learning/course-marketplace/application"
	"academy/contexts/learning/course-marketplace/ports"
)

const (
	defaultRelayBatch = 100
	operationRelay    = "outbox_relay"
)

// OutboxRelay forwards course and purchase events to the broker in append
// order. A row stays pending until the publisher accepts it; the first row
// that cannot be delivered halts the batch.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Topic     string
	BatchSize int
	Metrics   ports.Metrics
	Logger    *slog.Logger
}

// relayStall names the step a delivery stopped at.
type relayStall struct {
	step     string
	outboxID string
	err      error
}

func (s *relayStall) Error() string {
	return fmt.Sprintf("outbox %s: %s: %v", s.outboxID, s.step, s.err)
}

func (s *relayStall) Unwrap() error {
	return s.err
}

func (r OutboxRelay) RunOnce(ctx context.Context) (err error) {
	started := time.Now()
	logger := application.ResolveLogger(r.Logger).With(
		"module", application.ModuleName,
		"layer", "worker",
	)
	delivered := 0
	defer func() {
		application.ObserveOperation(r.Metrics, operationRelay, started, err)
	}()

	batch := r.BatchSize
	if batch <= 0 {
		batch = defaultRelayBatch
	}
	pending, err := r.Outbox.ListPendingOutbox(ctx, batch)
	if err != nil {
		logger.Error("course events could not be read from outbox",
			"event", "course_marketplace_outbox_read_failed",
			"error", err.Error(),
		)
		return err
	}

	sentAt := application.Now(r.Clock)
	for _, message := range pending {
		if err := r.deliver(ctx, message, sentAt); err != nil {
			logger.Error("course event delivery stalled",
				"event", "course_marketplace_outbox_stalled",
				"outbox_id", message.OutboxID,
				"delivered", delivered,
				"remaining", len(pending)-delivered,
				"error", err.Error(),
			)
			return err
		}
		delivered++
	}

	if delivered > 0 {
		logger.Info("course events delivered",
			"event", "course_marketplace_outbox_delivered",
			"delivered", delivered,
			"topic", r.topic(),
		)
	}
	return nil
}

// deliver publishes one row and acknowledges it. A crash between the two
// steps republishes the row; consumers dedupe on event_id.
func (r OutboxRelay) deliver(ctx context.Context, message ports.OutboxMessage, sentAt time.Time) error {
	var envelope ports.EventEnvelope
	if err := json.Unmarshal(message.Payload, &envelope); err != nil {
		return &relayStall{step: "decode", outboxID: message.OutboxID, err: err}
	}
	if err := r.Publisher.Publish(ctx, r.topic(), envelope); err != nil {
		return &relayStall{step: "publish " + envelope.EventType, outboxID: message.OutboxID, err: err}
	}
	if err := r.Outbox.MarkOutboxSent(ctx, message.OutboxID, sentAt); err != nil {
		return &relayStall{step: "acknowledge", outboxID: message.OutboxID, err: err}
	}
	return nil
}

func (r OutboxRelay) topic() string {
	if r.Topic == "" {
		return application.DefaultEventsTopic
	}
	return r.Topic
}
