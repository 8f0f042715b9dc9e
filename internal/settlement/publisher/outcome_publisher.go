// Package publisher emits settlement outcome events to the message queue so
// downstream consumers (notifications, reporting) can react to completed work.
package publisher

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/collectiva/settlement-engine/internal/domain/shared"
	"github.com/collectiva/settlement-engine/internal/platform/messaging/producers"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

// OutcomeEvent is the wire format of a single settlement outcome
type OutcomeEvent struct {
	DecisionID uuid.UUID `json:"decision_id"`
	Kind       string    `json:"kind"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	EmittedAt  time.Time `json:"emitted_at"`
}

const (
	OutcomeSettled = "SETTLED"
	OutcomeSkipped = "SKIPPED"
	OutcomeFailed  = "FAILED"
)

// OutcomePublisherImpl implements service.OutcomePublisher on top of a
// message producer. Publishing is best-effort: a failed publish is logged
// and the remaining events are still attempted.
type OutcomePublisherImpl struct {
	producer producers.MessagePublisher
	logger   *slog.Logger
}

func NewOutcomePublisher(producer producers.MessagePublisher, logger *slog.Logger) service.OutcomePublisher {
	return &OutcomePublisherImpl{
		producer: producer,
		logger:   logger,
	}
}

// PublishOutcome emits one event per decision the scan touched
func (p *OutcomePublisherImpl) PublishOutcome(ctx context.Context, result *shared.ScanResult) error {
	now := time.Now().UTC()
	var lastErr error

	for _, id := range result.Succeeded {
		lastErr = p.publish(ctx, OutcomeEvent{
			DecisionID: id,
			Kind:       string(result.Kind),
			Outcome:    OutcomeSettled,
			EmittedAt:  now,
		}, lastErr)
	}

	for _, id := range result.Skipped {
		lastErr = p.publish(ctx, OutcomeEvent{
			DecisionID: id,
			Kind:       string(result.Kind),
			Outcome:    OutcomeSkipped,
			EmittedAt:  now,
		}, lastErr)
	}

	for _, failure := range result.Failed {
		lastErr = p.publish(ctx, OutcomeEvent{
			DecisionID: failure.DecisionID,
			Kind:       string(result.Kind),
			Outcome:    OutcomeFailed,
			ErrorKind:  string(failure.ErrorKind),
			Reason:     failure.Reason,
			EmittedAt:  now,
		}, lastErr)
	}

	return lastErr
}

func (p *OutcomePublisherImpl) publish(ctx context.Context, event OutcomeEvent, lastErr error) error {
	if err := p.producer.Publish(ctx, event.DecisionID.String(), event); err != nil {
		p.logger.Error("Failed to publish settlement outcome event",
			"decision_id", event.DecisionID,
			"outcome", event.Outcome,
			"error", err,
		)
		return err
	}
	return lastErr
}
