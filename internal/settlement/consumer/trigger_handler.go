// Package consumer handles decision approval events arriving over Kafka.
// An approval event is a nudge, not a command: the handler settles the named
// decision through the same idempotent path the periodic scanner uses, so a
// duplicate or late event is harmless.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
	"github.com/collectiva/settlement-engine/internal/platform/messaging/producers"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

// DecisionApprovedEvent is the wire format of an approval notification
type DecisionApprovedEvent struct {
	DecisionID    uuid.UUID `json:"decision_id"`
	Kind          string    `json:"kind"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// TriggerEventHandler settles a single decision in response to its approval event
type TriggerEventHandler struct {
	decisionRepo    decision.Repository
	settler         service.Settler
	failureRecorder service.FailureRecorder
	producer        producers.DeadLetterPublisher
	logger          *slog.Logger
}

func NewTriggerEventHandler(
	logger *slog.Logger,
	decisionRepo decision.Repository,
	settler service.Settler,
	failureRecorder service.FailureRecorder,
	producer producers.DeadLetterPublisher,
) *TriggerEventHandler {
	return &TriggerEventHandler{
		decisionRepo:    decisionRepo,
		settler:         settler,
		failureRecorder: failureRecorder,
		producer:        producer,
		logger:          logger,
	}
}

// HandleMessage processes Kafka messages. Returning nil commits the offset;
// returning an error leaves it uncommitted so Kafka redelivers.
func (h *TriggerEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event DecisionApprovedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.sendToDLQ(ctx, key, value, fmt.Errorf("failed to unmarshal decision approved event: %w", err))
	}

	if event.DecisionID == uuid.Nil {
		return h.sendToDLQ(ctx, key, value, errors.New("decision approved event is missing decision_id"))
	}

	// Add correlation ID to logger
	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received decision approved event",
		"decision_id", event.DecisionID.String(),
		"kind", event.Kind,
	)

	d, err := h.decisionRepo.GetByID(ctx, event.DecisionID)
	if err != nil {
		var notFound decision.ErrDecisionNotFound
		if errors.As(err, &notFound) {
			// The approval outran the decision row becoming visible here.
			// Leave the offset uncommitted so Kafka retries shortly.
			logger.Warn("Decision from approval event not found yet", "decision_id", event.DecisionID.String())
			return fmt.Errorf("decision %s not found: %w", event.DecisionID.String(), err)
		}
		return fmt.Errorf("failed to load decision %s: %w", event.DecisionID.String(), err)
	}

	if !d.Settleable() {
		logger.Info("Decision from approval event is not settleable, skipping",
			"decision_id", d.ID.String(),
			"status", string(d.Status),
			"settled", d.SettledAt != nil,
		)
		return nil
	}

	settleErr := h.settler.Settle(ctx, d)
	if settleErr == nil {
		logger.Info("Successfully settled decision from approval event", "decision_id", d.ID.String())
		return nil
	}

	kind := shared.KindOf(settleErr)
	switch {
	case kind == shared.ErrorKindAlreadySettled:
		logger.Info("Decision was settled concurrently, skipping", "decision_id", d.ID.String())
		return nil
	case shared.IsPermanent(kind):
		logger.Error("Settlement failed permanently for decision from approval event",
			"decision_id", d.ID.String(),
			"error_kind", string(kind),
			"error", settleErr,
		)
		if recordErr := h.failureRecorder.RecordFailure(ctx, d, settleErr.Error()); recordErr != nil {
			logger.Error("Failed to record permanent settlement failure", "decision_id", d.ID.String(), "error", recordErr)
			return fmt.Errorf("recording failure for decision %s failed: %w", d.ID.String(), recordErr)
		}
		// The failure is flagged on the decision row; commit the offset.
		return nil
	default:
		logger.Error("Settlement failed transiently for decision from approval event",
			"decision_id", d.ID.String(),
			"error", settleErr,
		)
		return fmt.Errorf("settling decision %s failed: %w", d.ID.String(), settleErr)
	}
}

// sendToDLQ routes an unprocessable message to the dead letter queue. When
// the DLQ accepts it the offset is committed; otherwise the original error
// propagates so Kafka redelivers.
func (h *TriggerEventHandler) sendToDLQ(ctx context.Context, key []byte, value []byte, cause error) error {
	h.logger.Error("Unprocessable decision approved event",
		"error", cause,
		"message_key", string(key),
	)

	if h.producer != nil {
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, cause.Error()); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Successfully published unprocessable message to DLQ", "message_key", string(key))
			return nil
		}
	}
	return cause
}
