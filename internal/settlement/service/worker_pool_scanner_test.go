package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// countingSettler records concurrent settle calls without testify's mock
// bookkeeping, which is not safe to assert on ordering under parallelism.
type countingSettler struct {
	mu      sync.Mutex
	calls   int
	failIDs map[string]error
}

func (s *countingSettler) Settle(ctx context.Context, d *decision.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err, ok := s.failIDs[d.ID.String()]; ok {
		return err
	}
	return nil
}

func TestWorkerPoolScanner_Scan(t *testing.T) {
	logger := slog.Default()
	ctx := context.Background()
	kind := shared.DecisionKindContributionReconciliation

	t.Run("settles whole batch in parallel", func(t *testing.T) {
		mockRepo := &MockDecisionRepository{}
		settler := &countingSettler{}
		mockRecorder := &MockFailureRecorder{}

		decisions := make([]*decision.Decision, 10)
		for i := range decisions {
			decisions[i] = approvedDecision(kind)
		}
		mockRepo.On("ListSettleable", mock.Anything, kind, 100).Return(decisions, nil).Once()

		scanner, err := NewWorkerPoolScanner(mockRepo, settler, mockRecorder, WorkerPoolConfig{Size: 4}, 100, logger)
		require.NoError(t, err)
		defer scanner.Shutdown()

		result, err := scanner.Scan(ctx, kind)
		assert.NoError(t, err)
		assert.Len(t, result.Attempted, 10)
		assert.Len(t, result.Succeeded, 10)
		assert.Equal(t, 10, settler.calls)
	})

	t.Run("mixed outcomes collected per decision", func(t *testing.T) {
		mockRepo := &MockDecisionRepository{}
		mockRecorder := &MockFailureRecorder{}

		ok := approvedDecision(kind)
		raced := approvedDecision(kind)
		malformed := approvedDecision(kind)

		settler := &countingSettler{failIDs: map[string]error{
			raced.ID.String():     shared.NewAlreadySettled(decision.ErrAlreadySettled{DecisionID: raced.ID}),
			malformed.ID.String(): shared.NewMalformed(errors.New("amount must be positive")),
		}}

		mockRepo.On("ListSettleable", mock.Anything, kind, 100).
			Return([]*decision.Decision{ok, raced, malformed}, nil).Once()
		mockRecorder.On("RecordFailure", mock.Anything, malformed, mock.AnythingOfType("string")).Return(nil).Once()

		scanner, err := NewWorkerPoolScanner(mockRepo, settler, mockRecorder, WorkerPoolConfig{Size: 2}, 100, logger)
		require.NoError(t, err)
		defer scanner.Shutdown()

		result, err := scanner.Scan(ctx, kind)
		assert.NoError(t, err)
		assert.Len(t, result.Attempted, 3)
		assert.Len(t, result.Succeeded, 1)
		assert.Len(t, result.Skipped, 1)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, malformed.ID, result.Failed[0].DecisionID)
		assert.Equal(t, shared.ErrorKindMalformed, result.Failed[0].ErrorKind)
		mockRecorder.AssertExpectations(t)
	})

	t.Run("list failure fails the scan", func(t *testing.T) {
		mockRepo := &MockDecisionRepository{}
		dbErr := errors.New("db unreachable")
		mockRepo.On("ListSettleable", mock.Anything, kind, 100).Return(nil, dbErr).Once()

		scanner, err := NewWorkerPoolScanner(mockRepo, &countingSettler{}, &MockFailureRecorder{}, WorkerPoolConfig{Size: 2}, 100, logger)
		require.NoError(t, err)
		defer scanner.Shutdown()

		result, scanErr := scanner.Scan(ctx, kind)
		assert.Error(t, scanErr)
		assert.ErrorIs(t, scanErr, dbErr)
		assert.Nil(t, result)
	})
}
