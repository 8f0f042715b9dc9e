package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collectiva/settlement-engine/internal/domain/contribution"
)

func TestContributionRepository_Create(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ContributionRepository{querier: mock, logger: logger}

	c := &contribution.Contribution{
		ID:               uuid.New(),
		GroupID:          uuid.New(),
		MemberID:         uuid.New(),
		Amount:           decimal.RequireFromString("250.00"),
		ContributedAt:    time.Now().Add(-24 * time.Hour),
		Reference:        "meeting 14",
		Status:           contribution.StatusReconciled,
		OriginDecisionID: uuid.New(),
		CreatedAt:        time.Now(),
	}

	query := `
		INSERT INTO contributions \(id, group_id, member_id, amount, contributed_at, reference, status, origin_decision_id, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8, \$9\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(c.ID, c.GroupID, c.MemberID, c.Amount, c.ContributedAt, c.Reference, c.Status, c.OriginDecisionID, c.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, c)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(c.ID, c.GroupID, c.MemberID, c.Amount, c.ContributedAt, c.Reference, c.Status, c.OriginDecisionID, c.CreatedAt).
			WillReturnError(dbErr)

		err := repo.Create(ctx, c)
		assert.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContributionRepository_AddToTreasury(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ContributionRepository{querier: mock, logger: logger}
	groupID := uuid.New()
	amount := decimal.RequireFromString("550.00")

	query := `
		INSERT INTO treasury_totals \(group_id, total, updated_at\)
		VALUES \(\$1, \$2, NOW\(\)\)
		ON CONFLICT \(group_id\)
		DO UPDATE SET total = treasury_totals.total \+ EXCLUDED.total, updated_at = NOW\(\)
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(groupID, amount).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.AddToTreasury(ctx, groupID, amount)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectExec(query).
			WithArgs(groupID, amount).
			WillReturnError(dbErr)

		err := repo.AddToTreasury(ctx, groupID, amount)
		assert.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContributionRepository_TreasuryTotal(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ContributionRepository{querier: mock, logger: logger}
	groupID := uuid.New()

	query := `
		SELECT total
		FROM treasury_totals
		WHERE group_id = \$1
	`

	t.Run("existing total", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{"total"}).AddRow(decimal.RequireFromString("1250.50"))
		mock.ExpectQuery(query).WithArgs(groupID).WillReturnRows(rows)

		total, err := repo.TreasuryTotal(ctx, groupID)
		assert.NoError(t, err)
		assert.True(t, decimal.RequireFromString("1250.50").Equal(total), "got %s", total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("group without contributions returns zero", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(groupID).WillReturnRows(pgxmock.NewRows([]string{"total"}))

		total, err := repo.TreasuryTotal(ctx, groupID)
		assert.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContributionRepository_ListByDecision(t *testing.T) {
	ctx := context.Background()
	logger := newTestLogger()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ContributionRepository{querier: mock, logger: logger}
	decisionID := uuid.New()

	query := `
		SELECT id, group_id, member_id, amount, contributed_at, reference, status, origin_decision_id, created_at
		FROM contributions
		WHERE origin_decision_id = \$1
		ORDER BY created_at ASC
	`

	t.Run("returns batch", func(t *testing.T) {
		groupID := uuid.New()
		now := time.Now()
		rows := pgxmock.NewRows([]string{"id", "group_id", "member_id", "amount", "contributed_at", "reference", "status", "origin_decision_id", "created_at"}).
			AddRow(uuid.New(), groupID, uuid.New(), decimal.NewFromInt(200), now, "", contribution.StatusReconciled, decisionID, now).
			AddRow(uuid.New(), groupID, uuid.New(), decimal.NewFromInt(350), now, "", contribution.StatusReconciled, decisionID, now)
		mock.ExpectQuery(query).WithArgs(decisionID).WillReturnRows(rows)

		contributions, err := repo.ListByDecision(ctx, decisionID)
		assert.NoError(t, err)
		require.Len(t, contributions, 2)
		assert.Equal(t, decisionID, contributions[0].OriginDecisionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
