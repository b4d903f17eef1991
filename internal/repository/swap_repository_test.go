package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truekea/truekea-api/internal/model"
)

var swapCols = []string{"id", "proposer_id", "receiver_id", "proposer_item_id", "receiver_item_id", "status", "created_at", "updated_at"}

func swapRow(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(swapCols).AddRow(5, 1, 2, 10, 11, status, now, now)
}

func TestSwapUpdateStatusAccept(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM swaps WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(5)).
		WillReturnRows(swapRow(model.SwapProposed))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE swaps SET status = ?")).
		WithArgs(model.SwapAccepted, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewSwapRepo(db)
	s, err := repo.UpdateStatus(context.Background(), 5, model.SwapAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.SwapAccepted, s.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapUpdateStatusCompleteExchangesOwnership(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM swaps WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(5)).
		WillReturnRows(swapRow(model.SwapAccepted))
	// Proposer's item goes to the receiver and vice versa.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE items SET owner_id = ? WHERE id = ?")).
		WithArgs(uint64(2), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE items SET owner_id = ? WHERE id = ?")).
		WithArgs(uint64(1), uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE swaps SET status = ?")).
		WithArgs(model.SwapCompleted, uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewSwapRepo(db)
	s, err := repo.UpdateStatus(context.Background(), 5, model.SwapCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.SwapCompleted, s.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapUpdateStatusInvalidTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM swaps WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(5)).
		WillReturnRows(swapRow(model.SwapCompleted))
	mock.ExpectRollback()

	repo := NewSwapRepo(db)
	_, err = repo.UpdateStatus(context.Background(), 5, model.SwapAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapUpdateStatusNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM swaps WHERE id = ? FOR UPDATE")).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows(swapCols))
	mock.ExpectRollback()

	repo := NewSwapRepo(db)
	_, err = repo.UpdateStatus(context.Background(), 404, model.SwapAccepted)
	assert.ErrorIs(t, err, ErrSwapNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidSwapTransitionTable(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{model.SwapProposed, model.SwapAccepted, true},
		{model.SwapProposed, model.SwapRejected, true},
		{model.SwapProposed, model.SwapCompleted, false},
		{model.SwapAccepted, model.SwapCompleted, true},
		{model.SwapAccepted, model.SwapRejected, false},
		{model.SwapRejected, model.SwapAccepted, false},
		{model.SwapCompleted, model.SwapProposed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, model.ValidSwapTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
