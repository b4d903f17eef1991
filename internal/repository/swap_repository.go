package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/truekea/truekea-api/internal/model"
)

// Swap lookup errors.
var (
	ErrSwapNotFound      = errors.New("swap not found")
	ErrInvalidTransition = errors.New("invalid swap transition")
)

const swapColumns = "id, proposer_id, receiver_id, proposer_item_id, receiver_item_id, status, created_at, updated_at"

// SwapRepo encapsulates all database queries related to swaps.
type SwapRepo struct {
	db *sql.DB
}

func NewSwapRepo(db *sql.DB) *SwapRepo { return &SwapRepo{db: db} }

// Create inserts a swap in the proposed state and populates its ID.
func (r *SwapRepo) Create(ctx context.Context, s *model.Swap) error {
	s.Status = model.SwapProposed
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO swaps (proposer_id, receiver_id, proposer_item_id, receiver_item_id, status) VALUES (?,?,?,?,?)",
		s.ProposerID, s.ReceiverID, s.ProposerItemID, s.ReceiverItemID, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a swap by id.
func (r *SwapRepo) GetByID(ctx context.Context, id uint64) (*model.Swap, error) {
	var s model.Swap
	err := r.db.QueryRowContext(ctx,
		"SELECT "+swapColumns+" FROM swaps WHERE id = ?", id).
		Scan(&s.ID, &s.ProposerID, &s.ReceiverID, &s.ProposerItemID, &s.ReceiverItemID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSwapNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUser returns swaps where the user is either party, newest first.
func (r *SwapRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Swap, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+swapColumns+" FROM swaps WHERE proposer_id = ? OR receiver_id = ? ORDER BY id DESC",
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Swap
	for rows.Next() {
		var s model.Swap
		if err := rows.Scan(&s.ID, &s.ProposerID, &s.ReceiverID, &s.ProposerItemID, &s.ReceiverItemID, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatus moves a swap to a new status after validating the
// transition against the current row.  Completing a swap additionally
// exchanges item ownership; everything happens in one transaction so a
// failure leaves both the swap and the items untouched.
func (r *SwapRepo) UpdateStatus(ctx context.Context, id uint64, to string) (swap *model.Swap, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			swap = nil
			return
		}
		if err = tx.Commit(); err != nil {
			swap = nil
		}
	}()

	var s model.Swap
	err = tx.QueryRowContext(ctx,
		"SELECT "+swapColumns+" FROM swaps WHERE id = ? FOR UPDATE", id).
		Scan(&s.ID, &s.ProposerID, &s.ReceiverID, &s.ProposerItemID, &s.ReceiverItemID, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrSwapNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !model.ValidSwapTransition(s.Status, to) {
		err = ErrInvalidTransition
		return nil, err
	}

	if to == model.SwapCompleted {
		// Exchange ownership of the two items.
		if _, err = tx.ExecContext(ctx,
			"UPDATE items SET owner_id = ? WHERE id = ?", s.ReceiverID, s.ProposerItemID); err != nil {
			return nil, err
		}
		if _, err = tx.ExecContext(ctx,
			"UPDATE items SET owner_id = ? WHERE id = ?", s.ProposerID, s.ReceiverItemID); err != nil {
			return nil, err
		}
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE swaps SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", to, id); err != nil {
		return nil, err
	}
	s.Status = to
	swap = &s
	return swap, nil
}
