package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/truekea/truekea-api/internal/model"
)

// ErrMessageNotFound is returned when a message cannot be found.
var ErrMessageNotFound = errors.New("message not found")

// MessageRepo stores the chat history attached to swap negotiations.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

// Create inserts a message and populates its ID.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (swap_id, sender_id, content) VALUES (?,?,?)",
		m.SwapID, m.SenderID, m.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// ListBySwap returns all messages of a swap in chronological order.
func (r *MessageRepo) ListBySwap(ctx context.Context, swapID uint64) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, swap_id, sender_id, content, created_at FROM messages WHERE swap_id = ? ORDER BY id",
		swapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SwapID, &m.SenderID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Delete removes a message authored by the given sender.
func (r *MessageRepo) Delete(ctx context.Context, id, senderID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM messages WHERE id = ? AND sender_id = ?", id, senderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}
