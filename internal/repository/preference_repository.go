package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/truekea/truekea-api/internal/model"
)

// ErrPreferenceNotFound is returned when a preference row cannot be found.
var ErrPreferenceNotFound = errors.New("preference not found")

// PreferenceRepo stores the categories a user wants in their feed.  The
// table has no uniqueness constraint on (user_id, category_id); duplicate
// rows are returned as stored rather than deduplicated here.
type PreferenceRepo struct {
	db *sql.DB
}

func NewPreferenceRepo(db *sql.DB) *PreferenceRepo { return &PreferenceRepo{db: db} }

// ListByUser returns all preference rows of a user ordered by id.
func (r *PreferenceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.UserPreference, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, category_id FROM user_preferences WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UserPreference
	for rows.Next() {
		var p model.UserPreference
		if err := rows.Scan(&p.ID, &p.UserID, &p.CategoryID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CategoryIDsByUser returns just the preferred category ids of a user.
// This is the lookup the login flow uses to seed the initial feed.
func (r *PreferenceRepo) CategoryIDsByUser(ctx context.Context, userID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT category_id FROM user_preferences WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Add inserts a single preference row and populates its ID.
func (r *PreferenceRepo) Add(ctx context.Context, p *model.UserPreference) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO user_preferences (user_id, category_id) VALUES (?,?)",
		p.UserID, p.CategoryID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Replace swaps a user's whole preference set inside a transaction so a
// concurrent login never observes a half-written set.
func (r *PreferenceRepo) Replace(ctx context.Context, userID uint64, categoryIDs []uint64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM user_preferences WHERE user_id = ?", userID); err != nil {
		return err
	}
	for _, cid := range categoryIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO user_preferences (user_id, category_id) VALUES (?,?)", userID, cid); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes one preference row belonging to the user.
func (r *PreferenceRepo) Delete(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM user_preferences WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPreferenceNotFound
	}
	return nil
}
