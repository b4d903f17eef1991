package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/truekea/truekea-api/internal/model"
)

// ErrCategoryNotFound is returned when a category cannot be found.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepo encapsulates all database queries related to categories.
// The categories table is read-heavy: every login rebuilds nothing, but
// the carbon aggregator snapshots it at startup and on explicit reload.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Create inserts a new category.  On success the ID field is populated
// with the auto-generated value.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, co2) VALUES (?, ?)", c.Name, c.CO2)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID fetches a category by its ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id uint64) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, co2 FROM categories WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.CO2)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListAll returns the full category catalog ordered by id.  It feeds both
// the carbon aggregator snapshot and the onboarding fallback list for
// users without preferences.
func (r *CategoryRepo) ListAll(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, co2 FROM categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CO2); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update changes a category's name and CO2 factor.  Returns
// ErrCategoryNotFound when no row is affected.  Callers should reload the
// carbon aggregator afterwards; the snapshot does not self-invalidate.
func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, co2 = ? WHERE id = ?", c.Name, c.CO2, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// Delete removes a category.  Categories still referenced by items cannot
// be removed and yield ErrConflict.
func (r *CategoryRepo) Delete(ctx context.Context, id uint64) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM items WHERE category_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
