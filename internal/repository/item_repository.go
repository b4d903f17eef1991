package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/truekea/truekea-api/internal/model"
)

// ErrItemNotFound is returned when an item cannot be found.
var ErrItemNotFound = errors.New("item not found")

const itemColumns = "id, title, description, value, category_id, owner_id, image_url, created_at"

// ItemRepo encapsulates all database queries related to items.
type ItemRepo struct {
	db *sql.DB
}

func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

// Create inserts a new item and populates its ID.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO items (title, description, value, category_id, owner_id, image_url) VALUES (?,?,?,?,?,?)",
		it.Title, it.Description, it.Value, it.CategoryID, it.OwnerID, it.ImageURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// GetByID fetches an item by its ID regardless of owner.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (*model.Item, error) {
	var it model.Item
	err := r.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ?", id).
		Scan(&it.ID, &it.Title, &it.Description, &it.Value, &it.CategoryID, &it.OwnerID, &it.ImageURL, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// ListAll returns every item ordered by id.
func (r *ItemRepo) ListAll(ctx context.Context) ([]model.Item, error) {
	return r.queryItems(ctx, "SELECT "+itemColumns+" FROM items ORDER BY id")
}

// ListByOwner returns all items listed by a user.
func (r *ItemRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Item, error) {
	return r.queryItems(ctx,
		"SELECT "+itemColumns+" FROM items WHERE owner_id = ? ORDER BY id", ownerID)
}

// ListByCategoryIDs returns items whose category is in the given set,
// ordered by id.  An empty set yields an empty result without touching
// the database.  The IN clause is built with one placeholder per id.
func (r *ItemRepo) ListByCategoryIDs(ctx context.Context, categoryIDs []uint64) ([]model.Item, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(categoryIDs)), ",")
	args := make([]any, len(categoryIDs))
	for i, id := range categoryIDs {
		args[i] = id
	}
	return r.queryItems(ctx,
		"SELECT "+itemColumns+" FROM items WHERE category_id IN ("+placeholders+") ORDER BY id",
		args...)
}

// Update rewrites an item's mutable fields if it belongs to the owner.
// Returns ErrItemNotFound when the item does not exist and ErrForbidden
// when it is owned by someone else.
func (r *ItemRepo) Update(ctx context.Context, it *model.Item, ownerID uint64) error {
	if err := r.checkOwner(ctx, it.ID, ownerID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE items SET title=?, description=?, value=?, category_id=?, image_url=? WHERE id=?",
		it.Title, it.Description, it.Value, it.CategoryID, it.ImageURL, it.ID)
	return err
}

// Delete removes an item owned by the given user.  Items referenced by a
// non-terminal swap cannot be removed and yield ErrConflict.
func (r *ItemRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	if err := r.checkOwner(ctx, id, ownerID); err != nil {
		return err
	}
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM swaps WHERE (proposer_item_id=? OR receiver_item_id=?) AND status IN (?,?)",
		id, id, model.SwapProposed, model.SwapAccepted).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id=?", id)
	return err
}

func (r *ItemRepo) checkOwner(ctx context.Context, id, ownerID uint64) error {
	var dbOwner uint64
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM items WHERE id=?", id).Scan(&dbOwner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrItemNotFound
	}
	if err != nil {
		return err
	}
	if dbOwner != ownerID {
		return ErrForbidden
	}
	return nil
}

func (r *ItemRepo) queryItems(ctx context.Context, q string, args ...any) ([]model.Item, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.Value, &it.CategoryID, &it.OwnerID, &it.ImageURL, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
