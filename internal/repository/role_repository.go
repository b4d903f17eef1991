package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/truekea/truekea-api/internal/model"
)

// ErrRoleNotFound is returned when a role cannot be found.
var ErrRoleNotFound = errors.New("role not found")

// RoleRepo manages the small roles lookup table.
type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

// Create inserts a role and populates its ID.
func (r *RoleRepo) Create(ctx context.Context, role *model.Role) error {
	res, err := r.db.ExecContext(ctx, "INSERT INTO roles (name) VALUES (?)", role.Name)
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
	role.ID = uint8(id)
	return nil
}

// GetByID fetches a role by id.
func (r *RoleRepo) GetByID(ctx context.Context, id uint8) (*model.Role, error) {
	var role model.Role
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM roles WHERE id = ?", id).
		Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// GetByName fetches a role by its unique name.
func (r *RoleRepo) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM roles WHERE name = ?", name).
		Scan(&role.ID, &role.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// List returns all roles ordered by id.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM roles ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// Delete removes a role that no user references; otherwise ErrConflict.
func (r *RoleRepo) Delete(ctx context.Context, id uint8) error {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role_id = ?", id).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM roles WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoleNotFound
	}
	return nil
}
