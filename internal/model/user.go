package model

import "time"

// User statuses.  Accounts are never physically deleted; deactivation
// flips Status to StatusInactive.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the repository/service layers;
// handlers expose separate response types without it.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Name         – display name.
//  Email        – unique, normalized (lower-cased) email address.
//  PasswordHash – bcrypt hashed password, never empty.
//  RoleID       – foreign key into the roles table.
//  Status       – "active" or "inactive".
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	RoleID       uint8     // users.role_id (references roles.id)
	Status       string    // users.status
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Role represents a row in the `roles` table.  It maps a small integer
// ID to a role name referenced by users via RoleID.
type Role struct {
	ID   uint8  `json:"id"`   // roles.id
	Name string `json:"name"` // roles.name (e.g. ADMIN, USER)
}

// Seeded roles.  The roles table is extensible but these two rows are
// created by the initial migration and referenced in access token claims.
const (
	RoleAdminID uint8 = 1
	RoleUserID  uint8 = 2

	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and carries metadata for expiry and
// revocation.  The raw token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
