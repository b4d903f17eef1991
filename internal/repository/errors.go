// Package repository contains data access logic separated from HTTP
// handlers.  This file defines error values reused across multiple
// repositories.  These sentinels let handlers distinguish failure
// scenarios: ErrForbidden means the current user does not own the
// resource they are operating on, ErrConflict means dependent records
// block the operation (e.g. deleting a category that still has items).
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot proceed due to
// conflicting state, such as removing a category that still has items.
// Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether a MySQL error is a duplicate-key violation
// (error 1062).  The driver does not expose a typed error for this, so
// the code is matched in the message.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
