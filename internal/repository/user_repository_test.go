package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "name", "email", "password_hash", "role_id", "status", "created_at", "updated_at"}

func TestUserRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Ana", "ana@example.com", sqlmock.AnyArg(), uint8(2), "active").
		WillReturnResult(sqlmock.NewResult(7, 1))

	repo := NewUserRepo(db)
	id, err := repo.Create(context.Background(), "Ana", "  ANA@Example.com ", "secret123", 2, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ana@example.com' for key 'users.email'"))

	repo := NewUserRepo(db)
	_, err = repo.Create(context.Background(), "Ana", "ana@example.com", "secret123", 2, 4)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(1, "Ana", "ana@example.com", "$2a$04$hash", 2, "active", now, now))

	repo := NewUserRepo(db)
	u, err := repo.GetByEmail(context.Background(), " Ana@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoGetByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email=?")).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	repo := NewUserRepo(db)
	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoUpdateProfileNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name=?, email=?")).
		WithArgs("Ana", "ana@example.com", uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepo(db)
	err = repo.UpdateProfile(context.Background(), 99, "Ana", "ana@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepoSetStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET status=?")).
		WithArgs("inactive", uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewUserRepo(db)
	require.NoError(t, repo.SetStatus(context.Background(), 1, "inactive"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
