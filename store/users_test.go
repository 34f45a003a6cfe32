package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func userRows(id int, name, email, hash string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
		AddRow(id, name, email, hash, time.Now())
}

func TestUserStore_Create(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserStore(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "alice@example.com", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("alice@example.com").
		WillReturnRows(userRows(5, "alice", "alice@example.com", "hash"))

	user, err := users.Create(context.Background(), "alice", "alice@example.com", "hash")
	require.NoError(t, err)
	assert.Equal(t, 5, user.ID)
	assert.Equal(t, "alice", user.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserStore(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(sqlite3.Error{
			Code:         sqlite3.ErrConstraint,
			ExtendedCode: sqlite3.ErrConstraintUnique,
		})

	_, err := users.Create(context.Background(), "alice", "alice@example.com", "hash")

	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserStore_ByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserStore(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}))

	_, err := users.ByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_ByID(t *testing.T) {
	db, mock := newMockDB(t)
	users := NewUserStore(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id").
		WithArgs(5).
		WillReturnRows(userRows(5, "alice", "alice@example.com", "hash"))

	user, err := users.ByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}
