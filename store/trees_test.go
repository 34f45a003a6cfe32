package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lagat24/greentrace/models"
)

func TestTreeStore_Insert(t *testing.T) {
	db, mock := newMockDB(t)
	trees := NewTreeStore(db)

	mock.ExpectExec("INSERT INTO trees").
		WithArgs(5, "Acacia", nil, -1.29, 36.82, true, 0.87, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := trees.Insert(context.Background(), models.Tree{
		UserID:     5,
		Species:    "Acacia",
		Latitude:   -1.29,
		Longitude:  36.82,
		Verified:   true,
		Confidence: 0.87,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTreeStore_Mine(t *testing.T) {
	db, mock := newMockDB(t)
	trees := NewTreeStore(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "species", "photo_url", "latitude", "longitude", "verified", "confidence", "planted_at"}).
		AddRow(2, 5, "Baobab", nil, -1.3, 36.9, true, 0.95, time.Now()).
		AddRow(1, 5, "Acacia", nil, -1.29, 36.82, false, 0.0, time.Now().Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM trees WHERE user_id").
		WithArgs(5).
		WillReturnRows(rows)

	mine, err := trees.Mine(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Baobab", mine[0].Species)
}

func TestTreeStore_DeleteOwned(t *testing.T) {
	db, mock := newMockDB(t)
	trees := NewTreeStore(db)

	mock.ExpectExec("DELETE FROM trees WHERE id = \\? AND user_id = \\?").
		WithArgs(2, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, trees.DeleteOwned(context.Background(), 2, 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTreeStore_DeleteOwned_NotOwner(t *testing.T) {
	db, mock := newMockDB(t)
	trees := NewTreeStore(db)

	// Wrong owner or missing tree: the delete matches nothing.
	mock.ExpectExec("DELETE FROM trees").
		WithArgs(2, 6).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := trees.DeleteOwned(context.Background(), 2, 6)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestTreeStore_Leaderboard(t *testing.T) {
	db, mock := newMockDB(t)
	trees := NewTreeStore(db)

	rows := sqlmock.NewRows([]string{"id", "name", "trees_planted"}).
		AddRow(1, "alice", 3).
		AddRow(3, "carol", 1).
		AddRow(2, "bob", 0) // zero-tree users are included

	mock.ExpectQuery("SELECT (.+) FROM users u LEFT JOIN trees t").
		WillReturnRows(rows)

	board, err := trees.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "alice", board[0].Name)
	assert.Equal(t, 0, board[2].TreesPlanted)
}
