package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/lagat24/greentrace/models"
)

// TreeStore is the persistence layer for tree records.
type TreeStore struct {
	db *sqlx.DB
}

// NewTreeStore creates a tree store on the shared connection pool.
func NewTreeStore(db *sqlx.DB) *TreeStore {
	return &TreeStore{db: db}
}

// Insert writes a new tree record for the given user.
func (s *TreeStore) Insert(ctx context.Context, tree models.Tree) error {
	query, args, err := sq.Insert("trees").
		Columns("user_id", "species", "photo_url", "latitude", "longitude", "verified", "confidence", "planted_at").
		Values(tree.UserID, tree.Species, tree.PhotoURL, tree.Latitude, tree.Longitude, tree.Verified, tree.Confidence, time.Now()).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return classifyErr(err)
	}
	return nil
}

// Mine returns the user's trees, newest planting first.
func (s *TreeStore) Mine(ctx context.Context, userID int) ([]models.Tree, error) {
	query, args, err := sq.Select("id", "user_id", "species", "photo_url", "latitude", "longitude", "verified", "confidence", "planted_at").
		From("trees").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("planted_at DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	trees := []models.Tree{}
	if err := s.db.SelectContext(ctx, &trees, query, args...); err != nil {
		return nil, classifyErr(err)
	}
	return trees, nil
}

// DeleteOwned deletes the tree only if it belongs to userID. A delete that
// matches no row — wrong owner or no such tree — returns ErrNotOwner, the
// same undifferentiated refusal the API has always given.
func (s *TreeStore) DeleteOwned(ctx context.Context, id, userID int) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM trees WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return classifyErr(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotOwner
	}
	return nil
}

// Leaderboard aggregates planted-tree counts across all users, including
// users with zero trees, ordered by count descending.
func (s *TreeStore) Leaderboard(ctx context.Context) ([]models.LeaderboardRow, error) {
	query, args, err := sq.Select("u.id", "u.name", "COUNT(t.id) AS trees_planted").
		From("users u").
		LeftJoin("trees t ON t.user_id = u.id").
		GroupBy("u.id").
		OrderBy("trees_planted DESC").
		Limit(100).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows := []models.LeaderboardRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classifyErr(err)
	}
	return rows, nil
}
