package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/truekea/truekea-api/internal/model"
)

// ErrRatingNotFound is returned when a rating cannot be found.
var ErrRatingNotFound = errors.New("rating not found")

// RatingRepo stores post-swap feedback between users.
type RatingRepo struct {
	db *sql.DB
}

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Create inserts a rating and populates its ID.  A user can rate a given
// swap only once; the (swap_id, rater_id) unique key enforces that and
// surfaces as ErrConflict.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ratings (swap_id, rater_id, rated_id, score, comment) VALUES (?,?,?,?,?)",
		rt.SwapID, rt.RaterID, rt.RatedID, rt.Score, rt.Comment)
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
	rt.ID = uint64(id)
	return nil
}

// ListForUser returns all ratings received by a user, newest first.
func (r *RatingRepo) ListForUser(ctx context.Context, ratedID uint64) ([]model.Rating, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, swap_id, rater_id, rated_id, score, comment, created_at FROM ratings WHERE rated_id = ? ORDER BY id DESC",
		ratedID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rating
	for rows.Next() {
		var rt model.Rating
		if err := rows.Scan(&rt.ID, &rt.SwapID, &rt.RaterID, &rt.RatedID, &rt.Score, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// AverageForUser returns the average score received by a user and the
// number of ratings it is based on.
func (r *RatingRepo) AverageForUser(ctx context.Context, ratedID uint64) (float64, int, error) {
	var (
		avg sql.NullFloat64
		n   int
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT AVG(score), COUNT(*) FROM ratings WHERE rated_id = ?", ratedID).Scan(&avg, &n)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, n, nil
}
