package repository

import (
	"context"
	"database/sql"
	"time"
)

// RatingRepo persists ratings and answers the joined listings the
// dashboards need.
type RatingRepo struct{ DB *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{DB: db} }

// Upsert records a user's rating for a store, replacing an earlier one
// if present. The unique (user_id, store_id) key makes this a single
// atomic statement instead of a check-then-act pair. It reports whether
// a new row was created (true) or an existing one updated (false).
func (r *RatingRepo) Upsert(ctx context.Context, userID, storeID uint64, rating int) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO ratings (user_id, store_id, rating) VALUES (?,?,?)
		 ON DUPLICATE KEY UPDATE rating=VALUES(rating), updated_at=CURRENT_TIMESTAMP`,
		userID, storeID, rating)
	if err != nil {
		return false, err
	}
	// MySQL reports 1 affected row for an insert, 2 for an update and 0
	// when the value did not change.
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UserRatingRow is one entry in a user's own rating history, joined
// with the rated store.
type UserRatingRow struct {
	ID           uint64    // ratings.id
	Rating       int       // ratings.rating
	CreatedAt    time.Time // ratings.created_at
	UpdatedAt    time.Time // ratings.updated_at
	StoreID      uint64    // stores.id
	StoreName    string    // stores.name
	StoreAddress string    // stores.address
}

// ListByUser returns all ratings submitted by one user, newest first.
func (r *RatingRepo) ListByUser(ctx context.Context, userID uint64) ([]*UserRatingRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.rating, r.created_at, r.updated_at,
		        s.id, s.name, s.address
		 FROM ratings r
		 JOIN stores s ON s.id = r.store_id
		 WHERE r.user_id = ?
		 ORDER BY r.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*UserRatingRow
	for rows.Next() {
		var row UserRatingRow
		if err := rows.Scan(&row.ID, &row.Rating, &row.CreatedAt, &row.UpdatedAt,
			&row.StoreID, &row.StoreName, &row.StoreAddress); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreRaterRow is one entry in a store's rater list, joined with the
// rating user.
type StoreRaterRow struct {
	UserID    uint64    // users.id
	UserName  string    // users.name
	UserEmail string    // users.email
	Rating    int       // ratings.rating
	CreatedAt time.Time // ratings.created_at
	UpdatedAt time.Time // ratings.updated_at
}

// ListForStore returns every rating of one store with the rating user,
// newest first.
func (r *RatingRepo) ListForStore(ctx context.Context, storeID uint64) ([]*StoreRaterRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT u.id, u.name, u.email, r.rating, r.created_at, r.updated_at
		 FROM ratings r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.store_id = ?
		 ORDER BY r.created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StoreRaterRow
	for rows.Next() {
		var row StoreRaterRow
		if err := rows.Scan(&row.UserID, &row.UserName, &row.UserEmail,
			&row.Rating, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AvgForStore returns the average rating and total rating count of one
// store; the average is 0 when the store has no ratings yet.
func (r *RatingRepo) AvgForStore(ctx context.Context, storeID uint64) (float64, uint64, error) {
	var (
		avg   float64
		total uint64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT IFNULL(AVG(rating),0), COUNT(*) FROM ratings WHERE store_id=?",
		storeID).Scan(&avg, &total)
	return avg, total, err
}

// AdminRatingRow is one entry in the admin-wide rating listing, joined
// with both the rating user and the rated store.
type AdminRatingRow struct {
	ID        uint64    // ratings.id
	Rating    int       // ratings.rating
	UserID    uint64    // users.id
	UserName  string    // users.name
	StoreID   uint64    // stores.id
	StoreName string    // stores.name
	CreatedAt time.Time // ratings.created_at
	UpdatedAt time.Time // ratings.updated_at
}

// ListAll returns every rating in the system, newest first.
func (r *RatingRepo) ListAll(ctx context.Context) ([]*AdminRatingRow, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.rating, u.id, u.name, s.id, s.name, r.created_at, r.updated_at
		 FROM ratings r
		 JOIN users u ON u.id = r.user_id
		 JOIN stores s ON s.id = r.store_id
		 ORDER BY r.updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AdminRatingRow
	for rows.Next() {
		var row AdminRatingRow
		if err := rows.Scan(&row.ID, &row.Rating, &row.UserID, &row.UserName,
			&row.StoreID, &row.StoreName, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountAll returns the total number of ratings.
func (r *RatingRepo) CountAll(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM ratings").Scan(&n)
	return n, err
}
