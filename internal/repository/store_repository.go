package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ratemate/ratemate/internal/model"
)

// StoreRepo encapsulates all database queries related to stores.
type StoreRepo struct{ DB *sql.DB }

func NewStoreRepo(db *sql.DB) *StoreRepo { return &StoreRepo{DB: db} }

// StoreWithRating is a listing row combining a store with its rating
// aggregate and, when a viewer is supplied, that viewer's own rating.
type StoreWithRating struct {
	ID           uint64  // stores.id
	Name         string  // stores.name
	Email        string  // stores.email
	Address      string  // stores.address
	AvgRating    float64 // average of all ratings, 0 when unrated
	TotalRatings uint64  // number of ratings
	UserRating   *int    // the viewer's rating, nil when absent
}

// Create inserts a new store and fills in its generated ID.
func (r *StoreRepo) Create(ctx context.Context, s *model.Store) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO stores (name, email, address, owner_id) VALUES (?,?,?,?)",
		s.Name, s.Email, s.Address, s.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID fetches a store by id, returning ErrStoreNotFound when absent.
func (r *StoreRepo) GetByID(ctx context.Context, id uint64) (*model.Store, error) {
	var (
		s     model.Store
		owner sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name,email,address,owner_id,created_at FROM stores WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.Name, &s.Email, &s.Address, &owner, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if owner.Valid {
		v := uint64(owner.Int64)
		s.OwnerID = &v
	}
	return &s, nil
}

// ListByOwner returns all stores assigned to one owner, ordered by id.
func (r *StoreRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Store, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,address,created_at FROM stores WHERE owner_id=? ORDER BY id",
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Store
	for rows.Next() {
		s := &model.Store{OwnerID: &ownerID}
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Address, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListWithRatings returns stores with rating aggregates. viewerID, when
// nonzero, joins in that user's own rating per store. search matches
// name, email or address as a substring. sortBy is whitelisted to
// name, address or avg_rating; anything else sorts by name ascending.
func (r *StoreRepo) ListWithRatings(ctx context.Context, viewerID uint64, search, sortBy, sortOrder string) ([]*StoreWithRating, error) {
	q := `SELECT s.id, s.name, s.email, s.address,
	             IFNULL(AVG(r.rating), 0) AS avg_rating,
	             COUNT(r.id) AS total_ratings,
	             ur.rating AS user_rating
	      FROM stores s
	      LEFT JOIN ratings r ON r.store_id = s.id
	      LEFT JOIN ratings ur ON ur.store_id = s.id AND ur.user_id = ?`
	args := []any{viewerID}
	if search != "" {
		q += " WHERE (s.name LIKE ? OR s.email LIKE ? OR s.address LIKE ?)"
		pat := "%" + search + "%"
		args = append(args, pat, pat, pat)
	}
	q += " GROUP BY s.id, s.name, s.email, s.address, ur.rating"
	q += " ORDER BY " + orderClause(sortBy, sortOrder,
		map[string]string{"name": "s.name", "address": "s.address", "avg_rating": "avg_rating"}, "s.name")

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StoreWithRating
	for rows.Next() {
		var (
			s  StoreWithRating
			ur sql.NullInt64
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Address,
			&s.AvgRating, &s.TotalRatings, &ur); err != nil {
			return nil, err
		}
		if ur.Valid {
			v := int(ur.Int64)
			s.UserRating = &v
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a store and its ratings inside one transaction.
// ErrStoreNotFound is returned when the id matches no row.
func (r *StoreRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM ratings WHERE store_id=?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM stores WHERE id=?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrStoreNotFound
		return err
	}
	return nil
}

// CountAll returns the total number of stores.
func (r *StoreRepo) CountAll(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM stores").Scan(&n)
	return n, err
}
