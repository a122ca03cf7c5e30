package model

import "time"

// Rating represents a row in the `ratings` table. Each user can rate a
// store at most once; resubmitting updates the existing row. The value
// is constrained to 1..5.
type Rating struct {
	ID        uint64    // ratings.id
	UserID    uint64    // ratings.user_id
	StoreID   uint64    // ratings.store_id
	Rating    int       // ratings.rating (1-5)
	CreatedAt time.Time // ratings.created_at
	UpdatedAt time.Time // ratings.updated_at
}
