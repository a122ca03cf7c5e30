package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ratemate/ratemate/internal/model"
)

// UserRepo persists user records in the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password,address,role,reset_token,reset_token_expiry,created_at"

// Create inserts a user and fills in its generated ID. The unique email
// index makes this an insert-if-absent: a duplicate address surfaces as
// ErrEmailExists instead of requiring a racy existence check first.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password, address, role) VALUES (?,?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, u.Address, u.Role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) scanOne(row *sql.Row) (*model.User, error) {
	var (
		u      model.User
		hash   sql.NullString
		expiry sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Address,
		&u.Role, &hash, &expiry, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if hash.Valid {
		u.ResetTokenHash = &hash.String
	}
	if expiry.Valid {
		t := expiry.Time
		u.ResetTokenExpiry = &t
	}
	return &u, nil
}

// UpdatePassword replaces the stored password hash for a user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetResetToken stores the hash and expiry of a freshly issued reset
// secret, overwriting any outstanding one. At most one reset secret is
// live per user at a time.
func (r *UserRepo) SetResetToken(ctx context.Context, id uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=?, reset_token_expiry=? WHERE id=?",
		tokenHash, exp, id)
	return err
}

// ConsumeResetToken sets a new password hash and clears both reset
// fields in one conditional UPDATE. The WHERE clause re-checks the
// token hash and expiry, so of two racing completions only one can
// match; the loser sees false.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, email, tokenHash, newPasswordHash string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
		 SET password=?, reset_token=NULL, reset_token_expiry=NULL
		 WHERE email=? AND reset_token=? AND reset_token_expiry > ?`,
		newPasswordHash, email, tokenHash, time.Now().UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ClearResetToken drops any outstanding reset secret for a user without
// touching the password.
func (r *UserRepo) ClearResetToken(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_token=NULL, reset_token_expiry=NULL WHERE id=?", id)
	return err
}

// UserFilter narrows and orders admin user listings. Empty fields are
// ignored. SortBy and SortOrder are whitelisted in List; anything else
// falls back to name ascending.
type UserFilter struct {
	Search    string // substring match on name, email or address
	Role      string // exact role match when set
	SortBy    string // name | email | role
	SortOrder string // ASC | DESC
}

// List returns users matching the filter. Password hashes are included
// in the scanned model but must never reach a response body; handlers
// shape their own output rows.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]*model.User, error) {
	q := "SELECT " + userColumns + " FROM users"
	var (
		where []string
		args  []any
	)
	if f.Search != "" {
		where = append(where, "(name LIKE ? OR email LIKE ? OR address LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat, pat)
	}
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, f.Role)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + orderClause(f.SortBy, f.SortOrder,
		map[string]string{"name": "name", "email": "email", "role": "role"}, "name")

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		var (
			u      model.User
			hash   sql.NullString
			expiry sql.NullTime
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Address,
			&u.Role, &hash, &expiry, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a user together with their ratings, and detaches any
// stores they own, inside one transaction. ErrUserNotFound is returned
// when the id matches no row.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
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
	if _, err = tx.ExecContext(ctx, "DELETE FROM ratings WHERE user_id=?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE stores SET owner_id=NULL WHERE owner_id=?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrUserNotFound
		return err
	}
	return nil
}

// CountAll returns the total number of users.
func (r *UserRepo) CountAll(ctx context.Context) (uint64, error) {
	var n uint64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// orderClause builds a safe ORDER BY from whitelisted column names. The
// sort column and direction come straight from query parameters, so they
// are never interpolated without passing through the whitelist.
func orderClause(sortBy, sortOrder string, allowed map[string]string, def string) string {
	col, ok := allowed[strings.ToLower(strings.TrimSpace(sortBy))]
	if !ok {
		col = def
	}
	dir := "ASC"
	if strings.EqualFold(strings.TrimSpace(sortOrder), "DESC") {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s", col, dir)
}
