package model

import "time"

// Role values stored in users.role. Signup always produces NORMAL;
// OWNER and ADMIN accounts are created by an administrator.
const (
	RoleNormal = "NORMAL"
	RoleOwner  = "OWNER"
	RoleAdmin  = "ADMIN"
)

// ValidRole reports whether s is one of the three known role names.
func ValidRole(s string) bool {
	return s == RoleNormal || s == RoleOwner || s == RoleAdmin
}

// User represents a row in the `users` table. The password is stored
// only as a bcrypt hash. ResetTokenHash and ResetTokenExpiry hold the
// SHA-256 digest and deadline of an outstanding password-reset secret;
// both are nil when no reset is in flight.
//
// Fields:
//  ID               – primary key identifier of the user.
//  Name             – display name (20-60 characters).
//  Email            – unique email address, stored lowercased.
//  PasswordHash     – bcrypt hashed password.
//  Address          – postal address, up to 400 characters, may be empty.
//  Role             – NORMAL, OWNER or ADMIN.
//  ResetTokenHash   – SHA-256 hex of the outstanding reset secret (nullable).
//  ResetTokenExpiry – when the outstanding reset secret expires (nullable).
//  CreatedAt        – timestamp of creation.
type User struct {
	ID               uint64     // users.id
	Name             string     // users.name
	Email            string     // users.email
	PasswordHash     string     // users.password
	Address          string     // users.address
	Role             string     // users.role
	ResetTokenHash   *string    // users.reset_token (nullable)
	ResetTokenExpiry *time.Time // users.reset_token_expiry (nullable)
	CreatedAt        time.Time  // users.created_at
}
