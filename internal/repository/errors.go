// Package repository contains data access logic separated from HTTP
// handlers. Sentinel errors defined here let handlers map storage
// failures onto the HTTP taxonomy (400 for duplicate email, 404 for
// missing rows) without inspecting driver error strings themselves.
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique
// email index. The uniqueness check is the insert itself, so two
// concurrent signups for the same address cannot both succeed.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when a user lookup matches no row.
var ErrUserNotFound = errors.New("user not found")

// ErrStoreNotFound is returned when a store lookup matches no row.
var ErrStoreNotFound = errors.New("store not found")
