// Package repository defines the persistence contracts of the service and
// three interchangeable drivers (MongoDB, MySQL, in-memory).  The sentinel
// errors below are shared by every driver so that higher layers can
// translate them into HTTP statuses without knowing which store is in use.
package repository

import "errors"

// ErrNotFound is returned when a record with the given id (or email) does
// not exist.  A malformed id is reported the same way.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registering an email that is already
// taken in the same namespace.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when registering a username that is
// already taken in the same namespace.
var ErrUsernameExists = errors.New("username already exists")
