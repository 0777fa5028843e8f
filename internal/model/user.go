package model

import "time"

// Role names the namespace an account lives in and is carried in the
// "role" claim of every issued token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account is a registered user or admin.  Users and admins are structurally
// identical but are stored in separate collections/tables.
//
// Fields:
//  ID           – opaque identifier (ObjectID hex or UUID depending on the store).
//  Email        – unique, lower-cased email address.
//  Username     – unique display name.
//  PasswordHash – bcrypt hash; never serialised.
//  CreatedAt    – registration timestamp.
type Account struct {
	ID           string    `json:"_id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Profile is the public slice of an Account used when joining bookings.
type Profile struct {
	ID       string `json:"_id" db:"id"`
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
}

// Identity is the decoded content of a verified access token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
