package utils

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and verifies credentials with bcrypt.
type PasswordHasher struct {
	Cost int

	// dummy is compared against when the account does not exist so a login
	// for an unknown email costs the same as one with a wrong password.
	dummy []byte
}

// NewPasswordHasher returns a hasher with the given cost, falling back to
// bcrypt.DefaultCost for out-of-range values.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	return PasswordHasher{Cost: cost, dummy: dummy}
}

// Hash returns a salted bcrypt hash of plain.
func (h PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify safely compares a bcrypt hash and a plain password.  A malformed
// hash yields false.
func (h PasswordHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Burn spends one comparison against the dummy hash.  Used on the unknown
// account path of login.
func (h PasswordHasher) Burn(plain string) {
	if len(h.dummy) == 0 {
		return
	}
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
