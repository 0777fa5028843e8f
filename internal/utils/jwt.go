package utils // package utils provides helpers for token issuance and password hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"

    "github.com/iliyamo/hotel-booking/internal/model"
)

// ErrInvalidToken is the single outcome of a failed verification.  Callers
// never learn whether the token was malformed, expired or badly signed.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of an access token: the identity plus the standard
// registered claims (sub, iat, exp).
type Claims struct {
    ID    string     `json:"id"`
    Email string     `json:"email"`
    Role  model.Role `json:"role"`
    jwt.RegisteredClaims
}

// AccessToken is a signed JWT along with its expiry.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenIssuer signs and verifies HS256 access tokens.  It is built once from
// the process configuration and shared by the login handlers and the
// authorization middleware.
type TokenIssuer struct {
    secret []byte
    ttl    time.Duration
    now    func() time.Time
}

// NewTokenIssuer builds an issuer for the given secret and lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
    return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue builds and signs a token for id.
func (t *TokenIssuer) Issue(id model.Identity) (AccessToken, error) {
    now := t.now().UTC()
    exp := now.Add(t.ttl)
    claims := Claims{
        ID:    id.ID,
        Email: id.Email,
        Role:  id.Role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   id.ID,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks signature and expiry and returns the embedded identity.
func (t *TokenIssuer) Verify(raw string) (model.Identity, error) {
    var claims Claims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
        return t.secret, nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(t.now),
    )
    if err != nil || !tok.Valid || claims.ID == "" {
        return model.Identity{}, ErrInvalidToken
    }
    return model.Identity{ID: claims.ID, Email: claims.Email, Role: claims.Role}, nil
}
