package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string. Exp stores the expiration
// timestamp as a time.Time. The server is stateless with respect to
// these tokens: there is no revocation list, so an issued token stays
// valid until Exp regardless of later password or role changes.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// Claims is the decoded identity carried by an access token.
type Claims struct {
	UserID uint64
	Email  string
	Role   string
}

// ErrInvalidToken covers every verification failure: bad signature,
// malformed structure or expired timestamp. Callers do not need to
// distinguish the three; all of them mean "unauthenticated".
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user. It takes the
// signing secret, the user's identity and a TTL in minutes, and returns
// the signed token together with its expiration time. The JWT carries
// sub (user id), email, role, exp and iat claims.
func NewAccessToken(secret string, userID uint64, email, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a raw token and
// returns its claims. The signing method must be HMAC; tokens signed any
// other way are rejected. Expired tokens fail inside jwt.Parse, so no
// separate expiry check is needed here.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	var c Claims
	// JWT numeric values decode as float64.
	sub, ok := mc["sub"].(float64)
	if !ok {
		return Claims{}, ErrInvalidToken
	}
	c.UserID = uint64(sub)
	c.Email, _ = mc["email"].(string)
	c.Role, _ = mc["role"].(string)
	if c.Email == "" || c.Role == "" {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}
