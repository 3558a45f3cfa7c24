package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type (
	// Codec mints and verifies session tokens. The secret is fixed at
	// construction and read-only afterwards, distinct codecs never
	// accept each other's tokens.
	Codec struct {
		secret []byte
		maxAge time.Duration
		now    func() time.Time
	}

	Option func(*Codec)
)

// ErrInvalidToken covers every way a token can fail verification: bad
// signature, malformed structure, unexpected signing algorithm or an
// exceeded age limit. Callers have no business telling those apart.
var ErrInvalidToken = errors.New("session: invalid token")

// MinSecretLen is the smallest signing secret NewCodec accepts.
const MinSecretLen = 32

// MaxAge makes Verify reject tokens issued more than d ago. Without it
// tokens stay valid until the secret rotates.
func MaxAge(d time.Duration) Option {
	return func(c *Codec) { c.maxAge = d }
}

func NewCodec(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("session: secret must have at least %v bytes, got %v", MinSecretLen, len(secret))
	}
	c := &Codec{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue mints a token for the given user id. The token carries the id,
// not the login handle, handles are for humans.
func (c *Codec) Issue(user int64) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:  strconv.FormatInt(user, 10),
		IssuedAt: jwt.NewNumericDate(c.now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("unable to sign session token, cause %w", err)
	}
	return signed, nil
}

// Verify checks the signature over token and returns the user id it was
// issued for. Only HS256 is accepted, a token claiming any other
// algorithm is invalid no matter what it is signed with.
func (c *Codec) Verify(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuedAt())
	if err != nil {
		return 0, ErrInvalidToken
	}
	user, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if c.maxAge > 0 {
		if claims.IssuedAt == nil || c.now().Sub(claims.IssuedAt.Time) > c.maxAge {
			return 0, ErrInvalidToken
		}
	}
	return user, nil
}
