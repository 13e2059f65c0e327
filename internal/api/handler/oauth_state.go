package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	stateCookie = "oauth_state"
	stateTTL    = 10 * time.Minute
)

var errInvalidState = errors.New("invalid oauth state")

// stateSigner issues and verifies the OAuth state parameter: a short-lived
// HS256 token whose nonce is mirrored in a cookie.
type stateSigner struct {
	secret []byte
	now    func() time.Time
}

func newStateSigner(secret string) *stateSigner {
	return &stateSigner{secret: []byte(secret), now: time.Now}
}

func (s *stateSigner) issue() (token, nonce string, err error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("state nonce: %w", err)
	}
	nonce = hex.EncodeToString(buf)

	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        nonce,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign state: %w", err)
	}
	return token, nonce, nil
}

// verify checks the token signature and expiry and that it carries nonce.
func (s *stateSigner) verify(token, nonce string) error {
	if token == "" || nonce == "" {
		return errInvalidState
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return errInvalidState
	}
	if claims.ID != nonce {
		return errInvalidState
	}
	return nil
}
