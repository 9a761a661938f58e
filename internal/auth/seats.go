// Package auth issues and verifies seat tokens: ES256 JWTs that bind the
// bearer to one color of one game.
package auth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/justinabrahms/hidetheking/internal/chess"
)

var (
	ErrMissingToken = errors.New("missing seat token")
	ErrInvalidToken = errors.New("invalid seat token")
	ErrWrongGame    = errors.New("seat token is for another game")
)

// SeatClaims are the claims of a seat token.
type SeatClaims struct {
	GameID string      `json:"gid"`
	Color  chess.Color `json:"color"`
	jwt.RegisteredClaims
}

// Seats signs and verifies seat tokens with one key.
type Seats struct {
	key    *ecdsa.PrivateKey
	kid    string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type SeatsOption func(*Seats)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) SeatsOption {
	return func(s *Seats) {
		s.now = now
	}
}

// NewSeats returns a token issuer. A zero ttl issues tokens without expiry.
func NewSeats(key *ecdsa.PrivateKey, issuer string, ttl time.Duration, opts ...SeatsOption) *Seats {
	s := &Seats{
		key:    key,
		kid:    PublicJWK(key).KeyID,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue returns a signed token for color's seat in gameID.
func (s *Seats) Issue(gameID string, color chess.Color) (string, error) {
	now := s.now()
	claims := SeatClaims{
		GameID: gameID,
		Color:  color,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  gameID + "/" + color.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = s.kid

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign seat token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and checks it belongs to gameID.
func (s *Seats) Verify(tokenString, gameID string) (*SeatClaims, error) {
	claims := &SeatClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return &s.key.PublicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.GameID != gameID {
		return nil, ErrWrongGame
	}
	return claims, nil
}

// FromRequest verifies the bearer token of r.
func (s *Seats) FromRequest(r *http.Request, gameID string) (*SeatClaims, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, ErrMissingToken
	}
	return s.Verify(token, gameID)
}

// JWKS returns the key set clients can verify seat tokens with.
func (s *Seats) JWKS() map[string][]JWK {
	return map[string][]JWK{"keys": {PublicJWK(s.key)}}
}
