// Package auth issues and verifies wallet session tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const issuer = "suidoc"

// Claims carries the authenticated wallet address in the subject.
type Claims struct {
	Address string `json:"address"`
	jwt.RegisteredClaims
}

type JWT struct {
	secret []byte
	ttl    time.Duration
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewJWT(secret string, ttl time.Duration, logger *zap.Logger) *JWT {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWT{
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger.Sugar(),
		now:    time.Now,
	}
}

// Generate returns a signed access token for address and its expiry.
func (j *JWT) Generate(address string) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(j.ttl)
	claims := Claims{
		Address: address,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}

// Verify parses token and returns its claims.
func (j *JWT) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		j.logger.Debugf("Failed to verify jwt token. Error: %v", err)
		return nil, ErrInvalidToken
	}
	if !parsed.Valid || claims.Address == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
