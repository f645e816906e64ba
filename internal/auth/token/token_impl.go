package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	customErrors "github.com/karTik-kuMar04/Backend/internal/auth/errors"
	"github.com/karTik-kuMar04/Backend/internal/config"
)

type tokenUtilImpl struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

func NewTokenUtil(cfg *config.Config) (*tokenUtilImpl, error) {
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return nil, customErrors.NewInvalidArgument("token secrets must be configured")
	}

	return &tokenUtilImpl{
		accessSecret:  []byte(cfg.AccessTokenSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		issuer:        cfg.Issuer,
	}, nil
}

func (t *tokenUtilImpl) GenerateAccessToken(userID uuid.UUID) (string, time.Time, error) {
	return t.generate(userID, t.accessSecret, t.accessTTL, "sign access token")
}

func (t *tokenUtilImpl) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	return t.generate(userID, t.refreshSecret, t.refreshTTL, "sign refresh token")
}

func (t *tokenUtilImpl) generate(userID uuid.UUID, secret []byte, ttl time.Duration, op string) (string, time.Time, error) {
	now := time.Now()

	// NumericDate has second resolution; the jti keeps two tokens signed
	// within the same second from colliding.
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    t.issuer,
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, op)
	}

	return signed, claims.ExpiresAt.Time, nil
}

func (t *tokenUtilImpl) ValidateAccessToken(raw string) (AccessClaims, error) {
	var claims AccessClaims
	if err := t.validate(raw, t.accessSecret, &claims); err != nil {
		return AccessClaims{}, err
	}
	return claims, nil
}

func (t *tokenUtilImpl) ValidateRefreshToken(raw string) (RefreshClaims, error) {
	var claims RefreshClaims
	if err := t.validate(raw, t.refreshSecret, &claims); err != nil {
		return RefreshClaims{}, err
	}
	return claims, nil
}

func (t *tokenUtilImpl) validate(raw string, secret []byte, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, customErrors.ErrInvalidToken
		}
		return secret, nil
	})

	if err != nil || !token.Valid {
		return customErrors.ErrInvalidToken
	}

	return nil
}
