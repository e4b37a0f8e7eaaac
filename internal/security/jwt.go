package security

import (
	"errors"
	"fmt"
	"time"

	"odyssey/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService : signs and verifies HS512 access tokens with a process-wide secret
type JWTService struct {
	secretKey []byte
	issuer    string
	now       func() time.Time
}

func NewJWTService(secretKey, issuer string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		now:       time.Now,
	}
}

// WithClock : replaces the time source, used by tests
func (service *JWTService) WithClock(now func() time.Time) *JWTService {
	service.now = now
	return service
}

// Sign : HS512 token for identity expiring after ttl
func (service *JWTService) Sign(identity string, ttl time.Duration) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("sign token: empty identity")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("sign token: ttl must be positive, got %s", ttl)
	}

	issuedAt := service.now()
	claims := Claims{
		Email: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    service.issuer,
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	accessToken, err := jwtToken.SignedString(service.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return accessToken, nil
}

// Verify : checks signature, algorithm and expiry. Every failure wraps model.ErrTokenInvalid.
func (service *JWTService) Verify(jwtTokenStr string) (*Claims, error) {
	claims := &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return service.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrTokenInvalid, err)
	}
	if !jwtToken.Valid {
		return nil, model.ErrTokenInvalid
	}
	if !service.now().Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: %w", model.ErrTokenInvalid, jwt.ErrTokenExpired)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: %w", model.ErrTokenInvalid, errors.New("identity claim is empty"))
	}

	return claims, nil
}
