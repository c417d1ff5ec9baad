package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/comitanigiacomo/kanso-insights-engine/internal/core/domain"
)

// accessClaims carries the user's gamification level alongside the registered
// claims, so clients can render the level badge without a profile round trip.
// The level is advisory: it reflects the moment of login and the profile
// endpoint stays the source of truth.
type accessClaims struct {
	Level int `json:"lvl,omitempty"`
	jwt.RegisteredClaims
}

const userLookupTimeout = 2 * time.Second

type TokenService struct {
	secretKey     []byte
	issuer        string
	tokenDuration time.Duration
	userRepo      domain.UserRepository
}

func NewTokenService(secretKey string, issuer string, tokenDuration time.Duration, userRepo domain.UserRepository) *TokenService {
	return &TokenService{
		secretKey:     []byte(secretKey),
		issuer:        issuer,
		tokenDuration: tokenDuration,
		userRepo:      userRepo,
	}
}

func (s *TokenService) issue(userID string, level int) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Level: level,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenDuration)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("token service: failed to sign token: %w", err)
	}
	return signed, nil
}

// GenerateTokenForUser is the login path: it stamps the user's current level
// into the token.
func (s *TokenService) GenerateTokenForUser(user *domain.User) (string, error) {
	return s.issue(user.ID, user.Level)
}

// GenerateToken issues a token from the ID alone, with no level claim.
func (s *TokenService) GenerateToken(userID string) (string, error) {
	return s.issue(userID, 0)
}

// ValidateToken checks signature, expiry and issuer, then confirms the user
// still exists. A token for a deleted account is rejected even if the
// signature is fine.
func (s *TokenService) ValidateToken(tokenString string) (string, error) {
	claims := &accessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	if claims.Issuer != s.issuer {
		return "", fmt.Errorf("invalid token issuer")
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("invalid token subject")
	}

	ctx, cancel := context.WithTimeout(context.Background(), userLookupTimeout)
	defer cancel()

	if _, err := s.userRepo.GetByID(ctx, claims.Subject); err != nil {
		return "", fmt.Errorf("user no longer exists or db error: %w", err)
	}

	return claims.Subject, nil
}
