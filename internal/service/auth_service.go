package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/corvidhq/copilot-api/internal/config"
	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

const apiKeyPrefixTag = "pk"

// APIKeyRepository defines API key persistence operations
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByPrefix(ctx context.Context, prefix string) (*domain.APIKey, error)
	TouchLastUsed(ctx context.Context, prefix string) error
	Delete(ctx context.Context, prefix string) error
}

// ServiceClaims are the JWT claims for the internal API group
type ServiceClaims struct {
	Subject string `json:"subject"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies API keys and internal JWTs
type AuthService struct {
	keyRepo APIKeyRepository
	cfg     config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(keyRepo APIKeyRepository, cfg config.JWTConfig) *AuthService {
	return &AuthService{keyRepo: keyRepo, cfg: cfg}
}

// CreateAPIKey generates a new API key. The full key
// (pk_<prefix>_<secret>) is returned once; only the bcrypt hash of the
// secret is stored.
func (s *AuthService) CreateAPIKey(ctx context.Context, name string) (*domain.APIKey, string, error) {
	prefix, err := randomHex(6)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate key prefix: %w", err)
	}
	secret, err := randomHex(24)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate key secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash key secret: %w", err)
	}

	key := &domain.APIKey{
		ID:         uuid.New(),
		Name:       name,
		Prefix:     prefix,
		SecretHash: string(hash),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.keyRepo.Create(ctx, key); err != nil {
		return nil, "", fmt.Errorf("failed to store api key: %w", err)
	}

	fullKey := fmt.Sprintf("%s_%s_%s", apiKeyPrefixTag, prefix, secret)
	return key, fullKey, nil
}

// VerifyAPIKey resolves a presented pk_... key to its stored record.
func (s *AuthService) VerifyAPIKey(ctx context.Context, presented string) (*domain.APIKey, error) {
	parts := strings.SplitN(presented, "_", 3)
	if len(parts) != 3 || parts[0] != apiKeyPrefixTag {
		return nil, apperrors.Unauthorized("malformed api key")
	}
	prefix, secret := parts[1], parts[2]

	key, err := s.keyRepo.GetByPrefix(ctx, prefix)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.Unauthorized("unknown api key")
		}
		return nil, fmt.Errorf("failed to look up api key: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(secret)); err != nil {
		return nil, apperrors.Unauthorized("invalid api key")
	}

	// Best effort; the key is already verified.
	_ = s.keyRepo.TouchLastUsed(ctx, prefix)

	return key, nil
}

// RevokeAPIKey deletes an API key by prefix
func (s *AuthService) RevokeAPIKey(ctx context.Context, prefix string) error {
	return s.keyRepo.Delete(ctx, prefix)
}

// IssueToken signs a JWT for the internal API group
func (s *AuthService) IssueToken(subject string) (string, error) {
	claims := &ServiceClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.cfg.ExpiryHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    s.cfg.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// VerifyToken parses and validates an internal JWT
func (s *AuthService) VerifyToken(tokenString string) (*ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(*ServiceClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}
	return claims, nil
}

func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
