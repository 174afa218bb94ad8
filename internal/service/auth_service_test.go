package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/corvidhq/copilot-api/internal/config"
	"github.com/corvidhq/copilot-api/internal/domain"
	apperrors "github.com/corvidhq/copilot-api/internal/pkg/errors"
)

// MockAPIKeyRepository is a mock implementation of APIKeyRepository
type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *domain.APIKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*domain.APIKey, error) {
	args := m.Called(ctx, prefix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) TouchLastUsed(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:      "test-secret",
		ExpiryHours: 1,
		Issuer:      "copilot-api-test",
	}
}

func TestCreateAndVerifyAPIKey(t *testing.T) {
	keyRepo := new(MockAPIKeyRepository)

	var stored *domain.APIKey
	keyRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.APIKey")).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.APIKey)
		}).Return(nil)

	svc := NewAuthService(keyRepo, testJWTConfig())

	key, fullKey, err := svc.CreateAPIKey(context.Background(), "ci pipeline")
	require.NoError(t, err)
	assert.Equal(t, "ci pipeline", key.Name)
	assert.True(t, strings.HasPrefix(fullKey, "pk_"+key.Prefix+"_"))
	assert.NotContains(t, key.SecretHash, strings.SplitN(fullKey, "_", 3)[2])

	keyRepo.On("GetByPrefix", mock.Anything, key.Prefix).Return(stored, nil)
	keyRepo.On("TouchLastUsed", mock.Anything, key.Prefix).Return(nil)

	verified, err := svc.VerifyAPIKey(context.Background(), fullKey)
	require.NoError(t, err)
	assert.Equal(t, key.ID, verified.ID)
}

func TestVerifyAPIKey_Malformed(t *testing.T) {
	svc := NewAuthService(new(MockAPIKeyRepository), testJWTConfig())

	for _, presented := range []string{"", "pk_onlyprefix", "sk_abc_def", "garbage"} {
		_, err := svc.VerifyAPIKey(context.Background(), presented)
		require.Error(t, err, "key %q", presented)
		assert.True(t, apperrors.IsUnauthorized(err))
	}
}

func TestVerifyAPIKey_UnknownPrefix(t *testing.T) {
	keyRepo := new(MockAPIKeyRepository)
	keyRepo.On("GetByPrefix", mock.Anything, "deadbeef").Return(nil, apperrors.NotFound("api key"))

	svc := NewAuthService(keyRepo, testJWTConfig())

	_, err := svc.VerifyAPIKey(context.Background(), "pk_deadbeef_secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestVerifyAPIKey_WrongSecret(t *testing.T) {
	keyRepo := new(MockAPIKeyRepository)

	var stored *domain.APIKey
	keyRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			stored = args.Get(1).(*domain.APIKey)
		}).Return(nil)

	svc := NewAuthService(keyRepo, testJWTConfig())

	key, _, err := svc.CreateAPIKey(context.Background(), "app")
	require.NoError(t, err)

	keyRepo.On("GetByPrefix", mock.Anything, key.Prefix).Return(stored, nil)

	_, err = svc.VerifyAPIKey(context.Background(), "pk_"+key.Prefix+"_wrongsecret")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestIssueAndVerifyToken(t *testing.T) {
	svc := NewAuthService(new(MockAPIKeyRepository), testJWTConfig())

	token, err := svc.IssueToken("ops")
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "copilot-api-test", claims.Issuer)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	issuer := NewAuthService(new(MockAPIKeyRepository), config.JWTConfig{Secret: "other", ExpiryHours: 1})
	verifier := NewAuthService(new(MockAPIKeyRepository), testJWTConfig())

	token, err := issuer.IssueToken("ops")
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
}
