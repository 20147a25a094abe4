package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devsync/internal/common"
	"devsync/internal/domain/user"
	"devsync/internal/security"
)

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeRefreshRepo) {
	users := newFakeUserRepo()
	tokens := newFakeRefreshRepo()
	provider := security.NewJWTProvider("access-secret", "refresh-secret")
	service := NewAuthService(users, tokens, provider, zerolog.Nop(), 15*time.Minute, 7*24*time.Hour)
	return service, users, tokens
}

func TestRegisterIssuesTokens(t *testing.T) {
	service, _, tokens := newAuthFixture()

	account, pair, err := service.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, user.RoleUser, account.Role)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := tokens.GetByToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.UserID)
}

func TestRegisterValidation(t *testing.T) {
	service, _, _ := newAuthFixture()

	_, _, err := service.Register(context.Background(), RegisterInput{Username: "", Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeValidation))

	var appErr *common.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "username")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "password")
}

func TestRegisterDuplicateConflict(t *testing.T) {
	service, _, _ := newAuthFixture()

	_, _, err := service.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, _, err = service.Register(context.Background(), RegisterInput{Username: "alice", Email: "other@example.com", Password: "correct-horse"})
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeConflict))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	service, _, _ := newAuthFixture()

	_, _, err := service.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, _, err = service.Login(context.Background(), "alice@example.com", "wrong-horse")
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeUnauthorized))

	// unknown email gets the same answer as a wrong password
	_, _, err = service.Login(context.Background(), "nobody@example.com", "correct-horse")
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeUnauthorized))
}

func TestRefreshRotatesToken(t *testing.T) {
	service, _, tokens := newAuthFixture()

	_, pair, err := service.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	rotated, err := service.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// the old token cannot be redeemed twice
	_, err = tokens.GetByToken(context.Background(), pair.RefreshToken)
	assert.True(t, common.Is(err, common.CodeNotFound))

	_, err = service.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeUnauthorized))
}

func TestLogoutDeletesRefreshToken(t *testing.T) {
	service, _, tokens := newAuthFixture()

	_, pair, err := service.Register(context.Background(), RegisterInput{Username: "alice", Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), pair.RefreshToken))
	_, err = tokens.GetByToken(context.Background(), pair.RefreshToken)
	assert.True(t, common.Is(err, common.CodeNotFound))

	// logging out twice is not an error
	require.NoError(t, service.Logout(context.Background(), pair.RefreshToken))
}
