package app

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"devsync/internal/common"
	"devsync/internal/domain/auth"
	"devsync/internal/domain/user"
	"devsync/internal/security"
)

type AuthService struct {
	users         user.Repository
	refreshTokens auth.Repository
	jwtProvider   *security.JWTProvider
	logger        zerolog.Logger
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(users user.Repository, refreshTokens auth.Repository, jwtProvider *security.JWTProvider, logger zerolog.Logger, accessTTL, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		jwtProvider:   jwtProvider,
		logger:        logger,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

type RegisterInput struct {
	Username string           `json:"username"`
	Email    string           `json:"email"`
	Password string           `json:"password"`
	Profile  user.Profile     `json:"profile"`
	Social   user.SocialLinks `json:"social_links"`
	Titles   []string         `json:"titles"`
	Skills   []string         `json:"skills"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*user.User, *auth.TokenPair, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fields := validateRegistration(username, email, input.Password); len(fields) > 0 {
		return nil, nil, common.NewValidationError("invalid registration payload", fields)
	}
	if _, err := s.users.FindByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, nil, common.NewError(common.CodeConflict, "username or email is already registered", nil)
	} else if !common.Is(err, common.CodeNotFound) {
		return nil, nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	account, err := s.users.Create(ctx, user.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Profile:      input.Profile,
		SocialLinks:  input.Social,
		Titles:       input.Titles,
		Skills:       input.Skills,
		Role:         user.RoleUser,
	})
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("user_id", account.ID.String()).Msg("user registered")
	return account, pair, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*user.User, *auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
		}
		return nil, nil, err
	}
	if !account.Active {
		return nil, nil, common.NewError(common.CodeForbidden, "account is deactivated", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, nil, common.NewError(common.CodeUnauthorized, "invalid email or password", nil)
	}
	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info().Str("user_id", account.ID.String()).Msg("user logged in")
	return account, pair, nil
}

// Refresh rotates the pair: the presented token is deleted before a new one
// is stored, so a token can only be redeemed once.
func (s *AuthService) Refresh(ctx context.Context, token string) (*auth.TokenPair, error) {
	if _, err := s.jwtProvider.ParseRefresh(token); err != nil {
		return nil, err
	}
	stored, err := s.refreshTokens.GetByToken(ctx, token)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, common.NewError(common.CodeUnauthorized, "refresh token is not recognized", nil)
		}
		return nil, err
	}
	if stored.ExpiresAt.Before(time.Now().UTC()) {
		return nil, common.NewError(common.CodeUnauthorized, "refresh token expired", nil)
	}
	account, err := s.users.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, common.NewError(common.CodeForbidden, "account is deactivated", nil)
	}
	if err := s.refreshTokens.Delete(ctx, token); err != nil && !common.Is(err, common.CodeNotFound) {
		return nil, err
	}
	return s.issueTokens(ctx, account)
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.refreshTokens.Delete(ctx, token)
	if err != nil && !common.Is(err, common.CodeNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, account *user.User) (*auth.TokenPair, error) {
	accessToken, expiresAt, err := s.jwtProvider.GenerateAccess(account.ID, account.Email, string(account.Role), s.accessTTL)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to generate access token", err)
	}
	refreshToken, refreshExpiry, err := s.jwtProvider.GenerateRefresh(account.ID, s.refreshTTL)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to generate refresh token", err)
	}
	if err := s.refreshTokens.DeleteByUser(ctx, account.ID); err != nil {
		return nil, err
	}
	if err := s.refreshTokens.Store(ctx, auth.RefreshToken{
		Token:     refreshToken,
		UserID:    account.ID,
		ExpiresAt: refreshExpiry,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}
	return &auth.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken, ExpiresAt: expiresAt}, nil
}

func validateRegistration(username, email, password string) map[string]string {
	fields := map[string]string{}
	if username == "" {
		fields["username"] = "username is required"
	}
	if email == "" {
		fields["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "email is invalid"
	}
	if len(password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}
