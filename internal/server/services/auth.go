// Package services contains server-side business logic. AuthService handles
// signup, signin, token refresh, logout and email verification, and resolves
// bearer tokens into request identities for the access gate.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/config"
	"github.com/dmitrijs2005/taskmanager/internal/server/forms"
	"github.com/dmitrijs2005/taskmanager/internal/server/mailer"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// Session is returned by signup, signin and refresh. RefreshToken is empty
// after a refresh unless rotation is enabled.
type Session struct {
	AccessToken  string
	RefreshToken string
	Account      models.AccountView
}

type AuthService struct {
	users     users.Repository
	tokens    refreshtokens.Repository
	codec     *auth.Codec
	mail      mailer.Sender
	validator *forms.Validator
	log       logging.Logger

	bcryptCost int
	refreshTTL time.Duration
	rotate     bool
	appURL     string
	now        func() time.Time
}

func NewAuthService(u users.Repository, t refreshtokens.Repository, codec *auth.Codec, mail mailer.Sender, cfg *config.Config, log logging.Logger) *AuthService {
	return &AuthService{
		users:      u,
		tokens:     t,
		codec:      codec,
		mail:       mail,
		validator:  forms.Default,
		log:        log,
		bcryptCost: cfg.BcryptCost,
		refreshTTL: cfg.RefreshTokenValidityDuration,
		rotate:     cfg.RotateRefreshTokens,
		appURL:     strings.TrimRight(cfg.AppURL, "/"),
		now:        time.Now,
	}
}

// WithClock replaces the clock used for refresh token expiry.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified account, sends the verification mail and
// opens a session.
func (s *AuthService) Signup(ctx context.Context, in forms.Signup) (*Session, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			ve := &common.ValidationError{}
			ve.Add("password", fmt.Sprintf("must be at most %d bytes", auth.MaxPasswordBytes))
			return nil, ve
		}
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	account := &models.Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, account); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.sendVerification(ctx, account)

	return s.openSession(ctx, account)
}

// sendVerification never fails the caller; mail problems are only logged.
func (s *AuthService) sendVerification(ctx context.Context, account *models.Account) {
	token, err := s.codec.IssueVerification(account.ID)
	if err != nil {
		s.log.Warn(ctx, "failed to issue verification token", "user", account.ID, "error", err)
		return
	}

	link := s.appURL + "/verify?token=" + url.QueryEscape(token)
	body, err := mailer.VerificationBody(account.Name, link)
	if err != nil {
		s.log.Warn(ctx, "failed to render verification email", "user", account.ID, "error", err)
		return
	}

	if err := s.mail.Send(ctx, account.Email, mailer.VerificationSubject, body); err != nil {
		s.log.Warn(ctx, "failed to send verification email", "user", account.ID, "error", err)
	}
}

// Signin checks credentials and opens a session. Unknown emails and wrong
// passwords both yield common.ErrorInvalidCredentials.
func (s *AuthService) Signin(ctx context.Context, in forms.Signin) (*Session, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	account, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	ok, err := auth.CheckPassword(account.PasswordHash, in.Password)
	if err != nil {
		return nil, fmt.Errorf("error checking password: %w", err)
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	return s.openSession(ctx, account)
}

// Refresh exchanges a stored refresh token for a new access token. The
// returned account view is read from storage, not from the token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, common.ErrMissingRefreshToken
	}

	stored, err := s.tokens.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if stored.Expired(s.now()) {
		if err := s.tokens.Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	account, err := s.users.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.tokens.Delete(ctx, refreshToken)
			return nil, common.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	access, err := s.codec.IssueAccess(account.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}
	session := &Session{AccessToken: access, Account: account.View()}

	if s.rotate {
		if err := s.tokens.Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}
		next, err := s.createRefreshToken(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		session.RefreshToken = next
	}

	return session, nil
}

// Logout revokes a refresh token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return common.ErrMissingRefreshToken
	}
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// Verify marks the account named by a verification token as verified and
// returns the URL the client should be redirected to.
func (s *AuthService) Verify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", common.ErrInvalidToken
	}

	decoded, err := s.codec.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrVerificationRejected, err)
	}
	if decoded.Kind != auth.KindVerification {
		return "", common.ErrInvalidTokenType
	}

	account, err := s.users.FindByID(ctx, decoded.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", err
		}
		return "", fmt.Errorf("error searching user: %w", err)
	}

	if !account.Verified {
		account.Verified = true
		if err := s.users.Save(ctx, account); err != nil {
			return "", fmt.Errorf("error saving user: %w", err)
		}
	}

	return s.appURL + "/verify-success", nil
}

// Authenticate resolves the value of an Authorization header into the
// current identity of its account.
//
// Errors: common.ErrMissingAccessToken when no bearer token is present,
// common.ErrInvalidToken or common.ErrTokenExpired when it does not verify
// as an access token, common.ErrorNotFound when the account is gone.
func (s *AuthService) Authenticate(ctx context.Context, header string) (*models.Identity, error) {
	raw, ok := strings.CutPrefix(header, common.BearerPrefix)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return nil, common.ErrMissingAccessToken
	}

	token, err := s.codec.Verify(raw)
	if err != nil {
		return nil, err
	}
	if token.Kind != auth.KindAccess {
		return nil, common.ErrInvalidToken
	}

	account, err := s.users.FindByID(ctx, token.AccountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	return &models.Identity{ID: account.ID, Role: account.Role, Verified: account.Verified}, nil
}

func (s *AuthService) openSession(ctx context.Context, account *models.Account) (*Session, error) {
	access, err := s.codec.IssueAccess(account.ID)
	if err != nil {
		return nil, fmt.Errorf("error issuing access token: %w", err)
	}

	refresh, err := s.createRefreshToken(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	return &Session{AccessToken: access, RefreshToken: refresh, Account: account.View()}, nil
}

func (s *AuthService) createRefreshToken(ctx context.Context, userID string) (string, error) {
	token, err := common.MakeRandHexString(common.RefreshTokenSize)
	if err != nil {
		return "", fmt.Errorf("error generating refresh token: %w", err)
	}

	err = s.tokens.Create(ctx, &models.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.refreshTTL),
	})
	if err != nil {
		return "", fmt.Errorf("error storing refresh token: %w", err)
	}
	return token, nil
}
