package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/runshare/runshare-api/internal/domain"
	"github.com/runshare/runshare-api/internal/pkg/jwthelper"
	"github.com/runshare/runshare-api/internal/pkg/mailer"
	"github.com/runshare/runshare-api/internal/repository"
)

var (
	ErrUserEmailExists    = repository.ErrUserEmailExists
	ErrUserUsernameExists = repository.ErrUserUsernameExists
	ErrUserNotFound       = repository.ErrUserNotFound
	ErrWrongPassword      = errors.New("wrong email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidResetToken  = jwthelper.ErrInvalidToken
	ErrResetTokenExpired  = jwthelper.ErrTokenExpired
	ErrInvalidPurpose     = jwthelper.ErrInvalidPurpose
)

type AuthUserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	UpdateRole(ctx context.Context, id uint, role domain.Role) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

type AuthService struct {
	repo       AuthUserRepository
	mailer     mailer.Mailer
	signingKey []byte
	baseURL    string
}

func NewAuthService(repo AuthUserRepository, m mailer.Mailer, signingKey []byte, baseURL string) *AuthService {
	return &AuthService{
		repo:       repo,
		mailer:     m,
		signingKey: signingKey,
		baseURL:    baseURL,
	}
}

func (s *AuthService) Register(ctx context.Context, user domain.User) (domain.User, error) {
	if err := s.checkEmailExists(ctx, user.Email); err != nil {
		return domain.User{}, err
	}
	if err := s.checkUsernameExists(ctx, user.Username); err != nil {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}
	user.Password = string(hash)
	user.Role = domain.RoleUser

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return domain.User{}, ErrWrongPassword
		}

		return domain.User{}, fmt.Errorf("s.repo.FindByEmail -> %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return domain.User{}, ErrWrongPassword
	}

	return user, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uint) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return user, nil
}

func (s *AuthService) UpdateRole(ctx context.Context, targetID uint, role domain.Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}

	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		return fmt.Errorf("s.repo.UpdateRole -> %w", err)
	}

	return nil
}

// ForgotPassword always succeeds from the caller's point of view. The
// lookup and the send happen on a single code path and every outcome,
// including an unknown address or a dead SMTP server, collapses to the
// same result so the endpoint cannot be used to enumerate accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			zap.L().Warn("forgot-password lookup failed", zap.Error(err))
		}

		return
	}

	token, err := jwthelper.GenerateResetToken(s.signingKey, user.ID, user.Email)
	if err != nil {
		zap.L().Warn("forgot-password token generation failed", zap.Error(err))

		return
	}

	resetURL := s.baseURL + "/reset-password?token=" + token
	text := "Reset your RunShare password using this link (valid for 1 hour): " + resetURL
	html := fmt.Sprintf(`<p>Reset your RunShare password using <a href="%s">this link</a>. It is valid for 1 hour.</p>`, resetURL)

	if err := s.mailer.Send(user.Email, "Reset your RunShare password", text, html); err != nil {
		zap.L().Warn("forgot-password email delivery failed", zap.Error(err))
	}
}

// ResetPassword redeems a reset token. There is no stored consumed
// flag: validity is derived from the signature, the expiry and the
// (user id, email) pair still resolving to an account, so a token stays
// redeemable until it expires.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := jwthelper.ParseResetToken(s.signingKey, token)
	if err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}

		return fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	// A stale email claim means the account changed since issuance.
	if user.Email != claims.Email {
		return ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("s.repo.UpdatePassword -> %w", err)
	}

	return nil
}

func (s *AuthService) checkEmailExists(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return ErrUserEmailExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	return nil
}

func (s *AuthService) checkUsernameExists(ctx context.Context, username string) error {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return ErrUserUsernameExists
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	return nil
}
