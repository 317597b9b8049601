package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/subscription-service/internal/auth"
	"github.com/spec-kit/subscription-service/internal/config"
	"github.com/spec-kit/subscription-service/internal/domain"
	"github.com/spec-kit/subscription-service/internal/repository"
	apperrors "github.com/spec-kit/subscription-service/pkg/util"
)

const (
	publicIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	publicIDLength  = 6

	// maxPublicIDAttempts bounds the rejection-sampling loop; the unique
	// index on users.public_id is the authoritative backstop anyway.
	maxPublicIDAttempts = 20
)

// AuthService coordinates registration, login and the fixed-admin session.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	admin      config.AdminConfig
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.UserTokenTTLMinutes, cfg.Auth.AdminTokenTTLMinutes),
		admin:      cfg.Admin,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.ResetTokenTTLMinutes) * time.Minute,
	}
}

// Register creates a new subscriber account and issues a session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("User already exists")
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	publicID, err := s.generatePublicID(ctx)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{
		PublicID:     publicID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// two concurrent registrations can pass the pre-checks; the unique
		// indexes on email and public_id decide the winner
		if apperrors.IsUniqueViolation(err) {
			return nil, "", time.Time{}, apperrors.NewConflict("User already exists")
		}
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateUserToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a subscriber. Unknown email and wrong password report
// the same generic message to avoid account enumeration.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateUserToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// AdminLogin verifies the fixed admin credentials and issues a day-long
// admin token. Comparison is constant-time to avoid timing side channels.
func (s *AuthService) AdminLogin(_ context.Context, email, password string) (string, time.Time, error) {
	if s.admin.Email == "" || s.admin.Password == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
	}

	emailMatch := subtle.ConstantTimeCompare([]byte(email), []byte(s.admin.Email))
	passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password))
	if emailMatch&passMatch != 1 {
		return "", time.Time{}, apperrors.NewUnauthorized("Invalid credentials")
	}

	return s.tokenMgr.GenerateAdminToken()
}

// RequestPasswordReset persists a reset token for a subscriber email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("Invalid or expired token")
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("Invalid or expired token")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, token.UserID, hash); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// generatePublicID draws 6 random alphanumeric characters and rejects
// collisions against existing users, up to the attempt bound.
func (s *AuthService) generatePublicID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxPublicIDAttempts; attempt++ {
		candidate, err := randomPublicID()
		if err != nil {
			return "", err
		}
		exists, err := s.users.ExistsPublicID(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", apperrors.NewInternalError(errors.New("exhausted public id generation attempts"))
}

func randomPublicID() (string, error) {
	id := make([]byte, publicIDLength)
	max := big.NewInt(int64(len(publicIDCharset)))
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		id[i] = publicIDCharset[n.Int64()]
	}
	return string(id), nil
}
