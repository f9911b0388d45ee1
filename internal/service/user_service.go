package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/service/auth"
	"github.com/phrazzld/voca-api/internal/store"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// TokenPair is issued on login and refresh.
type TokenPair struct {
	UserID       uuid.UUID
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// PasswordReset is the outcome of a reset request. Token is only set when
// a reset was actually issued; callers decide whether to expose it.
type PasswordReset struct {
	Token     string
	ExpiresAt time.Time
}

// UserService provides account operations.
type UserService interface {
	// Register creates an active user. Username and email must be unique.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Login checks credentials and issues a token pair.
	Login(ctx context.Context, username, password string) (*TokenPair, error)

	// Refresh exchanges a refresh token for a new token pair.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ChangePassword replaces the password after verifying the current one.
	ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error

	// RequestPasswordReset issues a reset token for the account with email.
	// Unknown emails are not an error; the result then carries no token.
	RequestPasswordReset(ctx context.Context, email string) (*PasswordReset, error)

	// ConfirmPasswordReset sets a new password using a reset token.
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore     store.UserStore
	db            *sql.DB
	hasher        auth.PasswordHasher
	jwtService    auth.JWTService
	resetLifetime time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	db *sql.DB,
	hasher auth.PasswordHasher,
	jwtService auth.JWTService,
	cfg config.AuthConfig,
	logger *slog.Logger,
) (*UserServiceImpl, error) {
	switch {
	case userStore == nil:
		return nil, domain.NewValidationError("userStore", "cannot be nil", domain.ErrValidation)
	case db == nil:
		return nil, domain.NewValidationError("db", "cannot be nil", domain.ErrValidation)
	case hasher == nil:
		return nil, domain.NewValidationError("hasher", "cannot be nil", domain.ErrValidation)
	case jwtService == nil:
		return nil, domain.NewValidationError("jwtService", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	resetLifetime := time.Duration(cfg.ResetTokenLifetimeMinutes) * time.Minute
	if resetLifetime <= 0 {
		resetLifetime = time.Hour
	}

	return &UserServiceImpl{
		userStore:     userStore,
		db:            db,
		hasher:        hasher,
		jwtService:    jwtService,
		resetLifetime: resetLifetime,
		now:           time.Now,
		logger:        logger.With(slog.String("component", "user_service")),
	}, nil
}

// Register creates an active user with a hashed password.
func (s *UserServiceImpl) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(in.Username, in.Email, in.Password)
	if err != nil {
		return nil, domain.NewValidationError("user", err.Error(), err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, NewServiceError("user", "register", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			log.Debug("registration rejected: duplicate account",
				slog.String("username", user.Username),
				slog.String("reason", err.Error()))
			return nil, err
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("username", user.Username))
		return nil, NewServiceError("user", "register", err)
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Login checks a username and password and issues tokens.
func (s *UserServiceImpl) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "login", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			log.Debug("login rejected: wrong password", slog.String("user_id", user.ID.String()))
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "login", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return s.issueTokens(ctx, user.ID)
}

// Refresh validates a refresh token and issues a new pair for an active user.
func (s *UserServiceImpl) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userStore.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, auth.ErrInvalidRefreshToken
		}
		return nil, NewServiceError("user", "refresh", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	return s.issueTokens(ctx, user.ID)
}

func (s *UserServiceImpl) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	access, err := s.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user", "issue_tokens", err)
	}
	refresh, err := s.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user", "issue_tokens", err)
	}
	return &TokenPair{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    s.now().Add(s.jwtService.AccessTokenLifetime()),
	}, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, err
		}
		return nil, NewServiceError("user", "get", err)
	}
	return user, nil
}

// ChangePassword verifies the current password and stores a new hash.
// The read and the write share one transaction.
func (s *UserServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if err := domain.ValidatePassword(next); err != nil {
		return domain.NewValidationError("new_password", err.Error(), err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		user, err := users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.hasher.Compare(user.HashedPassword, current); err != nil {
			if errors.Is(err, auth.ErrPasswordMismatch) {
				return domain.NewValidationError("current_password", "is incorrect", ErrIncorrectPassword)
			}
			return err
		}

		return s.setPassword(ctx, users, user, next)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) || errors.Is(err, domain.ErrValidation) {
			return err
		}
		return NewServiceError("user", "change_password", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("password changed",
		slog.String("user_id", userID.String()))
	return nil
}

// RequestPasswordReset stores the hash of a fresh reset token on the account.
func (s *UserServiceImpl) RequestPasswordReset(ctx context.Context, email string) (*PasswordReset, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	email = strings.TrimSpace(email)
	if !domain.ValidateEmailFormat(email) {
		return nil, domain.NewValidationError("email", domain.ErrInvalidEmail.Error(), domain.ErrInvalidEmail)
	}

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("password reset requested for unknown email")
			return &PasswordReset{}, nil
		}
		return nil, NewServiceError("user", "request_password_reset", err)
	}

	token, hash, err := auth.NewResetToken()
	if err != nil {
		return nil, NewServiceError("user", "request_password_reset", err)
	}
	expiresAt := s.now().UTC().Add(s.resetLifetime)
	user.ResetTokenHash = hash
	user.ResetTokenExpiresAt = &expiresAt
	user.UpdatedAt = s.now().UTC()

	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, NewServiceError("user", "request_password_reset", err)
	}

	log.Info("password reset issued", slog.String("user_id", user.ID.String()))
	return &PasswordReset{Token: token, ExpiresAt: expiresAt}, nil
}

// ConfirmPasswordReset consumes a reset token and sets a new password.
func (s *UserServiceImpl) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return domain.NewValidationError("new_password", err.Error(), err)
	}

	var userID uuid.UUID
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)

		user, err := users.GetByResetTokenHash(ctx, auth.HashResetToken(token))
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return ErrInvalidResetToken
			}
			return err
		}
		if !user.HasValidResetToken(s.now()) {
			return ErrInvalidResetToken
		}

		userID = user.ID
		user.ResetTokenHash = ""
		user.ResetTokenExpiresAt = nil
		return s.setPassword(ctx, users, user, newPassword)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			return err
		}
		return NewServiceError("user", "confirm_password_reset", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("password reset completed",
		slog.String("user_id", userID.String()))
	return nil
}

func (s *UserServiceImpl) setPassword(
	ctx context.Context,
	users store.UserStore,
	user *domain.User,
	password string,
) error {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	user.HashedPassword = hashed
	user.UpdatedAt = s.now().UTC()
	if err := users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
