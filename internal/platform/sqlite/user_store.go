package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/logger"
	"github.com/phrazzld/voca-api/internal/store"
)

const userColumns = `id, username, email, hashed_password, is_active,
	reset_token_hash, reset_token_expires_at, created_at, updated_at`

// SQLiteUserStore implements store.UserStore on SQLite.
type SQLiteUserStore struct {
	conn
	logger *slog.Logger
}

// NewSQLiteUserStore creates a user store over db.
// If logger is nil, a default logger will be used.
func NewSQLiteUserStore(db *sql.DB, logger *slog.Logger) *SQLiteUserStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLiteUserStore{
		conn:   newConn(db),
		logger: logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*SQLiteUserStore)(nil)

// WithTx implements store.UserStore.WithTx
func (s *SQLiteUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &SQLiteUserStore{conn: s.withTx(tx), logger: s.logger}
}

// Create implements store.UserStore.Create
func (s *SQLiteUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if user.HashedPassword == "" {
		return domain.ErrEmptyHashedPassword
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		user.ID,
		user.Username,
		nullString(user.Email),
		user.HashedPassword,
		user.IsActive,
		nullString(user.ResetTokenHash),
		user.ResetTokenExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate user on create", slog.String("user_id", user.ID.String()))
			return duplicateUserError(err)
		}
		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return MapError(err)
	}

	log.Info("user created successfully", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *SQLiteUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getOne(ctx, "id", id)
}

// GetByUsername implements store.UserStore.GetByUsername
func (s *SQLiteUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getOne(ctx, "username", username)
}

// GetByEmail implements store.UserStore.GetByEmail
func (s *SQLiteUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.getOne(ctx, "email", email)
}

// GetByResetTokenHash implements store.UserStore.GetByResetTokenHash
func (s *SQLiteUserStore) GetByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	return s.getOne(ctx, "reset_token_hash", tokenHash)
}

// getOne loads a user by a unique column. column is never user input.
func (s *SQLiteUserStore) getOne(ctx context.Context, column string, value any) (*domain.User, error) {
	var row userRow
	err := s.q.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("error", err.Error()),
			slog.String("lookup", column))
		return nil, MapError(err)
	}
	return row.toDomain(), nil
}

// Update implements store.UserStore.Update
func (s *SQLiteUserStore) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	result, err := s.q.ExecContext(ctx, `
		UPDATE users
		SET username = ?, email = ?, hashed_password = ?, is_active = ?,
			reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ?
		WHERE id = ?
	`,
		user.Username,
		nullString(user.Email),
		user.HashedPassword,
		user.IsActive,
		nullString(user.ResetTokenHash),
		user.ResetTokenExpiresAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return duplicateUserError(err)
		}
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Delete implements store.UserStore.Delete
func (s *SQLiteUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user deleted successfully",
		slog.String("user_id", id.String()))
	return nil
}

func duplicateUserError(err error) error {
	if ViolatesColumn(err, "users.email") {
		return store.ErrEmailExists
	}
	return store.ErrUsernameExists
}
