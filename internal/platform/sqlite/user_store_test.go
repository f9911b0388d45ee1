package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
	"github.com/phrazzld/voca-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, username, email string) *domain.User {
	t.Helper()
	u, err := domain.NewUser(username, email, "password123")
	require.NoError(t, err)
	u.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	return u
}

func TestSQLiteUserStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	users := sqlite.NewSQLiteUserStore(newDB(t), testLogger())

	user := newTestUser(t, "alice", "alice@example.com")
	require.NoError(t, users.Create(ctx, user))

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.True(t, byID.IsActive)
	assert.Nil(t, byID.ResetTokenExpiresAt)
	assert.WithinDuration(t, user.CreatedAt, byID.CreatedAt, time.Second)

	byName, err := users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestSQLiteUserStore_Duplicates(t *testing.T) {
	ctx := context.Background()
	users := sqlite.NewSQLiteUserStore(newDB(t), testLogger())

	require.NoError(t, users.Create(ctx, newTestUser(t, "bob", "bob@example.com")))

	err := users.Create(ctx, newTestUser(t, "bob", "other@example.com"))
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	err = users.Create(ctx, newTestUser(t, "bobby", "bob@example.com"))
	assert.ErrorIs(t, err, store.ErrEmailExists)

	// Users without email do not collide on the NULL column.
	require.NoError(t, users.Create(ctx, newTestUser(t, "carol", "")))
	require.NoError(t, users.Create(ctx, newTestUser(t, "dave", "")))
}

func TestSQLiteUserStore_UpdateResetToken(t *testing.T) {
	ctx := context.Background()
	users := sqlite.NewSQLiteUserStore(newDB(t), testLogger())

	user := newTestUser(t, "erin", "")
	require.NoError(t, users.Create(ctx, user))

	expires := time.Now().UTC().Add(time.Hour)
	user.ResetTokenHash = "abc123"
	user.ResetTokenExpiresAt = &expires
	require.NoError(t, users.Update(ctx, user))

	found, err := users.GetByResetTokenHash(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	require.NotNil(t, found.ResetTokenExpiresAt)
	assert.WithinDuration(t, expires, *found.ResetTokenExpiresAt, time.Second)

	found.ResetTokenHash = ""
	found.ResetTokenExpiresAt = nil
	require.NoError(t, users.Update(ctx, found))

	_, err = users.GetByResetTokenHash(ctx, "abc123")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	missing := newTestUser(t, "ghost", "")
	assert.ErrorIs(t, users.Update(ctx, missing), store.ErrUserNotFound)
}

func TestSQLiteUserStore_Delete(t *testing.T) {
	ctx := context.Background()
	users := sqlite.NewSQLiteUserStore(newDB(t), testLogger())

	user := newTestUser(t, "frank", "")
	require.NoError(t, users.Create(ctx, user))
	require.NoError(t, users.Delete(ctx, user.ID))
	assert.ErrorIs(t, users.Delete(ctx, user.ID), store.ErrUserNotFound)
}

func TestSQLiteUserStore_RejectsMissingHash(t *testing.T) {
	users := sqlite.NewSQLiteUserStore(newDB(t), testLogger())

	u, err := domain.NewUser("henry", "", "password123")
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(context.Background(), u), domain.ErrEmptyHashedPassword)
}
