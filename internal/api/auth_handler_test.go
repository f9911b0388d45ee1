package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/mocks"
	"github.com/phrazzld/voca-api/internal/service"
	"github.com/phrazzld/voca-api/internal/service/auth"
	"github.com/phrazzld/voca-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authRouter(users service.UserService, cfg config.AuthConfig) (http.Handler, *AuthHandler) {
	h := NewAuthHandler(users, cfg, discardLogger())
	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/refresh", h.RefreshToken)
	r.Get("/auth/me", h.Me)
	r.Post("/auth/change-password", h.ChangePassword)
	r.Post("/auth/password-reset", h.RequestPasswordReset)
	r.Post("/auth/password-reset/confirm", h.ConfirmPasswordReset)
	return r, h
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		registerFn func(ctx context.Context, in service.RegisterInput) (*domain.User, error)
		wantStatus int
		wantError  string
	}{
		{
			name:       "created",
			body:       RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "email is optional",
			body:       RegisterRequest{Username: "bob", Password: "password123"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "short password",
			body:       RegisterRequest{Username: "alice", Password: "short"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid password: too short",
		},
		{
			name:       "bad email",
			body:       RegisterRequest{Username: "alice", Email: "nope", Password: "password123"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid email: invalid email format",
		},
		{
			name:       "malformed json",
			body:       `{"username":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name: "username taken",
			body: RegisterRequest{Username: "alice", Password: "password123"},
			registerFn: func(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
				return nil, store.ErrUsernameExists
			},
			wantStatus: http.StatusConflict,
			wantError:  "Username already registered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := authRouter(&mocks.MockUserService{RegisterFn: tt.registerFn}, config.AuthConfig{})

			rec := serve(t, router, http.MethodPost, "/auth/register", tt.body, nil)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, errorMessage(t, rec))
				return
			}
			var resp UserResponse
			decodeBody(t, rec, &resp)
			assert.NotEqual(t, uuid.Nil, resp.ID)
			assert.NotContains(t, rec.Body.String(), "password")
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		users := &mocks.MockUserService{
			LoginFn: func(ctx context.Context, username, password string) (*service.TokenPair, error) {
				assert.Equal(t, "alice", username)
				assert.Equal(t, "password123", password)
				return &service.TokenPair{
					UserID:       userID,
					AccessToken:  "access",
					RefreshToken: "refresh",
					ExpiresAt:    time.Now().Add(time.Hour),
				}, nil
			},
		}
		router, _ := authRouter(users, config.AuthConfig{})

		rec := serve(t, router, http.MethodPost, "/auth/login",
			LoginRequest{Username: "alice", Password: "password123"}, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp AuthResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "access", resp.AccessToken)
		assert.Equal(t, "refresh", resp.RefreshToken)
		assert.Equal(t, "bearer", resp.TokenType)
		assert.InDelta(t, 3600, resp.ExpiresIn, 5)
	})

	t.Run("bad credentials", func(t *testing.T) {
		users := &mocks.MockUserService{
			LoginFn: func(ctx context.Context, username, password string) (*service.TokenPair, error) {
				return nil, service.ErrInvalidCredentials
			},
		}
		router, _ := authRouter(users, config.AuthConfig{})

		rec := serve(t, router, http.MethodPost, "/auth/login",
			LoginRequest{Username: "alice", Password: "wrong"}, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid username or password", errorMessage(t, rec))
	})

	t.Run("inactive", func(t *testing.T) {
		users := &mocks.MockUserService{
			LoginFn: func(ctx context.Context, username, password string) (*service.TokenPair, error) {
				return nil, service.ErrInactiveUser
			},
		}
		router, _ := authRouter(users, config.AuthConfig{})

		rec := serve(t, router, http.MethodPost, "/auth/login",
			LoginRequest{Username: "alice", Password: "password123"}, nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	users := &mocks.MockUserService{
		RefreshFn: func(ctx context.Context, token string) (*service.TokenPair, error) {
			if token == "expired" {
				return nil, auth.ErrExpiredRefreshToken
			}
			return &service.TokenPair{AccessToken: "a2", RefreshToken: "r2", ExpiresAt: time.Now().Add(time.Minute)}, nil
		},
	}
	router, _ := authRouter(users, config.AuthConfig{})

	rec := serve(t, router, http.MethodPost, "/auth/refresh", RefreshTokenRequest{RefreshToken: "good"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AuthResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "a2", resp.AccessToken)

	rec = serve(t, router, http.MethodPost, "/auth/refresh", RefreshTokenRequest{RefreshToken: "expired"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid refresh token", errorMessage(t, rec))

	rec = serve(t, router, http.MethodPost, "/auth/refresh", RefreshTokenRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	userID := uuid.New()
	users := &mocks.MockUserService{
		GetUserFn: func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
			return &domain.User{ID: id, Username: "alice", HashedPassword: "secret-hash"}, nil
		},
	}
	router, _ := authRouter(users, config.AuthConfig{})

	rec := serve(t, router, http.MethodGet, "/auth/me", nil, &userID)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp UserResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, userID, resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	rec = serve(t, router, http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	userID := uuid.New()
	var gotCurrent, gotNext string
	users := &mocks.MockUserService{
		ChangePasswordFn: func(ctx context.Context, id uuid.UUID, current, next string) error {
			gotCurrent, gotNext = current, next
			if current == "wrong-password" {
				return domain.NewValidationError("current_password", "is incorrect", service.ErrIncorrectPassword)
			}
			return nil
		},
	}
	router, _ := authRouter(users, config.AuthConfig{})

	rec := serve(t, router, http.MethodPost, "/auth/change-password",
		ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"}, &userID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "password123", gotCurrent)
	assert.Equal(t, "newpassword1", gotNext)

	rec = serve(t, router, http.MethodPost, "/auth/change-password",
		ChangePasswordRequest{CurrentPassword: "wrong-password", NewPassword: "newpassword1"}, &userID)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid current_password: is incorrect", errorMessage(t, rec))

	rec = serve(t, router, http.MethodPost, "/auth/change-password",
		ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	users := &mocks.MockUserService{
		RequestPasswordResetFn: func(ctx context.Context, email string) (*service.PasswordReset, error) {
			if email == "known@example.com" {
				return &service.PasswordReset{Token: "reset-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
			}
			return &service.PasswordReset{}, nil
		},
		ConfirmPasswordResetFn: func(ctx context.Context, token, newPassword string) error {
			if token != "reset-token" {
				return service.ErrInvalidResetToken
			}
			return nil
		},
	}

	t.Run("same response for known and unknown email", func(t *testing.T) {
		router, _ := authRouter(users, config.AuthConfig{})

		known := serve(t, router, http.MethodPost, "/auth/password-reset",
			PasswordResetRequest{Email: "known@example.com"}, nil)
		unknown := serve(t, router, http.MethodPost, "/auth/password-reset",
			PasswordResetRequest{Email: "unknown@example.com"}, nil)

		assert.Equal(t, http.StatusOK, known.Code)
		assert.Equal(t, http.StatusOK, unknown.Code)
		assert.JSONEq(t, known.Body.String(), unknown.Body.String())
		assert.NotContains(t, known.Body.String(), "reset-token")
	})

	t.Run("token exposed when configured", func(t *testing.T) {
		router, _ := authRouter(users, config.AuthConfig{ExposeResetToken: true})

		rec := serve(t, router, http.MethodPost, "/auth/password-reset",
			PasswordResetRequest{Email: "known@example.com"}, nil)

		var resp MessageResponse
		decodeBody(t, rec, &resp)
		assert.Equal(t, "reset-token", resp.ResetToken)
	})

	t.Run("confirm", func(t *testing.T) {
		router, _ := authRouter(users, config.AuthConfig{})

		rec := serve(t, router, http.MethodPost, "/auth/password-reset/confirm",
			PasswordResetConfirmRequest{Token: "reset-token", NewPassword: "brandnew123"}, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = serve(t, router, http.MethodPost, "/auth/password-reset/confirm",
			PasswordResetConfirmRequest{Token: "stale", NewPassword: "brandnew123"}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid or expired reset token", errorMessage(t, rec))
	})
}
