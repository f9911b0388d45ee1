package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/service"
)

// MockUserService implements service.UserService for testing.
// Nil functions return zero values.
type MockUserService struct {
	RegisterFn             func(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	LoginFn                func(ctx context.Context, username, password string) (*service.TokenPair, error)
	RefreshFn              func(ctx context.Context, refreshToken string) (*service.TokenPair, error)
	GetUserFn              func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	ChangePasswordFn       func(ctx context.Context, userID uuid.UUID, current, next string) error
	RequestPasswordResetFn func(ctx context.Context, email string) (*service.PasswordReset, error)
	ConfirmPasswordResetFn func(ctx context.Context, token, newPassword string) error
}

var _ service.UserService = (*MockUserService)(nil)

// Register implements service.UserService
func (m *MockUserService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, in)
	}
	return &domain.User{ID: uuid.New(), Username: in.Username, Email: in.Email, IsActive: true}, nil
}

// Login implements service.UserService
func (m *MockUserService) Login(ctx context.Context, username, password string) (*service.TokenPair, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, username, password)
	}
	return &service.TokenPair{}, nil
}

// Refresh implements service.UserService
func (m *MockUserService) Refresh(ctx context.Context, refreshToken string) (*service.TokenPair, error) {
	if m.RefreshFn != nil {
		return m.RefreshFn(ctx, refreshToken)
	}
	return &service.TokenPair{}, nil
}

// GetUser implements service.UserService
func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return &domain.User{ID: userID}, nil
}

// ChangePassword implements service.UserService
func (m *MockUserService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if m.ChangePasswordFn != nil {
		return m.ChangePasswordFn(ctx, userID, current, next)
	}
	return nil
}

// RequestPasswordReset implements service.UserService
func (m *MockUserService) RequestPasswordReset(ctx context.Context, email string) (*service.PasswordReset, error) {
	if m.RequestPasswordResetFn != nil {
		return m.RequestPasswordResetFn(ctx, email)
	}
	return &service.PasswordReset{}, nil
}

// ConfirmPasswordReset implements service.UserService
func (m *MockUserService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if m.ConfirmPasswordResetFn != nil {
		return m.ConfirmPasswordResetFn(ctx, token, newPassword)
	}
	return nil
}
