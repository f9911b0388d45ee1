package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
)

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse defines the successful response for login and refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// ChangePasswordRequest defines the payload for changing the password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8,max=72"`
}

// PasswordResetRequest asks for a reset token.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest sets a new password with a reset token.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"        validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
	// ResetToken is only set when reset tokens are exposed for testing.
	ResetToken string `json:"reset_token,omitempty"`
}

// WrongWordsResponse lists words answered wrongly.
type WrongWordsResponse struct {
	WrongWords []string `json:"wrong_words"`
}

// StartSessionRequest defines the payload for starting a quiz session.
type StartSessionRequest struct {
	DeckID      uuid.UUID `json:"deck_id"      validate:"required"`
	WordIndices []int     `json:"word_indices"`
	IsWrongOnly bool      `json:"is_wrong_only"`
}

// SubmitAnswerRequest defines the payload for answering the current question.
type SubmitAnswerRequest struct {
	Answer   string `json:"answer"`
	HintUsed int    `json:"hint_used" validate:"gte=0"`
}

// TTSRequest asks for speech audio.
type TTSRequest struct {
	Text string `json:"text" validate:"required"`
}

// ImageRequest asks for an association image.
type ImageRequest struct {
	Word string `json:"word" validate:"required"`
}

// GitHubCommitRequest publishes caller-supplied image bytes.
type GitHubCommitRequest struct {
	Word        string `json:"word"         validate:"required"`
	ImageBase64 string `json:"image_base64" validate:"required,base64"`
}

// GitHubCommitResponse reports the outcome of a publish.
type GitHubCommitResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}
