package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/domain"
)

type userRow struct {
	ID                  uuid.UUID      `db:"id"`
	Username            string         `db:"username"`
	Email               sql.NullString `db:"email"`
	HashedPassword      string         `db:"hashed_password"`
	IsActive            bool           `db:"is_active"`
	ResetTokenHash      sql.NullString `db:"reset_token_hash"`
	ResetTokenExpiresAt sql.NullTime   `db:"reset_token_expires_at"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email.String,
		HashedPassword: r.HashedPassword,
		IsActive:       r.IsActive,
		ResetTokenHash: r.ResetTokenHash.String,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if r.ResetTokenExpiresAt.Valid {
		t := r.ResetTokenExpiresAt.Time.UTC()
		u.ResetTokenExpiresAt = &t
	}
	return u
}

type deckRow struct {
	ID          uuid.UUID     `db:"id"`
	Name        string        `db:"name"`
	Description string        `db:"description"`
	SourceFile  string        `db:"source_file"`
	UserID      uuid.NullUUID `db:"user_id"`
	CreatedAt   time.Time     `db:"created_at"`
	WordCount   int           `db:"word_count"`
}

func (r deckRow) toDomain() *domain.Deck {
	return &domain.Deck{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		SourceFile:  r.SourceFile,
		UserID:      uuidPtr(r.UserID),
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

type wordRow struct {
	ID          uuid.UUID `db:"id"`
	DeckID      uuid.UUID `db:"deck_id"`
	Word        string    `db:"word"`
	Meaning     string    `db:"meaning"`
	IndexInDeck int       `db:"index_in_deck"`
}

func (r wordRow) toDomain() *domain.Word {
	return &domain.Word{
		ID:          r.ID,
		DeckID:      r.DeckID,
		Text:        r.Word,
		Meaning:     r.Meaning,
		IndexInDeck: r.IndexInDeck,
	}
}

type sessionRow struct {
	ID             uuid.UUID     `db:"id"`
	DeckID         uuid.UUID     `db:"deck_id"`
	UserID         uuid.NullUUID `db:"user_id"`
	WordIndices    string        `db:"word_indices"`
	CurrentIndex   int           `db:"current_index"`
	Score          int           `db:"score"`
	TotalQuestions int           `db:"total_questions"`
	IsCompleted    bool          `db:"is_completed"`
	IsWrongOnly    bool          `db:"is_wrong_only"`
	CreatedAt      time.Time     `db:"created_at"`
	CompletedAt    sql.NullTime  `db:"completed_at"`
}

func (r sessionRow) toDomain() (*domain.QuizSession, error) {
	s := &domain.QuizSession{
		ID:             r.ID,
		DeckID:         r.DeckID,
		UserID:         uuidPtr(r.UserID),
		CurrentIndex:   r.CurrentIndex,
		Score:          r.Score,
		TotalQuestions: r.TotalQuestions,
		IsCompleted:    r.IsCompleted,
		IsWrongOnly:    r.IsWrongOnly,
		CreatedAt:      r.CreatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(r.WordIndices), &s.WordIndices); err != nil {
		return nil, fmt.Errorf("failed to decode word indices: %w", err)
	}
	if r.CompletedAt.Valid {
		t := r.CompletedAt.Time.UTC()
		s.CompletedAt = &t
	}
	return s, nil
}

type answerRow struct {
	ID         uuid.UUID `db:"id"`
	SessionID  uuid.UUID `db:"session_id"`
	WordID     uuid.UUID `db:"word_id"`
	Position   int       `db:"position"`
	UserAnswer string    `db:"user_answer"`
	IsCorrect  bool      `db:"is_correct"`
	HintsUsed  int       `db:"hints_used"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r answerRow) toDomain() *domain.Answer {
	return &domain.Answer{
		ID:         r.ID,
		SessionID:  r.SessionID,
		WordID:     r.WordID,
		Position:   r.Position,
		UserAnswer: r.UserAnswer,
		IsCorrect:  r.IsCorrect,
		HintsUsed:  r.HintsUsed,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

type wrongStatRow struct {
	ID          uuid.UUID `db:"id"`
	Word        string    `db:"word"`
	DeckID      uuid.UUID `db:"deck_id"`
	UserID      uuid.UUID `db:"user_id"`
	WrongCount  int       `db:"wrong_count"`
	LastWrongAt time.Time `db:"last_wrong_at"`
}

func (r wrongStatRow) toDomain() *domain.WrongStat {
	return &domain.WrongStat{
		ID:          r.ID,
		Word:        r.Word,
		DeckID:      r.DeckID,
		UserID:      r.UserID,
		WrongCount:  r.WrongCount,
		LastWrongAt: r.LastWrongAt.UTC(),
	}
}

type cacheRow struct {
	ID          uuid.UUID      `db:"id"`
	Kind        string         `db:"kind"`
	Key         string         `db:"cache_key"`
	Data        []byte         `db:"data"`
	ContentType string         `db:"content_type"`
	SourceURL   sql.NullString `db:"source_url"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r cacheRow) toDomain() *domain.CacheEntry {
	return &domain.CacheEntry{
		ID:          r.ID,
		Kind:        domain.CacheKind(r.Kind),
		Key:         r.Key,
		Data:        r.Data,
		ContentType: r.ContentType,
		SourceURL:   r.SourceURL.String,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}
