package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewQuizSession(t *testing.T) {
	indices := []int{0, 2}
	s, err := NewQuizSession(uuid.New(), nil, indices, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if s.TotalQuestions != 2 {
		t.Errorf("Expected 2 questions, got %d", s.TotalQuestions)
	}
	if s.CurrentIndex != 0 || s.Score != 0 || s.IsCompleted || s.CompletedAt != nil {
		t.Errorf("Expected a fresh active session, got %+v", s)
	}

	indices[0] = 99
	if s.WordIndices[0] != 0 {
		t.Error("Expected word indices to be copied")
	}

	if _, err := NewQuizSession(uuid.Nil, nil, indices, false); !errors.Is(err, ErrEmptyDeckID) {
		t.Errorf("Expected %v, got %v", ErrEmptyDeckID, err)
	}
	if _, err := NewQuizSession(uuid.New(), nil, []int{1, -1}, false); !errors.Is(err, ErrNegativeWordIndex) {
		t.Errorf("Expected %v, got %v", ErrNegativeWordIndex, err)
	}
}

func TestQuizSessionAdvance(t *testing.T) {
	s, err := NewQuizSession(uuid.New(), nil, []int{2, 0, 1}, false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	idx, ok := s.CurrentWordIndex()
	if !ok || idx != 2 {
		t.Fatalf("Expected first word index 2, got %d (ok=%v)", idx, ok)
	}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, correct := range []bool{true, false, true} {
		if err := s.Advance(correct, now); err != nil {
			t.Fatalf("Advance %d: unexpected error %v", i, err)
		}
		if s.CurrentIndex != i+1 {
			t.Errorf("Expected cursor %d, got %d", i+1, s.CurrentIndex)
		}
	}

	if s.Score != 2 {
		t.Errorf("Expected score 2, got %d", s.Score)
	}
	if !s.IsCompleted || s.CompletedAt == nil || !s.CompletedAt.Equal(now) {
		t.Errorf("Expected completed session stamped at %v, got %+v", now, s)
	}
	if s.Progress() != "3/3" {
		t.Errorf("Expected progress 3/3, got %s", s.Progress())
	}
	if _, ok := s.CurrentWordIndex(); ok {
		t.Error("Expected no current word after completion")
	}
	if err := s.Advance(true, now); !errors.Is(err, ErrSessionAlreadyEnded) {
		t.Errorf("Expected %v, got %v", ErrSessionAlreadyEnded, err)
	}
	if s.Score != 2 || s.CurrentIndex != 3 {
		t.Error("Expected a rejected advance to leave the session untouched")
	}
}

func TestQuizSessionCompletesOnlyAtEnd(t *testing.T) {
	s, _ := NewQuizSession(uuid.New(), nil, []int{0, 1}, true)

	_ = s.Advance(false, time.Now())
	if s.IsCompleted {
		t.Error("Expected session to stay active before the last question")
	}
	if s.Progress() != "1/2" {
		t.Errorf("Expected progress 1/2, got %s", s.Progress())
	}
}
