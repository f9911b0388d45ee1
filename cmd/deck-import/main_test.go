package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/phrazzld/voca-api/internal/domain"
	"github.com/phrazzld/voca-api/internal/platform/sqlite"
	"github.com/phrazzld/voca-api/internal/service"
	"github.com/phrazzld/voca-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeckService(t *testing.T) service.DeckService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.NewDeckService(sqlite.NewSQLiteDeckStore(testdb.OpenSQLite(t), logger), logger)
	require.NoError(t, err)
	return svc
}

func TestImportDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Day 3.csv")
	require.NoError(t, os.WriteFile(path, []byte("escape,탈출하다\nabandon,버리다\n"), 0o600))

	svc := newDeckService(t)
	var out bytes.Buffer
	require.NoError(t, importDeck(context.Background(), svc, options{file: path}, nil, &out))

	var deck domain.DeckSummary
	require.NoError(t, json.Unmarshal(out.Bytes(), &deck))
	assert.Equal(t, "Day 3", deck.Name)
	assert.Equal(t, "Day 3.csv", deck.SourceFile)
	assert.Equal(t, 2, deck.WordCount)

	words, err := svc.ListWords(context.Background(), deck.ID)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, "abandon", words[1].Text)
}

func TestImportDeckErrors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(txt, []byte("a,b\n"), 0o600))

	svc := newDeckService(t)

	err := importDeck(context.Background(), svc, options{file: filepath.Join(dir, "missing.csv")}, nil, io.Discard)
	assert.ErrorIs(t, err, os.ErrNotExist)

	err = importDeck(context.Background(), svc, options{file: txt}, nil, io.Discard)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRunValidatesFlags(t *testing.T) {
	err := run(context.Background(), options{}, io.Discard)
	assert.EqualError(t, err, "-file is required")

	err = run(context.Background(), options{file: "x.csv", user: "not-a-uuid"}, io.Discard)
	assert.ErrorContains(t, err, "invalid -user")
}
