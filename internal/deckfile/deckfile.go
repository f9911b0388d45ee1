// Package deckfile reads word/meaning pairs from uploaded deck files.
//
// Two formats are accepted: CSV and XLSX (first sheet). In both, each row
// holds a word in the first column and its meaning in the second. Rows with
// fewer than two columns or an empty cell in either position are skipped.
package deckfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported deck file format")

	// ErrInvalidEncoding is returned when a CSV file is not valid UTF-8.
	ErrInvalidEncoding = errors.New("deck file must be UTF-8 encoded")

	// ErrMalformed is returned when the file cannot be parsed at all.
	ErrMalformed = errors.New("malformed deck file")
)

// Format identifies a deck file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Entry is one accepted row of a deck file.
type Entry struct {
	Word    string
	Meaning string
}

// DetectFormat maps a file name to its format by extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// DeckName derives a deck name from a file name: the base name without
// its extension.
func DeckName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Parse reads entries from r using the format implied by filename.
func Parse(filename string, r io.Reader) ([]Entry, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	if format == FormatXLSX {
		return ParseXLSX(r)
	}
	return ParseCSV(r)
}

// ParseCSV reads entries from CSV data. Rows may have any number of
// columns; only the first two are used.
func ParseCSV(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return collect(rows), nil
}

// ParseXLSX reads entries from the first sheet of an XLSX workbook.
func ParseXLSX(r io.Reader) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformed)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return collect(rows), nil
}

func collect(rows [][]string) []Entry {
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		word := strings.TrimSpace(row[0])
		meaning := strings.TrimSpace(row[1])
		if word == "" || meaning == "" {
			continue
		}
		entries = append(entries, Entry{Word: word, Meaning: meaning})
	}
	return entries
}
