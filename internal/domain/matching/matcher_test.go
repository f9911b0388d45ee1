package matching_test

import (
	"strings"
	"testing"

	"github.com/phrazzld/voca-api/internal/domain/matching"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Escape", "escape"},
		{"  give  up ", "giveup"},
		{"don't", "dont"},
		{`"quoted"`, "quoted"},
		{"탈출 하다", "탈출하다"},
		{"tab\tand\nnewline", "tabandnewline"},
		{"FULL　WIDTH", "fullwidth"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, matching.Normalize(tt.in))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"", "  A b ", `It's "Fine"`, "버리다", "MiXeD\tCase\n", "'\"'"}
	for _, in := range inputs {
		once := matching.Normalize(in)
		assert.Equal(t, once, matching.Normalize(once), "input %q", in)
	}
}

func TestIsCorrect(t *testing.T) {
	m := matching.NewDefaultMatcher()

	tests := []struct {
		name     string
		answer   string
		meanings string
		want     bool
	}{
		{"exact", "escape", "escape", true},
		{"second alternative", "flee", "escape,flee", true},
		{"whitespace around alternatives", "flee", "escape, FLEE ", true},
		{"case insensitive", "ESCAPE", "escape", true},
		{"inner whitespace ignored", "give up", "giveup", true},
		{"quotes ignored", "'escape'", "escape", true},
		{"hangul", "탈출하다", "탈출하다", true},
		{"hangul with spaces", "탈출 하다", "탈출하다, 도망치다", true},
		{"both empty", "", "", true},
		{"empty answer", "", "x", false},
		{"no partial match", "esca", "escape", false},
		{"no superstring match", "escaped", "escape", false},
		{"wrong answer", "wrong", "버리다", false},
		{"empty alternative matches empty answer", "", "escape,", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.IsCorrect(tt.answer, tt.meanings))
		})
	}
}

func TestIsCorrectCaseSymmetry(t *testing.T) {
	m := matching.NewDefaultMatcher()
	for _, word := range []string{"Escape", "aBaNdOn", "achieve it", "Übung"} {
		assert.True(t, m.IsCorrect(strings.ToUpper(word), strings.ToLower(word)), word)
		assert.True(t, m.IsCorrect(strings.ToLower(word), strings.ToUpper(word)), word)
	}
}

func TestMeaningsKeepsStoredSpelling(t *testing.T) {
	assert.Equal(t, []string{"Escape", "flee away"}, matching.Meanings(" Escape ,flee away"))
}
