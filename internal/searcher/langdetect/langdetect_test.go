package langdetect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		lang     string
		reliable bool
	}{
		{"english", "india overview", "en", true},
		{"hindi", "भारत अवलोकन", "hi", true},
		{"tamil", "இந்தியா வரலாறு", "ta", true},
		{"telugu", "భారతదేశం చరిత్ర", "te", true},
		{"too short", "in", "", false},
		{"short after trim", "   ab   ", "", false},
		{"digits only", "12345", "", false},
		{"mixed without majority", "abc भारत", "", false},
		{"unsupported script", "Россия страна", "", false},
		{"mostly hindi", "भारत की राजधानी delhi", "hi", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.text)
			assert.Equal(t, tt.lang, got.Language)
			assert.Equal(t, tt.reliable, got.Reliable)
		})
	}
}

func TestDetectTrimsUnicodeSpace(t *testing.T) {
	assert.False(t, Detect(" \tab\n　").Reliable)
	assert.True(t, Detect(" india　").Reliable)
}

func TestScript(t *testing.T) {
	tests := map[string]string{
		"india":    "en",
		"भारत":     "hi",
		"இந்தியா":  "ta",
		"భారతదేశం": "te",
		"россия":   "Cyrillic",
		"123":      "",
		"":         "",
		"42india":  "en",
	}
	for word, want := range tests {
		assert.Equal(t, want, Script(word), word)
	}
}
