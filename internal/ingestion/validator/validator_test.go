package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion"
)

var langs = []string{"en", "hi", "ta", "te"}

func TestValidRequest(t *testing.T) {
	req := &ingestion.IngestRequest{
		Title:    "  India Overview ",
		URL:      "https://example.org/india",
		Body:     "history and culture",
		Language: " EN ",
	}
	require.NoError(t, New(langs).ValidateIngestRequest(req))
	assert.Equal(t, "India Overview", req.Title)
	assert.Equal(t, "en", req.Language)
}

func TestBodyIsOptional(t *testing.T) {
	req := &ingestion.IngestRequest{Title: "भारत अवलोकन", URL: "https://example.org/bharat", Language: "hi"}
	assert.NoError(t, New(langs).ValidateIngestRequest(req))
}

func TestFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   ingestion.IngestRequest
		field string
	}{
		{"missing title", ingestion.IngestRequest{Title: "   ", URL: "https://e.org/a", Language: "en"}, "title"},
		{"missing url", ingestion.IngestRequest{Title: "t", Language: "en"}, "url"},
		{"relative url", ingestion.IngestRequest{Title: "t", URL: "not a url", Language: "en"}, "url"},
		{"missing language", ingestion.IngestRequest{Title: "t", URL: "https://e.org/a"}, "language_code"},
		{"unsupported language", ingestion.IngestRequest{Title: "t", URL: "https://e.org/a", Language: "fr"}, "language_code"},
		{"long title", ingestion.IngestRequest{Title: strings.Repeat("a", 1025), URL: "https://e.org/a", Language: "en"}, "title"},
	}
	v := New(langs)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := v.ValidateIngestRequest(&req)
			require.Error(t, err)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Len(t, verr.Fields, 1)
		})
	}
}

func TestErrorMessageIsStable(t *testing.T) {
	err := New(langs).ValidateIngestRequest(&ingestion.IngestRequest{})
	require.Error(t, err)
	assert.Equal(t, "language_code:language_code is required; title:title is required; url:url is required", err.Error())
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []string{"en", "hi", "ta", "te"}, New([]string{"te", "en", "hi", "ta"}).Supported())
}
