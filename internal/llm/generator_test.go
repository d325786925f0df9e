package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/ports"
	"tonify/internal/trait"
)

// generationServer routes the two concurrent requests by their system prompt
// and responds with the configured payloads.
func generationServer(t *testing.T, narrativeContent, examplesContent string, examplesStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)

		if strings.Contains(req.Messages[0].Content, "examples") {
			if examplesStatus != 0 {
				w.WriteHeader(examplesStatus)
				fmt.Fprint(w, `{"error":{"message":"quota exceeded"}}`)
				return
			}
			fmt.Fprint(w, completionBody(examplesContent))
			return
		}
		fmt.Fprint(w, completionBody(narrativeContent))
	}))
}

const validNarrative = `{"title":"Warm Straight-Shooter","summary":"Writes plainly but kindly.","prompt":"Write warmly and directly."}`

const validExamples = `{"examples":["Dear team, ...","Big news today!","Thanks for reaching out...","The rain finally stopped..."]}`

func TestGenerateContentSuccess(t *testing.T) {
	server := generationServer(t, validNarrative, validExamples, 0)
	defer server.Close()

	generator := NewContentClient(testConfig(server.URL))
	content, err := generator.GenerateContent(context.Background(), trait.Vector{Warmth: 0.8, Directness: 0.6})
	require.NoError(t, err)

	assert.Equal(t, "Warm Straight-Shooter", content.Title)
	assert.Equal(t, "Writes plainly but kindly.", content.Summary)
	assert.Equal(t, "Write warmly and directly.", content.Prompt)
	require.Len(t, content.Examples, ports.ExampleCount)
}

func TestGenerateContentWrongExampleCount(t *testing.T) {
	threeExamples := `{"examples":["one","two","three"]}`
	server := generationServer(t, validNarrative, threeExamples, 0)
	defer server.Close()

	generator := NewContentClient(testConfig(server.URL))
	_, err := generator.GenerateContent(context.Background(), trait.Neutral())
	require.Error(t, err)
	assert.True(t, tonifyerrors.IsIncomplete(err), "got %v", err)
}

func TestGenerateContentMissingNarrativeField(t *testing.T) {
	missingPrompt := `{"title":"A Title","summary":"A summary."}`
	server := generationServer(t, missingPrompt, validExamples, 0)
	defer server.Close()

	generator := NewContentClient(testConfig(server.URL))
	_, err := generator.GenerateContent(context.Background(), trait.Neutral())
	require.Error(t, err)
	assert.True(t, tonifyerrors.IsIncomplete(err), "got %v", err)
}

func TestGenerateContentUnparseableNarrative(t *testing.T) {
	server := generationServer(t, "sure, here is your tone summary", validExamples, 0)
	defer server.Close()

	generator := NewContentClient(testConfig(server.URL))
	_, err := generator.GenerateContent(context.Background(), trait.Neutral())
	require.Error(t, err)
	assert.True(t, tonifyerrors.IsIncomplete(err), "got %v", err)
}

func TestGenerateContentQuotaSurfaces(t *testing.T) {
	server := generationServer(t, validNarrative, "", http.StatusTooManyRequests)
	defer server.Close()

	generator := NewContentClient(testConfig(server.URL))
	_, err := generator.GenerateContent(context.Background(), trait.Neutral())
	require.Error(t, err)
	assert.True(t, tonifyerrors.IsQuota(err), "got %v", err)
}

func TestGenerateContentRejectsInvalidTraits(t *testing.T) {
	server := generationServer(t, validNarrative, validExamples, 0)
	defer server.Close()

	generator := NewContentClient(testConfig(server.URL))
	_, err := generator.GenerateContent(context.Background(), trait.Vector{Humor: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside [-1, 1]")
}
