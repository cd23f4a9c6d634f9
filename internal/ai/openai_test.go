package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewOpenAI(Config{
		APIKey:        "sk-test",
		Model:         "gpt-4o",
		BaseURL:       srv.URL + "/v1",
		Timeout:       5 * time.Second,
		MaxInputRunes: 50,
	})
}

func TestAnalyzeArticleSendsFixedPrompt(t *testing.T) {
	var got chatRequest
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(`{"summary_points":["p1"],"why_it_matters":"m","tags":["t1"]}`)))
	})

	a, err := c.AnalyzeArticle(context.Background(), "<p>Ceny paliw &amp; opłaty</p>")
	require.NoError(t, err)
	require.NotNil(t, a)

	assert.Equal(t, []string{"p1"}, a.SummaryPoints)
	assert.Equal(t, "m", a.WhyItMatters)
	assert.Equal(t, []string{"t1"}, a.Tags)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "gpt-4o", got.Model)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "summary_points")
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Przeanalizuj następujący artykuł: Ceny paliw & opłaty", got.Messages[1].Content)
}

func TestAnalyzeArticleTruncatesLongInput(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completionBody(`{}`)))
	})

	_, err := c.AnalyzeArticle(context.Background(), strings.Repeat("ż", 200))
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	body := strings.TrimPrefix(got.Messages[1].Content, userPromptPrefix)
	assert.Equal(t, 50, len([]rune(body)))
}

func TestAnalyzeArticleMarkupOnlyInput(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completionBody(`{}`)))
	})

	_, err := c.AnalyzeArticle(context.Background(), `<img src="x.png"><br/>  <p></p>`)
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, userPromptPrefix, got.Messages[1].Content)
}

func TestAnalyzeArticleFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"service error", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(completionBody(`not json`)))
		}},
		{"null reply", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(completionBody(`null`)))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, tc.handler)
			a, err := c.AnalyzeArticle(context.Background(), "text")
			assert.Error(t, err)
			assert.Nil(t, a)
		})
	}
}

func TestParseAnalysisDefaults(t *testing.T) {
	a, err := ParseAnalysis("")
	require.NoError(t, err)
	assert.Equal(t, []string{}, a.SummaryPoints)
	assert.Equal(t, "", a.WhyItMatters)
	assert.Equal(t, []string{}, a.Tags)

	a, err = ParseAnalysis(`{"why_it_matters":"tylko to"}`)
	require.NoError(t, err)
	assert.Empty(t, a.SummaryPoints)
	assert.Equal(t, "tylko to", a.WhyItMatters)

	_, err = ParseAnalysis(`{"summary_points":"not a list"}`)
	assert.Error(t, err)

	a, err = ParseAnalysis("null")
	assert.ErrorIs(t, err, ErrNotObject)
	assert.Nil(t, a)

	for _, reply := range []string{"[]", `"text"`, "42"} {
		a, err = ParseAnalysis(reply)
		assert.Error(t, err, reply)
		assert.Nil(t, a, reply)
	}
}
