package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"logiscan/internal/metrics"
	"logiscan/internal/model"

	"github.com/microcosm-cc/bluemonday"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ErrNoChoices is returned when the completion carries no choices.
var ErrNoChoices = errors.New("openai: completion returned no choices")

// ErrNotObject is returned when the model answer is not a JSON object.
var ErrNotObject = errors.New("openai: analysis is not a json object")

// Analyzer turns article text into a structured analysis.
// A nil analysis means the article could not be analyzed.
type Analyzer interface {
	AnalyzeArticle(ctx context.Context, content string) (*model.Analysis, error)
}

// OpenAIClient implements Analyzer using the OpenAI Chat Completions API.
type OpenAIClient struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	maxRunes int
	limiter  *rate.Limiter
	policy   *bluemonday.Policy
}

type Config struct {
	APIKey            string
	Model             string
	BaseURL           string // optional
	Timeout           time.Duration
	RequestsPerMinute int // 0 disables client-side limiting
	MaxInputRunes     int
}

func NewOpenAI(cfg Config) *OpenAIClient {
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		panic("OpenAI model must be specified")
	}
	o := &OpenAIClient{
		client:   openai.NewClientWithConfig(cc),
		model:    model,
		timeout:  cfg.Timeout,
		maxRunes: cfg.MaxInputRunes,
		policy:   bluemonday.StrictPolicy(),
	}
	if cfg.RequestsPerMinute > 0 {
		o.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return o
}

// AnalyzeArticle sends one completion request for the article text and parses
// the JSON answer. Exactly one call is attempted.
func (o *OpenAIClient) AnalyzeArticle(ctx context.Context, content string) (*model.Analysis, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			metrics.RecordEnrichment("error")
			return nil, fmt.Errorf("openai: rate limit wait: %w", err)
		}
	}

	out, err := o.create(ctx, systemPrompt, userPrompt(o.prepare(content)))
	if err != nil {
		metrics.RecordEnrichment("error")
		slog.Error("openai: analyze article error", "err", err)
		return nil, err
	}
	a, err := ParseAnalysis(out)
	if err != nil {
		metrics.RecordEnrichment("invalid")
		slog.Error("openai: invalid analysis json", "err", err)
		return nil, err
	}
	metrics.RecordEnrichment("ok")
	return a, nil
}

// prepare strips markup from feed HTML and keeps the prompt within budget.
func (o *OpenAIClient) prepare(content string) string {
	text := html.UnescapeString(o.policy.Sanitize(content))
	text = strings.Join(strings.Fields(text), " ")
	if o.maxRunes > 0 {
		if r := []rune(text); len(r) > o.maxRunes {
			text = string(r[:o.maxRunes])
		}
	}
	return text
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Message.Content, nil
}

// ParseAnalysis decodes the model answer. Empty text is read as "{}" and
// missing keys default to empty values. Anything but a JSON object, null
// included, is rejected.
func ParseAnalysis(text string) (*model.Analysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "{}"
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if fields == nil {
		return nil, ErrNotObject
	}
	var a model.Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if a.SummaryPoints == nil {
		a.SummaryPoints = []string{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
	return &a, nil
}
