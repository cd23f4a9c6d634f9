// Package pipeline fetches feeds, skips known articles, enriches new ones and
// persists them, collecting a best-effort summary of the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"logiscan/internal/metrics"
	"logiscan/internal/model"
	"logiscan/internal/storage"
)

// ErrAlreadyRunning is returned when another run holds the run lock.
var ErrAlreadyRunning = errors.New("ingestion already running")

// Fetcher fetches and parses one feed.
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]model.FeedItem, error)
}

// Analyzer enriches article text. A nil analysis marks a failed article.
type Analyzer interface {
	AnalyzeArticle(ctx context.Context, content string) (*model.Analysis, error)
}

// Store is the persistence the pipeline needs. Create returns
// storage.ErrDuplicate when the URL was stored concurrently.
type Store interface {
	Exists(ctx context.Context, originalURL string) (bool, error)
	Create(ctx context.Context, a *model.Article) error
}

// Locker guards against overlapping runs.
type Locker interface {
	TryLock(ctx context.Context) (unlock func(context.Context) error, acquired bool, err error)
}

// Result summarizes a run. Processed counts every item seen in parsed feeds.
type Result struct {
	Processed   int      `json:"processed"`
	NewArticles int      `json:"newArticles"`
	Errors      []string `json:"errors"`
}

func (r Result) withError(kind, msg string) Result {
	metrics.RecordError(kind)
	r.Errors = append(r.Errors, msg)
	return r
}

// Pipeline runs ingestion over a fixed list of feeds, one feed and one
// article at a time.
type Pipeline struct {
	feeds    []string
	fetcher  Fetcher
	analyzer Analyzer
	store    Store
	locker   Locker
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLocker makes Run fail with ErrAlreadyRunning while another run holds l.
func WithLocker(l Locker) Option {
	return func(p *Pipeline) { p.locker = l }
}

func New(feeds []string, f Fetcher, a Analyzer, s Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		feeds:    append([]string(nil), feeds...),
		fetcher:  f,
		analyzer: a,
		store:    s,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Feeds returns the configured feed URLs.
func (p *Pipeline) Feeds() []string {
	return append([]string(nil), p.feeds...)
}

// Run processes every feed. Feed and article failures are recorded in the
// result and never stop the run; an error is returned only when the run
// could not be carried out at all.
func (p *Pipeline) Run(ctx context.Context) (res Result, err error) {
	start := time.Now()
	res.Errors = []string{}
	status := "ok"

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline: run aborted: %v", r)
			slog.Error("pipeline: run aborted", "panic", r)
		}
		switch {
		case errors.Is(err, ErrAlreadyRunning):
			status = "skipped"
		case err != nil:
			status = "failed"
		}
		metrics.RecordRun(status, res.Processed, res.NewArticles, time.Since(start).Seconds())
	}()

	if p.locker != nil {
		unlock, acquired, lerr := p.locker.TryLock(ctx)
		if lerr != nil {
			return res, fmt.Errorf("pipeline: %w", lerr)
		}
		if !acquired {
			return res, ErrAlreadyRunning
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				slog.Warn("pipeline: release lock failed", "error", uerr)
			}
		}()
	}

	for _, feedURL := range p.feeds {
		res = p.processFeed(ctx, feedURL, res)
	}
	slog.Info("pipeline: run completed",
		"processed", res.Processed,
		"new_articles", res.NewArticles,
		"errors", len(res.Errors),
		"duration", time.Since(start).String())
	return res, nil
}

func (p *Pipeline) processFeed(ctx context.Context, feedURL string, res Result) Result {
	slog.Info("pipeline: processing feed", "feed", feedURL)
	source, err := sourceName(feedURL)
	if err != nil {
		slog.Error("pipeline: invalid feed url", "feed", feedURL, "error", err)
		return res.withError(metrics.KindFeed, "Error processing feed: "+feedURL)
	}
	items, err := p.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		slog.Error("pipeline: feed failed", "feed", feedURL, "error", err)
		return res.withError(metrics.KindFeed, "Error processing feed: "+feedURL)
	}
	for _, it := range items {
		res.Processed++
		res = p.processItem(ctx, source, it, res)
	}
	return res
}

func (p *Pipeline) processItem(ctx context.Context, source string, it model.FeedItem, res Result) Result {
	if it.Link == "" {
		slog.Warn("pipeline: item without link", "title", it.Title)
		return res.withError(metrics.KindStore, "Error processing: "+it.Title)
	}

	exists, err := p.store.Exists(ctx, it.Link)
	if err != nil {
		slog.Error("pipeline: exists check failed", "url", it.Link, "error", err)
		return res.withError(metrics.KindStore, "Error processing: "+it.Title)
	}
	if exists {
		slog.Debug("pipeline: article already exists", "url", it.Link)
		return res
	}

	analysis, err := p.analyzer.AnalyzeArticle(ctx, it.Content())
	if err != nil || analysis == nil {
		slog.Warn("pipeline: failed to analyze article", "title", it.Title, "error", err)
		return res.withError(metrics.KindAnalyze, "Failed to analyze: "+it.Title)
	}

	a := newArticle(source, it, analysis)
	if err := p.store.Create(ctx, a); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Info("pipeline: article stored concurrently", "url", it.Link)
			return res
		}
		slog.Error("pipeline: store article failed", "url", it.Link, "error", err)
		return res.withError(metrics.KindStore, "Error processing: "+it.Title)
	}
	res.NewArticles++
	slog.Info("pipeline: article stored", "title", a.Title, "source", source)
	return res
}

func newArticle(source string, it model.FeedItem, an *model.Analysis) *model.Article {
	title := it.Title
	if title == "" {
		title = model.UntitledTitle
	}
	points := an.SummaryPoints
	if points == nil {
		points = []string{}
	}
	tags := an.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.Article{
		Title:         title,
		OriginalURL:   it.Link,
		SourceName:    source,
		PublishedAt:   it.PublishedAt,
		SummaryPoints: points,
		WhyItMatters:  an.WhyItMatters,
		Tags:          tags,
	}
}

// sourceName is the host of the feed URL, not of the article.
func sourceName(feedURL string) (string, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("feed url %q has no host", feedURL)
	}
	return u.Hostname(), nil
}
