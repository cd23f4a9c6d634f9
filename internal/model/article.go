package model

import "time"

// UntitledTitle is stored when a feed item carries no title.
const UntitledTitle = "Untitled"

// Article is an enriched news item persisted by the ingestion pipeline.
// OriginalURL is unique across the store; rows are never updated.
type Article struct {
	ID            string     `json:"id" yaml:"id,omitempty"`
	Title         string     `json:"title" yaml:"title"`
	OriginalURL   string     `json:"originalUrl" yaml:"original_url"`
	SourceName    string     `json:"sourceName" yaml:"source_name"`
	PublishedAt   *time.Time `json:"publishedAt" yaml:"published_at,omitempty"`
	SummaryPoints []string   `json:"summaryPoints" yaml:"summary_points"`
	WhyItMatters  string     `json:"whyItMatters" yaml:"why_it_matters"`
	Tags          []string   `json:"tags" yaml:"tags"`
	CreatedAt     time.Time  `json:"createdAt" yaml:"-"`
}

// HasTag reports whether the article carries the exact tag.
func (a Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// FeedItem is a raw entry parsed from an RSS/Atom feed.
type FeedItem struct {
	Title       string
	Link        string
	Description string
	Summary     string
	PublishedAt *time.Time
}

// Content picks the text sent for analysis: description, then summary, then title.
func (it FeedItem) Content() string {
	switch {
	case it.Description != "":
		return it.Description
	case it.Summary != "":
		return it.Summary
	default:
		return it.Title
	}
}

// Analysis is the structured result returned by the enrichment model.
type Analysis struct {
	SummaryPoints []string `json:"summary_points"`
	WhyItMatters  string   `json:"why_it_matters"`
	Tags          []string `json:"tags"`
}
