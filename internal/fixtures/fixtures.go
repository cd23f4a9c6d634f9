// Package fixtures loads article seed files used to populate a fresh store.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"logiscan/internal/model"
	"logiscan/internal/storage"

	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of a seed file.
type File struct {
	Articles []model.Article `yaml:"articles"`
}

// Creator persists one article; storage.ErrDuplicate marks a known URL.
type Creator interface {
	Create(ctx context.Context, a *model.Article) error
}

// LoadFile reads and validates a YAML seed file.
func LoadFile(path string) ([]model.Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load decodes seed articles from r. Every article needs an original URL;
// a missing title becomes model.UntitledTitle.
func Load(r io.Reader) ([]model.Article, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return []model.Article{}, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	out := make([]model.Article, 0, len(file.Articles))
	for i, a := range file.Articles {
		a.OriginalURL = strings.TrimSpace(a.OriginalURL)
		if a.OriginalURL == "" {
			return nil, fmt.Errorf("seed article %d: original_url is required", i)
		}
		if strings.TrimSpace(a.Title) == "" {
			a.Title = model.UntitledTitle
		}
		if a.SummaryPoints == nil {
			a.SummaryPoints = []string{}
		}
		if a.Tags == nil {
			a.Tags = []string{}
		}
		if a.PublishedAt != nil {
			t := a.PublishedAt.UTC()
			a.PublishedAt = &t
		}
		out = append(out, a)
	}
	return out, nil
}

// Seed stores articles in order, skipping URLs that are already present.
func Seed(ctx context.Context, c Creator, articles []model.Article) (created, skipped int, err error) {
	for i := range articles {
		a := articles[i]
		if err := c.Create(ctx, &a); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				skipped++
				slog.Info("fixtures: article already exists", "url", a.OriginalURL)
				continue
			}
			return created, skipped, fmt.Errorf("seed %s: %w", a.OriginalURL, err)
		}
		created++
	}
	return created, skipped, nil
}
