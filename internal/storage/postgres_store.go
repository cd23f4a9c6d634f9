package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"logiscan/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate is returned by Create when an article with the same
// original URL is already stored.
var ErrDuplicate = errors.New("article already exists")

// Pool is the subset of pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// ArticleStore persists enriched articles in Postgres.
type ArticleStore struct {
	pool Pool
	now  func() time.Time
}

// NewArticleStore wraps an existing pool.
func NewArticleStore(pool Pool) *ArticleStore {
	return &ArticleStore{pool: pool, now: time.Now}
}

// Connect opens a pgx pool for dsn and verifies connectivity.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    original_url TEXT NOT NULL UNIQUE,
    source_name TEXT NOT NULL,
    published_at TIMESTAMPTZ,
    summary_points TEXT[] NOT NULL DEFAULT '{}',
    why_it_matters TEXT NOT NULL DEFAULT '',
    tags TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS articles_published_at_idx ON articles (published_at DESC NULLS LAST, created_at DESC);
`

// Ensure creates the articles table and its indexes if missing.
func (s *ArticleStore) Ensure(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Exists reports whether an article with originalURL is stored.
func (s *ArticleStore) Exists(ctx context.Context, originalURL string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM articles WHERE original_url = $1)`, originalURL).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new article. The unique constraint on original_url is the
// final arbiter: a conflicting insert writes nothing and returns ErrDuplicate.
// ID and CreatedAt are assigned here when empty.
func (s *ArticleStore) Create(ctx context.Context, a *model.Article) error {
	if a == nil {
		return errors.New("article is nil")
	}
	if strings.TrimSpace(a.OriginalURL) == "" {
		return errors.New("article original url is empty")
	}
	id := uuid.New()
	if a.ID != "" {
		parsed, err := uuid.Parse(a.ID)
		if err != nil {
			return fmt.Errorf("invalid article id %q: %w", a.ID, err)
		}
		id = parsed
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}
	points := a.SummaryPoints
	if points == nil {
		points = []string{}
	}
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO articles (id, title, original_url, source_name, published_at, summary_points, why_it_matters, tags, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (original_url) DO NOTHING`,
		id, a.Title, a.OriginalURL, a.SourceName, a.PublishedAt, points, a.WhyItMatters, tags, createdAt)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicate
	}
	a.ID = id.String()
	a.CreatedAt = createdAt
	a.SummaryPoints = points
	a.Tags = tags
	return nil
}

// Recent returns up to limit articles, newest publish date first. Articles
// without a publish date sort after dated ones.
func (s *ArticleStore) Recent(ctx context.Context, limit int) ([]model.Article, error) {
	if limit <= 0 {
		return []model.Article{}, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, title, original_url, source_name, published_at, summary_points, why_it_matters, tags, created_at
		FROM articles
		ORDER BY published_at DESC NULLS LAST, created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent articles: %w", err)
	}
	defer rows.Close()

	out := make([]model.Article, 0, limit)
	for rows.Next() {
		var a model.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.OriginalURL, &a.SourceName, &a.PublishedAt,
			&a.SummaryPoints, &a.WhyItMatters, &a.Tags, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return out, nil
}

// Ping checks database connectivity.
func (s *ArticleStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool.
func (s *ArticleStore) Close() {
	s.pool.Close()
}
