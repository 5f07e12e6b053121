// Package store holds the posts that back the demo site's generated
// metadata.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQL drivers for the sqlite and postgres backends
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Post is a piece of content with the fields its page metadata is built from
type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Image       string    `json:"image,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// ErrPostNotFound is returned when no post has the requested slug
var ErrPostNotFound = errors.New("post not found")

// Source loads posts from durable storage
type Source interface {
	LoadPost(ctx context.Context, slug string) (*Post, error)
}

// SQLStore keeps posts in a single table
type SQLStore struct {
	db        *sql.DB
	tableName string
}

// driverNames maps store backends to database/sql driver names
var driverNames = map[string]string{
	"sqlite":   "sqlite3",
	"postgres": "postgres",
}

// OpenSQL opens and pings a database for the given backend
func OpenSQL(ctx context.Context, backend, dsn string) (*sql.DB, error) {
	driver, ok := driverNames[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported sql backend: %s", backend)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", backend, err)
	}
	return db, nil
}

// NewSQLStore wraps db. Call Migrate before first use on a fresh database.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, tableName: "posts"}
}

// Migrate creates the posts table if it does not exist
func (s *SQLStore) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			slug VARCHAR(255) PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			author VARCHAR(255) NOT NULL,
			image TEXT NOT NULL,
			keywords TEXT NOT NULL,
			published_at TIMESTAMP NOT NULL
		)
	`, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s table: %w", s.tableName, err)
	}
	return nil
}

// LoadPost returns the post with slug or ErrPostNotFound
func (s *SQLStore) LoadPost(ctx context.Context, slug string) (*Post, error) {
	query := fmt.Sprintf(`
		SELECT slug, title, description, author, image, keywords, published_at
		FROM %s
		WHERE slug = $1
	`, s.tableName)

	var post Post
	var keywords string
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&post.Slug,
		&post.Title,
		&post.Description,
		&post.Author,
		&post.Image,
		&keywords,
		&post.PublishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query error: %w", err)
	}

	if keywords != "" {
		post.Keywords = strings.Split(keywords, ",")
	}
	return &post, nil
}

// SavePost inserts or replaces a post
func (s *SQLStore) SavePost(ctx context.Context, post *Post) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (slug, title, description, author, image, keywords, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (slug) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			author = excluded.author,
			image = excluded.image,
			keywords = excluded.keywords,
			published_at = excluded.published_at
	`, s.tableName)

	_, err := s.db.ExecContext(ctx, query,
		post.Slug,
		post.Title,
		post.Description,
		post.Author,
		post.Image,
		strings.Join(post.Keywords, ","),
		post.PublishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save post %q: %w", post.Slug, err)
	}
	return nil
}
