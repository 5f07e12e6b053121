package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/conduit-lang/pagemeta/internal/cache"
)

// Posts is a read-through post lookup. With a nil source the cache is the
// system of record and must be seeded with Put.
type Posts struct {
	cache  cache.Cache
	source Source
	ttl    time.Duration
	logger *zap.Logger
	group  singleflight.Group
}

// NewPosts creates a post lookup. ttl is passed to the cache on fill.
func NewPosts(c cache.Cache, source Source, ttl time.Duration, logger *zap.Logger) *Posts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Posts{cache: c, source: source, ttl: ttl, logger: logger}
}

func cacheKey(slug string) string {
	return "post:" + slug
}

// Get returns the post with slug or ErrPostNotFound. Concurrent misses for
// the same slug share one source load.
func (p *Posts) Get(ctx context.Context, slug string) (*Post, error) {
	post, err := p.fromCache(ctx, slug)
	if err == nil {
		return post, nil
	}
	if !cache.IsCacheMiss(err) {
		p.logger.Warn("post cache read failed", zap.String("slug", slug), zap.Error(err))
	}
	if p.source == nil {
		return nil, ErrPostNotFound
	}

	v, err, shared := p.group.Do(slug, func() (interface{}, error) {
		post, err := p.source.LoadPost(ctx, slug)
		if err != nil {
			return nil, err
		}
		p.fill(ctx, post, p.ttl)
		return post, nil
	})
	if err != nil {
		return nil, err
	}
	p.logger.Debug("post loaded", zap.String("slug", slug), zap.Bool("shared", shared))

	copied := *v.(*Post)
	return &copied, nil
}

// Put stores post in the source when it supports writes, then in the cache.
// Cache-only posts never expire.
func (p *Posts) Put(ctx context.Context, post *Post) error {
	ttl := p.ttl
	if p.source == nil {
		ttl = -1
	}
	if w, ok := p.source.(interface {
		SavePost(context.Context, *Post) error
	}); ok {
		if err := w.SavePost(ctx, post); err != nil {
			return err
		}
	}

	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("encode post %q: %w", post.Slug, err)
	}
	return p.cache.Set(ctx, cacheKey(post.Slug), data, ttl)
}

func (p *Posts) fromCache(ctx context.Context, slug string) (*Post, error) {
	data, err := p.cache.Get(ctx, cacheKey(slug))
	if err != nil {
		return nil, err
	}
	var post Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("decode cached post %q: %w", slug, err)
	}
	return &post, nil
}

func (p *Posts) fill(ctx context.Context, post *Post, ttl time.Duration) {
	data, err := json.Marshal(post)
	if err == nil {
		err = p.cache.Set(ctx, cacheKey(post.Slug), data, ttl)
	}
	if err != nil {
		p.logger.Warn("post cache fill failed", zap.String("slug", post.Slug), zap.Error(err))
	}
}

// IsNotFound reports whether err means the post does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPostNotFound)
}
