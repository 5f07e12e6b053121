package site

import (
	"context"
	"fmt"
	"time"

	"github.com/conduit-lang/pagemeta/internal/store"
)

// DemoPosts are the posts the serve command seeds on startup
func DemoPosts() []*store.Post {
	return []*store.Post{
		{
			Slug:        "hello-world",
			Title:       "Hello World",
			Description: "Why every page deserves good metadata.",
			Author:      "Grace Hopper",
			Image:       "/images/hello-world.png",
			Keywords:    []string{"metadata", "intro"},
			PublishedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			Slug:        "streaming-heads",
			Title:       "Streaming Heads",
			Description: "Rendering the document head before the body is ready.",
			Author:      "Alan Kay",
			Keywords:    []string{"streaming", "rendering"},
			PublishedAt: time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC),
		},
	}
}

// PostPutter stores posts
type PostPutter interface {
	Put(ctx context.Context, post *store.Post) error
}

// Seed stores the demo posts
func Seed(ctx context.Context, posts PostPutter) error {
	for _, p := range DemoPosts() {
		if err := posts.Put(ctx, p); err != nil {
			return fmt.Errorf("seed post %q: %w", p.Slug, err)
		}
	}
	return nil
}
