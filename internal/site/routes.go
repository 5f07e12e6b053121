package site

import (
	"context"
	"fmt"

	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/metadata/resolve"
	"github.com/conduit-lang/pagemeta/internal/store"
)

// root is the root segment: the layout every route shares plus the site-wide
// not-found module. page is the root page when the route is "/".
func (s *Site) root(page *resolve.Module, children ...*resolve.Tree) *resolve.Tree {
	t := &resolve.Tree{
		Segment: "",
		Modules: resolve.Modules{
			Layout:   s.rootLayout(),
			Page:     page,
			NotFound: notFoundModule(),
		},
	}
	if len(children) > 0 {
		t.Children = map[string]*resolve.Tree{resolve.ChildrenKey: children[0]}
	}
	return t
}

func (s *Site) rootLayout() *resolve.Module {
	return &resolve.Module{
		Metadata: &metadata.Metadata{
			MetadataBase:    s.opts.BaseURL,
			Title:           &metadata.Title{Default: s.opts.Name, Template: "%s | " + s.opts.Name},
			Description:     "Notes and posts published with " + s.opts.Name,
			ApplicationName: s.opts.Name,
			Generator:       "pagemeta",
			Referrer:        "origin-when-cross-origin",
			OpenGraph: &metadata.OpenGraph{
				SiteName: s.opts.Name,
				Type:     "website",
				Locale:   "en_US",
			},
			Icons: &metadata.Icons{
				Icon:  []metadata.Icon{{URL: "/favicon.ico"}, {URL: "/icon.png", Type: "image/png", Sizes: "32x32"}},
				Apple: []metadata.Icon{{URL: "/apple-icon.png", Sizes: "180x180"}},
			},
			FormatDetection: &metadata.FormatDetection{Telephone: metadata.Bool(false)},
		},
		Viewport: &metadata.Viewport{
			ThemeColor: []metadata.ThemeColor{
				{Color: "#ffffff", Media: "(prefers-color-scheme: light)"},
				{Color: "#111111", Media: "(prefers-color-scheme: dark)"},
			},
			ColorScheme: "light dark",
		},
	}
}

func notFoundModule() *resolve.Module {
	return &resolve.Module{
		Metadata: &metadata.Metadata{
			Title:       metadata.TitleString("Not Found"),
			Description: "The page you are looking for does not exist.",
			Robots:      &metadata.Robots{Index: metadata.Bool(false), Follow: metadata.Bool(true)},
		},
	}
}

func (s *Site) homeTree() *resolve.Tree {
	return s.root(&resolve.Module{
		Metadata: &metadata.Metadata{
			Alternates: &metadata.Alternates{Canonical: "/"},
			OpenGraph: &metadata.OpenGraph{
				Type:     "website",
				SiteName: s.opts.Name,
				Title:    s.opts.Name,
				URL:      "/",
			},
		},
	})
}

func (s *Site) searchTree() *resolve.Tree {
	return s.root(nil, &resolve.Tree{
		Segment: "search",
		Modules: resolve.Modules{
			Page: &resolve.Module{
				GenerateMetadata: func(ctx context.Context, props resolve.Props) (*metadata.Metadata, error) {
					q, err := props.SearchParams.Get("q")
					if err != nil {
						return nil, err
					}
					title := "Search"
					if q != "" {
						title = fmt.Sprintf("Search: %s", q)
					}
					return &metadata.Metadata{
						Title:  metadata.TitleString(title),
						Robots: &metadata.Robots{Index: metadata.Bool(false)},
					}, nil
				},
			},
		},
	})
}

// movedTree is a page whose metadata function redirects
func (s *Site) movedTree() *resolve.Tree {
	return s.root(nil, &resolve.Tree{
		Segment: "moved",
		Modules: resolve.Modules{
			Page: &resolve.Module{
				GenerateMetadata: func(ctx context.Context, props resolve.Props) (*metadata.Metadata, error) {
					return nil, metadata.Redirect("/")
				},
			},
		},
	})
}

func (s *Site) postTree() *resolve.Tree {
	return s.root(nil, &resolve.Tree{
		Segment: "posts",
		Modules: resolve.Modules{
			Layout: &resolve.Module{
				Metadata: &metadata.Metadata{
					Category:  "blog",
					OpenGraph: &metadata.OpenGraph{Type: "article"},
				},
			},
		},
		Children: map[string]*resolve.Tree{
			resolve.ChildrenKey: {
				Segment: "[slug]",
				Modules: resolve.Modules{
					Page: &resolve.Module{GenerateMetadata: s.postMetadata},
				},
			},
		},
	})
}

func (s *Site) postMetadata(ctx context.Context, props resolve.Props) (*metadata.Metadata, error) {
	slug, err := props.Params.Get("slug")
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Get(ctx, slug)
	if store.IsNotFound(err) {
		return nil, metadata.NotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("load post %q: %w", slug, err)
	}

	md := &metadata.Metadata{
		Title:       metadata.TitleString(post.Title),
		Description: post.Description,
		Keywords:    post.Keywords,
		Authors:     []metadata.Author{{Name: post.Author}},
		Alternates:  &metadata.Alternates{Canonical: "./"},
		OpenGraph: &metadata.OpenGraph{
			Type:        "article",
			SiteName:    s.opts.Name,
			Title:       post.Title,
			Description: post.Description,
			URL:         "./",
		},
	}
	if post.Image != "" {
		md.OpenGraph.Images = []metadata.OGImage{{URL: post.Image, Alt: post.Title}}
	}
	return md, nil
}
