// Package site is the demo route table served by pagemeta. It turns request
// paths into matched loader trees whose segments contribute metadata.
package site

import (
	"context"
	"net/url"
	"strings"

	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/metadata/resolve"
	"github.com/conduit-lang/pagemeta/internal/store"
)

// PostGetter loads posts by slug
type PostGetter interface {
	Get(ctx context.Context, slug string) (*store.Post, error)
}

// Options configures the site's root metadata
type Options struct {
	Name    string
	BaseURL *url.URL
}

// Site holds the route table
type Site struct {
	posts  PostGetter
	opts   Options
	routes []route
}

// Match is a matched request path
type Match struct {
	// Route is the route pattern, such as /posts/[slug]
	Route string
	Tree  *resolve.Tree
	// Params are the values bound to dynamic segments
	Params map[string]string
	// ErrorType is set when no route matched and the not-found render is
	// requested directly
	ErrorType metadata.ErrorType
}

type route struct {
	pattern  string
	segments []string
	build    func(s *Site) *resolve.Tree
}

// New creates the demo site
func New(posts PostGetter, opts Options) *Site {
	if opts.Name == "" {
		opts.Name = "pagemeta"
	}
	s := &Site{posts: posts, opts: opts}
	s.routes = []route{
		{pattern: "/", build: (*Site).homeTree},
		{pattern: "/search", segments: []string{"search"}, build: (*Site).searchTree},
		{pattern: "/moved", segments: []string{"moved"}, build: (*Site).movedTree},
		{pattern: "/posts/[slug]", segments: []string{"posts", "[slug]"}, build: (*Site).postTree},
	}
	return s
}

// Match finds the route for path. Unmatched paths get the root tree with the
// not-found error type.
func (s *Site) Match(path string) *Match {
	parts := splitPath(path)
	for _, r := range s.routes {
		params, ok := bind(r.segments, parts)
		if !ok {
			continue
		}
		return &Match{Route: r.pattern, Tree: r.build(s), Params: params}
	}
	return &Match{
		Route:     "/_not-found",
		Tree:      s.root(nil),
		Params:    map[string]string{},
		ErrorType: metadata.ErrorTypeNotFound,
	}
}

// GetDynamicParam returns the param accessor for the match's bound values
func (m *Match) GetDynamicParam() resolve.GetDynamicParamFunc {
	return func(segment string) *resolve.DynamicParam {
		name, typ, ok := resolve.ParseSegment(segment)
		if !ok {
			return nil
		}
		value, bound := m.Params[name]
		if !bound {
			return nil
		}
		return &resolve.DynamicParam{Name: name, Value: value, Type: typ}
	}
}

// DynamicParamNames lists the param names of the matched route
func (m *Match) DynamicParamNames() []string {
	names := make([]string, 0, len(m.Params))
	for name := range m.Params {
		names = append(names, name)
	}
	return names
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func bind(segments, parts []string) (map[string]string, bool) {
	if len(segments) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range segments {
		if name, _, ok := resolve.ParseSegment(seg); ok {
			value, err := url.PathUnescape(parts[i])
			if err != nil || value == "" {
				return nil, false
			}
			params[name] = value
			continue
		}
		if seg != parts[i] {
			return nil, false
		}
	}
	return params, true
}
