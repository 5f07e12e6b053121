package resolve

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/metadata/tracking"
)

func postTree(page *Module) *Tree {
	return &Tree{
		Segment: "",
		Modules: Modules{
			Layout: &Module{Metadata: &metadata.Metadata{
				Title:       &metadata.Title{Default: "Site", Template: "%s | Site"},
				Description: "root",
			}},
			NotFound: &Module{Metadata: &metadata.Metadata{
				Title: &metadata.Title{Default: "Not Found"},
			}},
		},
		Children: map[string]*Tree{
			ChildrenKey: {
				Segment: "posts",
				Children: map[string]*Tree{
					ChildrenKey: {
						Segment: "[slug]",
						Modules: Modules{Page: page},
					},
				},
			},
		},
	}
}

func slugParam(value string) GetDynamicParamFunc {
	return func(segment string) *DynamicParam {
		name, typ, ok := ParseSegment(segment)
		if !ok {
			return nil
		}
		return &DynamicParam{Name: name, Value: value, Type: typ}
	}
}

func TestTreeResolver_Resolve(t *testing.T) {
	var seenSlug string
	page := &Module{GenerateMetadata: func(ctx context.Context, props Props) (*metadata.Metadata, error) {
		slug, err := props.Params.Get("slug")
		if err != nil {
			return nil, err
		}
		seenSlug = slug
		return &metadata.Metadata{Title: metadata.TitleString("Hello " + slug)}, nil
	}}

	r := NewTreeResolver(nil)
	res := r.Resolve(context.Background(), Params{
		Tree:            postTree(page),
		GetDynamicParam: slugParam("world"),
	})

	require.NoError(t, res.Err)
	assert.Equal(t, "world", seenSlug)
	assert.Equal(t, "Hello world | Site", res.Metadata.ResolvedTitle)
	assert.Equal(t, "root", res.Metadata.Description)
	assert.Equal(t, "device-width", res.Viewport.Width)
}

func TestTreeResolver_ErrorReturnsDefaults(t *testing.T) {
	page := &Module{GenerateMetadata: func(ctx context.Context, props Props) (*metadata.Metadata, error) {
		return nil, metadata.NotFound()
	}}

	res := NewTreeResolver(nil).Resolve(context.Background(), Params{Tree: postTree(page), GetDynamicParam: slugParam("missing")})

	require.Error(t, res.Err)
	assert.True(t, metadata.IsNotFound(res.Err))
	assert.Contains(t, res.Err.Error(), `segment "[slug]"`)
	require.NotNil(t, res.Metadata)
	require.NotNil(t, res.Viewport)
	assert.Empty(t, res.Metadata.ResolvedTitle)
}

func TestTreeResolver_NotFoundConventionSkipsPage(t *testing.T) {
	pageCalls := 0
	page := &Module{GenerateMetadata: func(ctx context.Context, props Props) (*metadata.Metadata, error) {
		pageCalls++
		return nil, metadata.NotFound()
	}}

	res := NewTreeResolver(nil).Resolve(context.Background(), Params{
		Tree:            postTree(page),
		GetDynamicParam: slugParam("missing"),
		ErrorItem:       metadata.ErrorMetadataItem,
		ErrorConvention: metadata.ConventionNotFound,
	})

	require.NoError(t, res.Err)
	assert.Equal(t, 0, pageCalls)
	assert.Equal(t, "Not Found | Site", res.Metadata.ResolvedTitle)
}

func TestTreeResolver_NotFoundConventionWithoutModuleUsesSentinel(t *testing.T) {
	tree := &Tree{Modules: Modules{Layout: &Module{Metadata: &metadata.Metadata{Title: metadata.TitleString("Root")}}}}

	res := NewTreeResolver(nil).Resolve(context.Background(), Params{
		Tree:            tree,
		ErrorItem:       metadata.ErrorMetadataItem,
		ErrorConvention: metadata.ConventionNotFound,
	})

	require.NoError(t, res.Err)
	assert.Equal(t, "Root", res.Metadata.ResolvedTitle)
}

func TestTreeResolver_LayoutErrorInFallbackPass(t *testing.T) {
	boom := errors.New("layout exploded")
	tree := &Tree{Modules: Modules{
		Layout: &Module{GenerateMetadata: func(ctx context.Context, props Props) (*metadata.Metadata, error) {
			return nil, boom
		}},
		NotFound: &Module{Metadata: &metadata.Metadata{Title: metadata.TitleString("Not Found")}},
	}}

	res := NewTreeResolver(nil).Resolve(context.Background(), Params{Tree: tree, ErrorConvention: metadata.ConventionNotFound})
	assert.ErrorIs(t, res.Err, boom)
}

func TestTreeResolver_ViewportFunc(t *testing.T) {
	tree := &Tree{Modules: Modules{Layout: &Module{
		GenerateViewport: func(ctx context.Context, props Props) (*metadata.Viewport, error) {
			return &metadata.Viewport{ThemeColor: []metadata.ThemeColor{{Color: "#000"}}}, nil
		},
	}}}

	res := NewTreeResolver(nil).Resolve(context.Background(), Params{Tree: tree})
	require.NoError(t, res.Err)
	assert.Equal(t, []metadata.ThemeColor{{Color: "#000"}}, res.Viewport.ThemeColor)
}

func TestTreeResolver_TrackedSearchParams(t *testing.T) {
	store := tracking.NewWorkStore("/search", true)
	tree := &Tree{Modules: Modules{Page: &Module{
		GenerateMetadata: func(ctx context.Context, props Props) (*metadata.Metadata, error) {
			q, err := props.SearchParams.Get("q")
			if err != nil {
				return nil, err
			}
			return &metadata.Metadata{Title: metadata.TitleString(q)}, nil
		},
	}}}

	res := NewTreeResolver(nil).Resolve(context.Background(), Params{
		Tree:         tree,
		SearchParams: tracking.SearchParams(url.Values{"q": {"go"}}, store),
	})

	assert.True(t, metadata.IsDynamicUsage(res.Err))
	assert.True(t, store.Dynamic())
}

func TestTreeResolver_NilTree(t *testing.T) {
	res := NewTreeResolver(nil).Resolve(context.Background(), Params{})
	assert.Error(t, res.Err)
	assert.NotNil(t, res.Metadata)
}

func TestTreeResolver_ParallelRoutesWalkChildrenFirst(t *testing.T) {
	tree := &Tree{
		Children: map[string]*Tree{
			"modal":     {Modules: Modules{Page: &Module{Metadata: &metadata.Metadata{Description: "modal"}}}},
			ChildrenKey: {Modules: Modules{Page: &Module{Metadata: &metadata.Metadata{Description: "main"}}}},
		},
	}

	res := NewTreeResolver(nil).Resolve(context.Background(), Params{Tree: tree})
	require.NoError(t, res.Err)
	assert.Equal(t, "modal", res.Metadata.Description)
}

func TestParseSegment(t *testing.T) {
	tests := []struct {
		segment string
		name    string
		typ     ParamType
		ok      bool
	}{
		{"posts", "", "", false},
		{"[slug]", "slug", ParamDynamic, true},
		{"[...path]", "path", ParamCatchAll, true},
		{"[[...path]]", "path", ParamOptionalCatchAll, true},
	}

	for _, tt := range tests {
		t.Run(tt.segment, func(t *testing.T) {
			name, typ, ok := ParseSegment(tt.segment)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.typ, typ)
		})
	}
}
