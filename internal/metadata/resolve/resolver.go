package resolve

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/metadata/tracking"
)

// TrackParamsFunc wraps accumulated route params in a tracked view
type TrackParamsFunc func(params map[string]string) *tracking.ParamsView

// Params are the inputs of one resolution pass
type Params struct {
	Tree            *Tree
	ParentParams    map[string]string
	MetadataItems   []metadata.Item
	ErrorItem       metadata.Item
	SearchParams    *tracking.SearchParamsView
	GetDynamicParam GetDynamicParamFunc
	ErrorConvention metadata.ErrorConvention
	Context         metadata.Context
	TrackParams     TrackParamsFunc
}

// Result is the outcome of one resolution pass. Metadata and Viewport are
// always set; when Err is non-nil they hold the defaults.
type Result struct {
	Err      error
	Metadata *metadata.ResolvedMetadata
	Viewport *metadata.ResolvedViewport
}

// Resolver runs a resolution pass
type Resolver interface {
	Resolve(ctx context.Context, params Params) Result
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, params Params) Result

// Resolve calls f
func (f ResolverFunc) Resolve(ctx context.Context, params Params) Result {
	return f(ctx, params)
}

// TreeResolver is the default Resolver
type TreeResolver struct {
	logger *zap.Logger
}

// NewTreeResolver creates a tree resolver. A nil logger disables logging.
func NewTreeResolver(logger *zap.Logger) *TreeResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeResolver{logger: logger}
}

// Resolve walks params.Tree and merges what it collects
func (r *TreeResolver) Resolve(ctx context.Context, params Params) Result {
	if params.Tree == nil {
		return failed(fmt.Errorf("resolve metadata: nil tree"))
	}
	if params.TrackParams == nil {
		params.TrackParams = func(p map[string]string) *tracking.ParamsView { return tracking.Params(p, nil) }
	}
	if params.SearchParams == nil {
		params.SearchParams = tracking.SearchParams(nil, nil)
	}

	w := &walker{
		params:    params,
		items:     append([]metadata.Item(nil), params.MetadataItems...),
		errorItem: params.ErrorItem,
	}
	if err := w.walk(ctx, params.Tree, params.ParentParams); err != nil {
		return failed(err)
	}
	if params.ErrorConvention != metadata.ConventionNone {
		w.items = append(w.items, w.errorItem)
	}

	r.logger.Debug("collected metadata items",
		zap.Int("items", len(w.items)),
		zap.String("convention", string(params.ErrorConvention)))

	md, vp, err := Merge(w.items, params.Context)
	if err != nil {
		return failed(err)
	}
	return Result{Metadata: md, Viewport: vp}
}

func failed(err error) Result {
	return Result{
		Err:      err,
		Metadata: metadata.DefaultMetadata(),
		Viewport: metadata.DefaultViewport(),
	}
}

type walker struct {
	params    Params
	items     []metadata.Item
	errorItem metadata.Item
}

func (w *walker) walk(ctx context.Context, tree *Tree, parentParams map[string]string) error {
	segParams := make(map[string]string, len(parentParams)+1)
	for k, v := range parentParams {
		segParams[k] = v
	}
	if w.params.GetDynamicParam != nil {
		if dp := w.params.GetDynamicParam(tree.Segment); dp != nil {
			segParams[dp.Name] = dp.Value
		}
	}

	props := Props{
		Params:       w.params.TrackParams(segParams),
		SearchParams: w.params.SearchParams,
	}

	if tree.Modules.Layout != nil {
		item, err := collect(ctx, tree.Modules.Layout, props, tree.Segment)
		if err != nil {
			return err
		}
		w.items = append(w.items, item)
	}

	// The page of a not-found render is replaced by the nearest not-found
	// module, which is appended after the walk.
	if w.params.ErrorConvention == metadata.ConventionNotFound {
		if tree.Modules.NotFound != nil {
			item, err := collect(ctx, tree.Modules.NotFound, props, tree.Segment)
			if err != nil {
				return err
			}
			w.errorItem = item
		}
	} else if tree.Modules.Page != nil {
		item, err := collect(ctx, tree.Modules.Page, props, tree.Segment)
		if err != nil {
			return err
		}
		w.items = append(w.items, item)
	}

	for _, key := range tree.childKeys() {
		if err := w.walk(ctx, tree.Children[key], segParams); err != nil {
			return err
		}
	}
	return nil
}

func collect(ctx context.Context, mod *Module, props Props, segment string) (metadata.Item, error) {
	item := metadata.Item{Source: segment}

	switch {
	case mod.Metadata != nil:
		item.Metadata = mod.Metadata
	case mod.GenerateMetadata != nil:
		md, err := mod.GenerateMetadata(ctx, props)
		if err != nil {
			return item, fmt.Errorf("generate metadata for segment %q: %w", segment, err)
		}
		item.Metadata = md
	}

	switch {
	case mod.Viewport != nil:
		item.Viewport = mod.Viewport
	case mod.GenerateViewport != nil:
		vp, err := mod.GenerateViewport(ctx, props)
		if err != nil {
			return item, fmt.Errorf("generate viewport for segment %q: %w", segment, err)
		}
		item.Viewport = vp
	}

	return item, nil
}
