// Package resolve walks a matched route tree, collects the metadata and
// viewport each segment contributes and merges them into one resolved value.
package resolve

import (
	"context"
	"sort"
	"strings"

	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/metadata/tracking"
)

// ChildrenKey is the parallel route key of the main child slot
const ChildrenKey = "children"

// Props is what metadata and viewport functions receive
type Props struct {
	Params       *tracking.ParamsView
	SearchParams *tracking.SearchParamsView
}

// MetadataFunc generates a segment's metadata at request time
type MetadataFunc func(ctx context.Context, props Props) (*metadata.Metadata, error)

// ViewportFunc generates a segment's viewport at request time
type ViewportFunc func(ctx context.Context, props Props) (*metadata.Viewport, error)

// Module is a layout, page or not-found module of a segment. Static values
// win over generate functions when both are set.
type Module struct {
	Metadata         *metadata.Metadata
	GenerateMetadata MetadataFunc
	Viewport         *metadata.Viewport
	GenerateViewport ViewportFunc
}

// Modules are the modules a segment may define
type Modules struct {
	Layout   *Module
	Page     *Module
	NotFound *Module
}

// Tree is a matched loader tree
type Tree struct {
	Segment  string
	Children map[string]*Tree
	Modules  Modules
}

// childKeys returns the parallel route keys with the main slot first
func (t *Tree) childKeys() []string {
	keys := make([]string, 0, len(t.Children))
	for k := range t.Children {
		if k != ChildrenKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := t.Children[ChildrenKey]; ok {
		keys = append([]string{ChildrenKey}, keys...)
	}
	return keys
}

// ParamType describes how a dynamic segment binds its value
type ParamType string

const (
	// ParamDynamic is a [name] segment
	ParamDynamic ParamType = "dynamic"
	// ParamCatchAll is a [...name] segment
	ParamCatchAll ParamType = "catchall"
	// ParamOptionalCatchAll is a [[...name]] segment
	ParamOptionalCatchAll ParamType = "optional-catchall"
)

// DynamicParam is a bound dynamic segment
type DynamicParam struct {
	Name  string
	Value string
	Type  ParamType
}

// GetDynamicParamFunc returns the param a segment binds, or nil for static
// segments
type GetDynamicParamFunc func(segment string) *DynamicParam

// ParseSegment reports the param name and type of a dynamic segment
func ParseSegment(segment string) (string, ParamType, bool) {
	switch {
	case strings.HasPrefix(segment, "[[...") && strings.HasSuffix(segment, "]]"):
		return segment[5 : len(segment)-2], ParamOptionalCatchAll, true
	case strings.HasPrefix(segment, "[...") && strings.HasSuffix(segment, "]"):
		return segment[4 : len(segment)-1], ParamCatchAll, true
	case strings.HasPrefix(segment, "[") && strings.HasSuffix(segment, "]"):
		return segment[1 : len(segment)-1], ParamDynamic, true
	default:
		return "", "", false
	}
}
