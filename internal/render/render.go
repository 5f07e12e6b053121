// Package render renders documents: the metadata head first, then the error
// boundary that surfaces the head's deferred resolution error.
package render

import (
	"context"
	"errors"
	"net/url"

	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/logging"
	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/metadata/head"
	"github.com/conduit-lang/pagemeta/internal/metadata/readiness"
	"github.com/conduit-lang/pagemeta/internal/metadata/tracking"
	"github.com/conduit-lang/pagemeta/internal/site"
)

// Boundary statuses
const (
	StatusOK           = "ok"
	StatusNotFound     = "not-found"
	StatusRedirect     = "redirect"
	StatusDynamicUsage = "dynamic-usage"
	StatusError        = "error"
)

// Frame kinds
const (
	FrameHead     = "head"
	FrameBoundary = "boundary"
)

// Frame is one streamed part of a document
type Frame struct {
	Kind     string                  `json:"kind"`
	Route    string                  `json:"route,omitempty"`
	Elements []metadata.KeyedElement `json:"elements,omitempty"`
	Status   string                  `json:"status,omitempty"`
	Location string                  `json:"location,omitempty"`
	Error    string                  `json:"error,omitempty"`
	Dynamic  []tracking.Access       `json:"dynamic,omitempty"`
}

// Options configures rendering
type Options struct {
	// SizeAdjust appends the size-adjust meta to every head
	SizeAdjust bool
	// TrailingSlash keeps trailing slashes on resolved URLs
	TrailingSlash bool
	// Standalone marks standalone output builds
	Standalone bool
	// Static renders as static generation: a route's dynamic params are
	// treated as unknown and request-bound reads are refused
	Static bool
}

// Request is a document request
type Request struct {
	Path  string
	Query url.Values
}

// Document is a fully rendered document
type Document struct {
	Head     Frame
	Boundary Frame
}

// Renderer renders documents for the site's routes
type Renderer struct {
	site   *site.Site
	orch   *head.Orchestrator
	opts   Options
	logger *zap.Logger
}

// New creates a renderer
func New(s *site.Site, orch *head.Orchestrator, opts Options, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{site: s, orch: orch, opts: opts, logger: logger}
}

// Render renders req, passing each frame to emit as soon as it is ready. The
// head is always rendered, and emitted, before the boundary waits.
func (r *Renderer) Render(ctx context.Context, req Request, emit func(Frame) error) (*Document, error) {
	match := r.site.Match(req.Path)
	logger := logging.FromContextOr(ctx, r.logger).With(zap.String("route", match.Route))

	var fallbackParams []string
	if r.opts.Static {
		fallbackParams = match.DynamicParamNames()
	}
	work := tracking.NewWorkStore(match.Route, r.opts.Static, fallbackParams...)

	h, outlet := head.NewComponents(r.orch, head.Config{
		Request: head.Request{
			Route:           match.Route,
			Tree:            match.Tree,
			Query:           req.Query,
			GetDynamicParam: match.GetDynamicParam(),
			Context: metadata.NewContext(metadata.ContextOptions{
				Pathname:         req.Path,
				TrailingSlash:    r.opts.TrailingSlash,
				IsStandaloneMode: r.opts.Standalone,
				Tracker:          work,
			}),
			TrackSearchParams: func(q url.Values) *tracking.SearchParamsView {
				return tracking.SearchParams(q, work)
			},
			TrackParams: func(p map[string]string) *tracking.ParamsView {
				return tracking.Params(p, work)
			},
			ErrorType: match.ErrorType,
		},
		AppliesSizeAdjustment: r.opts.SizeAdjust,
	})

	doc := &Document{}
	doc.Head = Frame{Kind: FrameHead, Route: match.Route, Elements: h.Render(ctx)}
	if match.ErrorType == metadata.ErrorTypeNotFound {
		doc.Head.Status = StatusNotFound
	}
	if err := ctx.Err(); err != nil {
		r.watchUnobserved(outlet.State(), logger)
		return nil, err
	}
	if err := emit(doc.Head); err != nil {
		r.watchUnobserved(outlet.State(), logger)
		return nil, err
	}

	err := outlet.Wait(ctx)
	r.watchUnobserved(outlet.State(), logger)
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return nil, ctxErr
	}
	doc.Boundary = boundary(err)
	doc.Boundary.Dynamic = work.Accesses()
	if err := emit(doc.Boundary); err != nil {
		return nil, err
	}
	return doc, nil
}

// Document renders req without streaming
func (r *Renderer) Document(ctx context.Context, req Request) (*Document, error) {
	return r.Render(ctx, req, func(Frame) error { return nil })
}

func boundary(err error) Frame {
	f := Frame{Kind: FrameBoundary, Status: StatusOK}
	var redirect *metadata.RedirectError
	switch {
	case err == nil:
	case metadata.IsNotFound(err):
		f.Status = StatusNotFound
	case errors.As(err, &redirect):
		f.Status = StatusRedirect
		f.Location = redirect.URL
	case metadata.IsDynamicUsage(err):
		f.Status = StatusDynamicUsage
		f.Error = err.Error()
	default:
		f.Status = StatusError
		f.Error = err.Error()
	}
	return f
}

// watchUnobserved logs a rejection once the state settles if no boundary
// ever received it
func (r *Renderer) watchUnobserved(state *readiness.State, logger *zap.Logger) {
	if state == nil {
		return
	}
	go func() {
		<-state.Done()
		if state.Status() == readiness.Rejected && !state.Observed() {
			logger.Warn("metadata resolution error was not observed by any boundary", zap.Error(state.Err()))
		}
	}()
}
