// Package head coordinates metadata resolution for one document render. The
// Orchestrator runs the resolver (with at most one not-found fallback pass);
// the Head and Outlet pair share the resulting readiness state so that the
// head renders whatever elements were produced while resolution errors are
// surfaced through an error boundary elsewhere in the document.
package head

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/metadata/elements"
	"github.com/conduit-lang/pagemeta/internal/metadata/resolve"
	"github.com/conduit-lang/pagemeta/internal/metadata/tracking"
	"github.com/conduit-lang/pagemeta/internal/telemetry"
)

// AssembleFunc turns a resolved pass into head elements
type AssembleFunc func(*metadata.ResolvedMetadata, *metadata.ResolvedViewport) []*metadata.Element

// TrackSearchParamsFunc wraps the query in a tracked view
type TrackSearchParamsFunc func(query url.Values) *tracking.SearchParamsView

// Request is everything one resolution needs
type Request struct {
	Route             string
	Tree              *resolve.Tree
	Query             url.Values
	GetDynamicParam   resolve.GetDynamicParamFunc
	Context           metadata.Context
	TrackSearchParams TrackSearchParamsFunc
	TrackParams       resolve.TrackParamsFunc
	ErrorType         metadata.ErrorType
}

// Outcome is the result of a resolution: an error, the elements to render,
// or both when a not-found fallback pass produced elements
type Outcome struct {
	Err      error
	Elements []*metadata.Element
}

// OrchestratorConfig holds configuration for the orchestrator
type OrchestratorConfig struct {
	// Resolver walks the tree. Required.
	Resolver resolve.Resolver
	// Assemble builds elements from a pass
	Assemble AssembleFunc
	// IsNotFound classifies errors that trigger the fallback pass
	IsNotFound func(error) bool
	// Logger receives per-pass debug logs
	Logger *zap.Logger
	// Metrics records pass counts and durations (optional)
	Metrics *telemetry.ResolutionMetrics
	// Tracer starts a span per pass (optional)
	Tracer trace.Tracer
}

// DefaultOrchestratorConfig returns the default orchestrator configuration
func DefaultOrchestratorConfig(resolver resolve.Resolver) OrchestratorConfig {
	return OrchestratorConfig{
		Resolver:   resolver,
		Assemble:   elements.Assemble,
		IsNotFound: metadata.IsNotFound,
		Logger:     zap.NewNop(),
	}
}

// Orchestrator runs resolution passes and merges their outcomes
type Orchestrator struct {
	resolver   resolve.Resolver
	assemble   AssembleFunc
	isNotFound func(error) bool
	logger     *zap.Logger
	metrics    *telemetry.ResolutionMetrics
	tracer     trace.Tracer
}

// NewOrchestrator creates an orchestrator. Unset optional fields fall back
// to the defaults.
func NewOrchestrator(config OrchestratorConfig) (*Orchestrator, error) {
	if config.Resolver == nil {
		return nil, errors.New("orchestrator: resolver cannot be nil")
	}
	defaults := DefaultOrchestratorConfig(config.Resolver)
	if config.Assemble == nil {
		config.Assemble = defaults.Assemble
	}
	if config.IsNotFound == nil {
		config.IsNotFound = defaults.IsNotFound
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}

	return &Orchestrator{
		resolver:   config.Resolver,
		assemble:   config.Assemble,
		isNotFound: config.IsNotFound,
		logger:     config.Logger,
		metrics:    config.Metrics,
		tracer:     config.Tracer,
	}, nil
}

// Resolve runs the first pass and, when it fails with a not-found error and
// no error type was requested, exactly one fallback pass with the not-found
// convention. The fallback's elements are always used; its error wins over
// the original one.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) Outcome {
	searchParams := req.trackedSearchParams()

	first := o.pass(ctx, req, searchParams, req.ErrorType.Convention())
	if first.Err == nil {
		return Outcome{Elements: o.assemble(first.Metadata, first.Viewport)}
	}

	if req.ErrorType == metadata.ErrorTypeNone && o.isNotFound(first.Err) {
		o.metrics.RecordFallback(ctx)
		o.logger.Debug("metadata not found, resolving not-found fallback",
			zap.String("route", req.Route),
			zap.Error(first.Err))

		fallback := o.pass(ctx, req, searchParams, metadata.ConventionNotFound)
		err := fallback.Err
		if err == nil {
			err = first.Err
		}
		return Outcome{Err: err, Elements: o.assemble(fallback.Metadata, fallback.Viewport)}
	}

	return Outcome{Err: first.Err, Elements: []*metadata.Element{}}
}

func (o *Orchestrator) pass(
	ctx context.Context,
	req Request,
	searchParams *tracking.SearchParamsView,
	convention metadata.ErrorConvention,
) resolve.Result {
	ctx, span := telemetry.StartSpan(ctx, o.tracer, "metadata.resolve",
		trace.WithAttributes(
			telemetry.AttrRoute.String(req.Route),
			telemetry.AttrConvention.String(string(convention)),
			telemetry.AttrErrorType.String(string(req.ErrorType)),
		))
	defer span.End()

	start := time.Now()
	res := o.resolver.Resolve(ctx, resolve.Params{
		Tree:            req.Tree,
		ParentParams:    map[string]string{},
		MetadataItems:   []metadata.Item{},
		ErrorItem:       metadata.ErrorMetadataItem,
		SearchParams:    searchParams,
		GetDynamicParam: req.GetDynamicParam,
		ErrorConvention: convention,
		Context:         req.Context,
		TrackParams:     req.TrackParams,
	})
	duration := time.Since(start)

	telemetry.RecordError(span, res.Err)
	o.metrics.RecordPass(ctx, string(convention), duration, res.Err)
	o.logger.Debug("metadata resolution pass",
		zap.String("route", req.Route),
		zap.String("convention", string(convention)),
		zap.Duration("duration", duration),
		zap.Error(res.Err))

	return res
}

func (r Request) trackedSearchParams() *tracking.SearchParamsView {
	if r.TrackSearchParams != nil {
		return r.TrackSearchParams(r.Query)
	}
	return tracking.SearchParams(r.Query, nil)
}
