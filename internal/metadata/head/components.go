package head

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync/atomic"

	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/metadata/elements"
	"github.com/conduit-lang/pagemeta/internal/metadata/readiness"
)

// ErrOutletBeforeHead is returned when the outlet is read before the head
// of the same render published its readiness state
var ErrOutletBeforeHead = errors.New("metadata outlet invoked before the head rendered: render the head first")

// PanicError wraps a panic raised while resolving metadata
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic during metadata resolution: %v", e.Value)
}

// Config configures a Head and Outlet pair
type Config struct {
	Request
	AppliesSizeAdjustment bool
}

// cell is the slot the head publishes its readiness state into
type cell struct {
	state atomic.Pointer[readiness.State]
}

// Head renders the metadata elements of a document
type Head struct {
	orch   *Orchestrator
	config Config
	cell   *cell
}

// Outlet surfaces the head's resolution error to an error boundary
type Outlet struct {
	cell *cell
}

// NewComponents returns a Head and Outlet wired to one shared cell. Build a
// new pair for every request.
func NewComponents(orch *Orchestrator, config Config) (*Head, *Outlet) {
	c := &cell{}
	return &Head{orch: orch, config: config, cell: c}, &Outlet{cell: c}
}

// Render resolves metadata and returns the keyed head elements. It never
// fails: a resolution error is kept in the readiness state for the outlet.
// Each call publishes a fresh state. Resolution keeps running if ctx is
// cancelled; Render itself returns nil in that case.
func (h *Head) Render(ctx context.Context) []metadata.KeyedElement {
	state := readiness.New()
	h.cell.state.Store(state)

	outcome := make(chan Outcome, 1)
	resolveCtx := context.WithoutCancel(ctx)
	go func() {
		out := h.resolve(resolveCtx)
		state.Reject(out.Err)
		outcome <- out
	}()

	var out Outcome
	select {
	case out = <-outcome:
	case <-ctx.Done():
		return nil
	}

	els := out.Elements
	if h.config.AppliesSizeAdjustment {
		els = append(els[:len(els):len(els)], elements.SizeAdjustMeta())
	}
	return metadata.KeyElements(els)
}

func (h *Head) resolve(ctx context.Context) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()
	return h.orch.Resolve(ctx, h.config.Request)
}

// Wait blocks until the head's resolution settles and returns its error.
// Calling it before Head.Render fails immediately with ErrOutletBeforeHead.
func (o *Outlet) Wait(ctx context.Context) error {
	state := o.cell.state.Load()
	if state == nil {
		return ErrOutletBeforeHead
	}
	return state.Wait(ctx)
}

// State returns the published readiness state, or nil before the head
// rendered
func (o *Outlet) State() *readiness.State {
	return o.cell.state.Load()
}
