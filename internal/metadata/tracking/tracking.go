// Package tracking wraps request-bound values (pathname, search params, route
// params) so that reads made while a route is generated statically are
// recorded and refused.
package tracking

import (
	"net/url"
	"sort"
	"sync"

	"github.com/conduit-lang/pagemeta/internal/metadata"
)

// Access is a recorded read of a request-bound value
type Access struct {
	Kind       string `json:"kind"`
	Expression string `json:"expression"`
}

// WorkStore is the per-request record of how a route is being rendered
type WorkStore struct {
	Route              string
	IsStaticGeneration bool

	mu             sync.Mutex
	fallbackParams map[string]struct{}
	accesses       []Access
}

// NewWorkStore creates a work store. fallbackParams names the route params
// that are not known yet.
func NewWorkStore(route string, static bool, fallbackParams ...string) *WorkStore {
	fp := make(map[string]struct{}, len(fallbackParams))
	for _, p := range fallbackParams {
		fp[p] = struct{}{}
	}
	return &WorkStore{
		Route:              route,
		IsStaticGeneration: static,
		fallbackParams:     fp,
	}
}

// HasFallbackParams reports whether any route params are still unknown
func (s *WorkStore) HasFallbackParams() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fallbackParams) > 0
}

// IsFallbackParam reports whether name is an unknown route param
func (s *WorkStore) IsFallbackParam(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.fallbackParams[name]
	return ok
}

// Accesses returns a copy of the recorded accesses
func (s *WorkStore) Accesses() []Access {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Access, len(s.accesses))
	copy(out, s.accesses)
	return out
}

// Dynamic reports whether anything dynamic was read
func (s *WorkStore) Dynamic() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accesses) > 0
}

func (s *WorkStore) record(kind, expression string) error {
	s.mu.Lock()
	s.accesses = append(s.accesses, Access{Kind: kind, Expression: expression})
	s.mu.Unlock()
	return &metadata.DynamicUsageError{Route: s.Route, Expression: expression}
}

// TrackPathname implements metadata.AccessTracker. The pathname cannot be used
// to resolve relative URLs while params are outstanding.
func (s *WorkStore) TrackPathname(expression string) error {
	if s == nil || !s.IsStaticGeneration || !s.HasFallbackParams() {
		return nil
	}
	return s.record("pathname", expression)
}

// SearchParamsView is a tracked view over the query string
type SearchParamsView struct {
	query url.Values
	store *WorkStore
}

// SearchParams wraps query. A nil store disables tracking.
func SearchParams(query url.Values, store *WorkStore) *SearchParamsView {
	if query == nil {
		query = url.Values{}
	}
	return &SearchParamsView{query: query, store: store}
}

func (v *SearchParamsView) static() bool {
	return v.store != nil && v.store.IsStaticGeneration
}

// Get returns the first value for key
func (v *SearchParamsView) Get(key string) (string, error) {
	if v.static() {
		return "", v.store.record("searchParams", "searchParams."+key)
	}
	return v.query.Get(key), nil
}

// Values returns all values for key
func (v *SearchParamsView) Values(key string) ([]string, error) {
	if v.static() {
		return nil, v.store.record("searchParams", "searchParams."+key)
	}
	return v.query[key], nil
}

// Keys returns the sorted query keys
func (v *SearchParamsView) Keys() ([]string, error) {
	if v.static() {
		return nil, v.store.record("searchParams", "searchParams")
	}
	keys := make([]string, 0, len(v.query))
	for k := range v.query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// ParamsView is a tracked view over resolved route params
type ParamsView struct {
	params map[string]string
	store  *WorkStore
}

// Params wraps params. A nil store disables tracking.
func Params(params map[string]string, store *WorkStore) *ParamsView {
	cp := make(map[string]string, len(params))
	for k, v := range params {
		cp[k] = v
	}
	return &ParamsView{params: cp, store: store}
}

// Get returns the named param. Reading a fallback param during static
// generation is refused.
func (v *ParamsView) Get(name string) (string, error) {
	if v.store != nil && v.store.IsStaticGeneration && v.store.IsFallbackParam(name) {
		return "", v.store.record("params", "params."+name)
	}
	return v.params[name], nil
}

// Len returns the number of params
func (v *ParamsView) Len() int {
	return len(v.params)
}
