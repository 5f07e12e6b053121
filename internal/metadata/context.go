package metadata

// AccessTracker validates and records reads of request-bound values.
// TrackPathname returns a non-nil error when the pathname must not be used.
type AccessTracker interface {
	TrackPathname(expression string) error
}

// ContextOptions configures a Context
type ContextOptions struct {
	Pathname         string
	TrailingSlash    bool
	IsStandaloneMode bool
	Tracker          AccessTracker
}

// Context is the immutable per-request value the resolver uses to resolve
// relative references. It is created once per request.
type Context struct {
	pathname      string
	trailingSlash bool
	standalone    bool
	tracker       AccessTracker
}

// NewContext creates a request metadata context
func NewContext(opts ContextOptions) Context {
	return Context{
		pathname:      opts.Pathname,
		trailingSlash: opts.TrailingSlash,
		standalone:    opts.IsStandaloneMode,
		tracker:       opts.Tracker,
	}
}

// Pathname returns the request path. When a tracker is attached every read
// goes through it first, so a read during static generation with unresolved
// params is recorded and refused.
func (c Context) Pathname() (string, error) {
	if c.tracker != nil {
		if err := c.tracker.TrackPathname("pathname"); err != nil {
			return "", err
		}
	}
	return c.pathname, nil
}

// TrailingSlash reports whether resolved URLs keep a trailing slash
func (c Context) TrailingSlash() bool {
	return c.trailingSlash
}

// IsStandaloneMode reports whether the app is built for standalone output
func (c Context) IsStandaloneMode() bool {
	return c.standalone
}
