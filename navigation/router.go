package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/MrEthical07/goNebula/route"
)

var (
	// ErrRouteNotFound is returned when no route matches and no not-found
	// route is configured.
	ErrRouteNotFound = errors.New("route not found")
	// ErrRedirectLoop is returned when redirects exceed the hop limit.
	ErrRedirectLoop = errors.New("too many navigation redirects")
)

// DefaultMaxRedirects bounds redirect chains followed by a single Push.
const DefaultMaxRedirects = 8

// Location is a committed navigation target.
type Location struct {
	Path     string
	FullPath string
	Query    url.Values
	Params   map[string]string
	Name     string
	Title    string
}

// Navigator is the navigation primitive the session controller drives.
type Navigator interface {
	Current() Location
	Push(ctx context.Context, target string) error
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithNotFound sends unmatched paths to p instead of failing.
func WithNotFound(p string) RouterOption {
	return func(r *Router) { r.notFound = p }
}

// WithMaxRedirects overrides DefaultMaxRedirects.
func WithMaxRedirects(n int) RouterOption {
	return func(r *Router) {
		if n > 0 {
			r.maxHops = n
		}
	}
}

// WithRouterLogger sets the router's logger.
func WithRouterLogger(l *zap.Logger) RouterOption {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStart sets the initial location without running the guard.
func WithStart(fullPath string) RouterOption {
	return func(r *Router) { r.start = fullPath }
}

// Router is an in-memory history-backed Navigator.
type Router struct {
	mu       sync.Mutex
	entries  []route.Entry
	guard    *Guard
	notFound string
	maxHops  int
	logger   *zap.Logger
	start    string

	current Location
	history []Location
}

// NewRouter builds a router over tree. guard may be nil to allow every
// attempt.
func NewRouter(tree []route.Node, guard *Guard, opts ...RouterOption) *Router {
	r := &Router{
		entries: route.Flatten(tree),
		guard:   guard,
		maxHops: DefaultMaxRedirects,
		logger:  zap.NewNop(),
		start:   "/",
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current = locationOf(r.start)
	return r
}

// SetRoutes replaces the route table, e.g. after a re-login with new roles.
func (r *Router) SetRoutes(tree []route.Node) {
	entries := route.Flatten(tree)
	r.mu.Lock()
	r.entries = entries
	r.mu.Unlock()
}

// Current returns the committed location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Title returns the title of the committed location.
func (r *Router) Title() string {
	return r.Current().Title
}

// History returns committed locations, oldest first.
func (r *Router) History() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Location(nil), r.history...)
}

// Push navigates to target, following route redirects, guard redirects and
// the not-found route.
func (r *Router) Push(ctx context.Context, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for hop := 0; hop <= r.maxHops; hop++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		loc := locationOf(target)

		m, ok := route.Find(r.entries, loc.Path)
		if !ok {
			if r.notFound != "" && loc.Path != r.notFound {
				target = r.notFound
				continue
			}
			return fmt.Errorf("%w: %s", ErrRouteNotFound, loc.Path)
		}
		if m.Entry.Redirect != "" {
			target = m.Entry.Redirect
			continue
		}

		loc.Params = m.Params
		loc.Name = m.Entry.Name
		if r.guard != nil {
			d := r.guard.Before(ctx, Attempt{Path: loc.Path, FullPath: loc.FullPath, Meta: m.Entry.Meta})
			loc.Title = d.Title
			if !d.Allow {
				target = d.Redirect
				continue
			}
		} else {
			loc.Title = m.Entry.Meta.Title
		}

		r.history = append(r.history, loc)
		r.current = loc
		r.logger.Debug("navigated", zap.String("path", loc.FullPath))
		return nil
	}
	return fmt.Errorf("%w: last target %s", ErrRedirectLoop, target)
}

func locationOf(target string) Location {
	u, err := url.Parse(target)
	if err != nil || u.Path == "" {
		return Location{Path: "/", FullPath: "/", Query: url.Values{}}
	}
	loc := Location{Path: u.Path, Query: u.Query(), FullPath: u.Path}
	if u.RawQuery != "" {
		loc.FullPath = u.Path + "?" + u.RawQuery
	}
	return loc
}
