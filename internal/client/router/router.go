// Package router decides which view the client may show, given whether a
// session token is present.
package router

import (
	"errors"
	"fmt"
	"sync"
)

const (
	PathLogin    = "/login"
	PathRegister = "/register"
	PathHome     = "/"
)

var ErrUnknownRoute = errors.New("unknown route")

type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

type Action int

const (
	Allow Action = iota
	Redirect
)

type Decision struct {
	Action Action
	// To is the redirect path when Action is Redirect.
	To string
}

func (d Decision) String() string {
	if d.Action == Redirect {
		return "redirect " + d.To
	}
	return "allow"
}

// Guard is the navigation rule: protected routes need a token, and the
// login and register views are skipped once there is one.
func Guard(target Route, token string) Decision {
	authenticated := token != ""

	switch {
	case target.RequiresAuth && !authenticated:
		return Decision{Action: Redirect, To: PathLogin}
	case authenticated && (target.Path == PathLogin || target.Path == PathRegister):
		return Decision{Action: Redirect, To: PathHome}
	default:
		return Decision{Action: Allow}
	}
}

// DefaultRoutes is the client's route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "login", Path: PathLogin},
		{Name: "register", Path: PathRegister},
		{Name: "home", Path: PathHome, RequiresAuth: true},
	}
}

type TokenSource interface {
	Token() string
}

// Router tracks the current view and applies Guard to every navigation.
type Router struct {
	tokens TokenSource
	byPath map[string]Route
	byName map[string]Route

	mu      sync.RWMutex
	current Route
}

func New(tokens TokenSource, routes []Route) *Router {
	r := &Router{
		tokens: tokens,
		byPath: make(map[string]Route, len(routes)),
		byName: make(map[string]Route, len(routes)),
	}
	for _, rt := range routes {
		r.byPath[rt.Path] = rt
		r.byName[rt.Name] = rt
	}
	return r
}

// Resolve maps a path to its route. Unknown paths resolve to a route that
// needs no authentication.
func (r *Router) Resolve(path string) Route {
	if rt, ok := r.byPath[path]; ok {
		return rt
	}
	return Route{Path: path}
}

func (r *Router) ByName(name string) (Route, error) {
	rt, ok := r.byName[name]
	if !ok {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, name)
	}
	return rt, nil
}

// Navigate moves to path, following at most one redirect chain step: the
// redirect target is guarded once more and its own redirect, if any, is
// taken without further checks.
func (r *Router) Navigate(path string) Route {
	token := r.tokens.Token()

	target := r.Resolve(path)
	if d := Guard(target, token); d.Action == Redirect {
		target = r.Resolve(d.To)
		if d := Guard(target, token); d.Action == Redirect {
			target = r.Resolve(d.To)
		}
	}

	r.mu.Lock()
	r.current = target
	r.mu.Unlock()

	return target
}

// Refresh re-applies the guard to the current view, e.g. after the session
// changed underneath it.
func (r *Router) Refresh() Route {
	return r.Navigate(r.Current().Path)
}

func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
