package flow

import (
	"sync"

	"github.com/MarcoPoloResearchLab/pocketnotes/internal/session"
)

// Route names a client view.
type Route string

const (
	RouteHome   Route = "/"
	RouteLogin  Route = "/login"
	RouteSignup Route = "/signup"
	RouteNotes  Route = "/notes"
)

// Navigator performs view transitions.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route Route)

// Navigate calls fn(route).
func (fn NavigatorFunc) Navigate(route Route) {
	fn(route)
}

// RouteRecorder is a Navigator that remembers every transition.
type RouteRecorder struct {
	mu     sync.Mutex
	routes []Route
}

// Navigate records route.
func (r *RouteRecorder) Navigate(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Routes returns the recorded transitions in order.
func (r *RouteRecorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}

// Last returns the most recent transition and whether one happened.
func (r *RouteRecorder) Last() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return "", false
	}
	return r.routes[len(r.routes)-1], true
}

// Home sends authenticated users to the notes view and everyone else to login.
func Home(store session.Store, navigator Navigator) Route {
	route := RouteLogin
	if store.IsAuthenticated() {
		route = RouteNotes
	}
	navigator.Navigate(route)
	return route
}
