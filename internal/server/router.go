package server

import (
	"net/http"
	"strings"
)

var _ Router = (*BasicRouter)(nil)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for routing. Paths use ServeMux patterns without a method;
// the method is checked by the router so a mismatch answers 405 with a JSON body.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	methods     map[string][]string
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
		methods:     map[string][]string{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Only routes registered after the call are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for exactly the specified HTTP method and path.
//
// The handler is wrapped with all registered middleware.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.handle([]string{strings.ToUpper(method)}, path, handler)
}

// HandleRead registers a handler that only reads, answering both GET and HEAD.
//
// Handlers that touch session state must use [BasicRouter.Handle] so HEAD cannot trigger them.
func (r *BasicRouter) HandleRead(path string, handler http.Handler) {
	r.handle([]string{http.MethodGet, http.MethodHead}, path, handler)
}

// Handler registers a custom Handler implementation as read-only content.
//
// All routes returned by [Handler.Routes] are registered with this handler.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.HandleRead(route, handler)
	}
}

func (r *BasicRouter) handle(allowed []string, path string, handler http.Handler) {
	r.methods[path] = allowed

	methodHandler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		for _, m := range allowed {
			if req.Method == m {
				handler.ServeHTTP(w, req)
				return
			}
		}
		w.Header().Set("Allow", strings.Join(allowed, ", "))
		writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{Error: "method not allowed"})
	})

	r.mux.Handle(path, r.Apply(methodHandler))
}

// Routes lists registered paths with their allowed methods.
func (r *BasicRouter) Routes() map[string][]string {
	routes := make(map[string][]string, len(r.methods))
	for path, methods := range r.methods {
		routes[path] = append([]string(nil), methods...)
	}
	return routes
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
