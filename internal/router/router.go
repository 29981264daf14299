// Package router assembles the HTTP surface from a fixed list of route
// modules. Modules are mounted in the order they are given; a module that
// declares an invalid route or claims a method and path already taken makes
// Compose fail, and the process is expected not to start.
package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

// HandlerFunc serves one route. A returned error is passed to the router's
// ErrorHandler.
type HandlerFunc func(ctx *fasthttp.RequestCtx) error

type ErrorHandler func(ctx *fasthttp.RequestCtx, err error)

type Route struct {
	Method  string
	Path    string
	Handler HandlerFunc
}

// Module is a unit of related routes.
type Module interface {
	Name() string
	// Prefix is prepended to every route path of the module.
	Prefix() string
	Routes() []Route
}

// MethodNotAllowedResponder can be implemented by a Module to answer requests
// for one of its paths with a method it does not serve.
type MethodNotAllowedResponder interface {
	MethodNotAllowed(ctx *fasthttp.RequestCtx, allowed []string)
}

var knownMethods = map[string]bool{
	fasthttp.MethodGet:     true,
	fasthttp.MethodHead:    true,
	fasthttp.MethodPost:    true,
	fasthttp.MethodPut:     true,
	fasthttp.MethodPatch:   true,
	fasthttp.MethodDelete:  true,
	fasthttp.MethodOptions: true,
}

type endpoint struct {
	module   Module
	owner    int
	handlers map[string]HandlerFunc
	allowed  []string
}

type Router struct {
	endpoints    map[string]*endpoint
	modules      []string
	errorHandler ErrorHandler
	notFound     fasthttp.RequestHandler
}

type Option func(*Router)

func WithErrorHandler(handler ErrorHandler) Option {
	return func(r *Router) {
		r.errorHandler = handler
	}
}

// WithNotFound sets the handler for paths no module claims.
func WithNotFound(handler fasthttp.RequestHandler) Option {
	return func(r *Router) {
		r.notFound = handler
	}
}

func Compose(modules []Module, opts ...Option) (*Router, error) {
	r := &Router{
		endpoints:    make(map[string]*endpoint),
		errorHandler: defaultErrorHandler,
		notFound:     defaultNotFound,
	}
	for _, opt := range opts {
		opt(r)
	}

	for i, module := range modules {
		if err := r.mount(i, module); err != nil {
			return nil, err
		}
	}

	for _, ep := range r.endpoints {
		ep.allowed = allowedMethods(ep.handlers)
	}

	return r, nil
}

func (r *Router) mount(index int, module Module) error {
	if module == nil {
		return fmt.Errorf("route module is nil")
	}
	name := module.Name()
	routes := module.Routes()
	if len(routes) == 0 {
		return fmt.Errorf("route module %q declares no routes", name)
	}

	for _, route := range routes {
		method := strings.ToUpper(route.Method)
		if !knownMethods[method] {
			return fmt.Errorf("route module %q: unsupported method %q", name, route.Method)
		}
		if route.Handler == nil {
			return fmt.Errorf("route module %q: nil handler for %s %s", name, method, route.Path)
		}

		path, err := joinPath(module.Prefix(), route.Path)
		if err != nil {
			return fmt.Errorf("route module %q: %w", name, err)
		}

		ep, ok := r.endpoints[path]
		if !ok {
			ep = &endpoint{module: module, owner: index, handlers: make(map[string]HandlerFunc)}
			r.endpoints[path] = ep
		}
		if ep.owner != index {
			return fmt.Errorf("route module %q: path %s already claimed by module %q", name, path, ep.module.Name())
		}
		if _, exists := ep.handlers[method]; exists {
			return fmt.Errorf("route module %q: duplicate route %s %s", name, method, path)
		}
		ep.handlers[method] = route.Handler

		log.Debug().
			Str("module", name).
			Str("method", method).
			Str("path", path).
			Msg("Route mounted")
	}

	r.modules = append(r.modules, name)
	return nil
}

// Modules returns the names of the mounted modules in mount order.
func (r *Router) Modules() []string {
	return append([]string(nil), r.modules...)
}

func (r *Router) Handle(ctx *fasthttp.RequestCtx) {
	ep, ok := r.endpoints[normalizePath(string(ctx.Path()))]
	if !ok {
		r.notFound(ctx)
		return
	}

	method := string(ctx.Method())
	handler, ok := ep.handlers[method]
	if !ok && method == fasthttp.MethodHead {
		handler, ok = ep.handlers[fasthttp.MethodGet]
	}
	if ok {
		if err := handler(ctx); err != nil {
			r.errorHandler(ctx, err)
		}
		return
	}

	r.methodNotAllowed(ctx, ep, method)
}

func (r *Router) methodNotAllowed(ctx *fasthttp.RequestCtx, ep *endpoint, method string) {
	allow := strings.Join(ep.allowed, ", ")

	switch {
	case method == fasthttp.MethodOptions:
		ctx.Response.Header.Set(fasthttp.HeaderAllow, allow)
		ctx.SetStatusCode(fasthttp.StatusOK)
	case !knownMethods[method]:
		WriteStatus(ctx, fasthttp.StatusNotImplemented)
	default:
		ctx.Response.Header.Set(fasthttp.HeaderAllow, allow)
		if responder, ok := ep.module.(MethodNotAllowedResponder); ok {
			responder.MethodNotAllowed(ctx, ep.allowed)
			return
		}
		WriteStatus(ctx, fasthttp.StatusMethodNotAllowed)
	}
}

func allowedMethods(handlers map[string]HandlerFunc) []string {
	methods := make([]string, 0, len(handlers)+1)
	for method := range handlers {
		methods = append(methods, method)
	}
	if _, ok := handlers[fasthttp.MethodGet]; ok {
		if _, ok := handlers[fasthttp.MethodHead]; !ok {
			methods = append(methods, fasthttp.MethodHead)
		}
	}
	sort.Strings(methods)
	return methods
}

func joinPath(prefix, path string) (string, error) {
	if path != "" && !strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("path %q must start with /", path)
	}
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		return "", fmt.Errorf("prefix %q must start with /", prefix)
	}
	joined := strings.TrimSuffix(prefix, "/") + path
	if joined == "" {
		return "", fmt.Errorf("empty path")
	}
	return normalizePath(joined), nil
}

func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}

func defaultErrorHandler(ctx *fasthttp.RequestCtx, err error) {
	log.Error().Err(err).Str("path", string(ctx.Path())).Msg("Unhandled route error")
	WriteStatus(ctx, fasthttp.StatusInternalServerError)
}

func defaultNotFound(ctx *fasthttp.RequestCtx) {
	WriteStatus(ctx, fasthttp.StatusNotFound)
}

// WriteStatus answers with statusCode and its status text. Unlike ctx.Error
// it keeps headers already set on the response.
func WriteStatus(ctx *fasthttp.RequestCtx, statusCode int) {
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString(fasthttp.StatusMessage(statusCode))
}
