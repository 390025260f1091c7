package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that register their own routes.
type RouteRegistrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

// Router owns the gin engine and the versioned API group.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	api        *gin.RouterGroup
}

// Option configures a Router.
type Option func(*Router)

// WithAPIVersion sets the API version segment, default "v1".
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// New creates a Router around the given engine.
func New(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	r.api = engine.Group("/api/" + r.apiVersion)
	return r
}

// Register wires each registrar's routes into the versioned API group.
func (r *Router) Register(registrars ...RouteRegistrar) {
	for _, registrar := range registrars {
		registrar.RegisterRoutes(r.api)
	}
}

// Use attaches middleware to the versioned API group only.
func (r *Router) Use(middleware ...gin.HandlerFunc) {
	r.api.Use(middleware...)
}

// Engine returns the underlying gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// APIGroup returns the versioned API group.
func (r *Router) APIGroup() *gin.RouterGroup {
	return r.api
}
