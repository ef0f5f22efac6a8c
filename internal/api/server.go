// Package api exposes the catalog over HTTP for the dashboard front end.
// Every request that needs the prerequisite graph rebuilds it from the
// current store contents, so edits are visible to the next request.
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vk/curriculum/internal/catalog"
	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/ctxlog"
	"github.com/vk/curriculum/internal/notify"
	"github.com/vk/curriculum/internal/registration"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store    catalog.Store
	base     *config.Model
	saver    config.Saver
	notifier notify.Notifier
	limits   registration.Limits
	logger   *slog.Logger

	// editMu serialises edits so the snapshot handed to the saver always
	// reflects a single completed edit.
	editMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithSaver persists the catalog after every successful edit.
func WithSaver(saver config.Saver) Option {
	return func(s *Server) { s.saver = saver }
}

// WithNotifier announces every saved edit through n.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Server) { s.notifier = n }
}

// WithLimits overrides the registration limits.
func WithLimits(limits registration.Limits) Option {
	return func(s *Server) { s.limits = limits }
}

// New creates a server over store. base carries the records the store does
// not own (profiles, outcomes, exchanges); it may be nil.
func New(ctx context.Context, store catalog.Store, base *config.Model, opts ...Option) *Server {
	if base == nil {
		base = config.NewModel()
	}
	s := &Server{
		store:    store,
		base:     base,
		notifier: notify.Nop{},
		limits:   registration.DefaultLimits(),
		logger:   ctxlog.FromContext(ctx),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.GET("/courses", s.listCourses)
		api.GET("/courses/:code", s.getCourse)
		api.PUT("/courses/:code", s.upsertCourse)
		api.PUT("/courses/:code/prerequisites", s.setPrerequisites)
		api.DELETE("/courses/:code", s.removeCourse)

		api.GET("/prerequisites", s.listPrerequisites)
		api.GET("/graph", s.graph)
		api.GET("/graph/order", s.order)
		api.GET("/eligibility", s.eligibility)
		api.GET("/tracks", s.tracks)
		api.PUT("/tracks/:track/courses/:code", s.placeCourse)
		api.DELETE("/tracks/:track", s.removeTrack)
		api.GET("/summary", s.summary)
		api.GET("/exchanges", s.exchanges)
		api.GET("/export", s.exportCatalog)
		api.POST("/registration", s.simulateRegistration)
	}
	return r
}

// requestLogger attaches the server's logger to each request context and
// logs the request once it completes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), s.logger))

		c.Next()

		s.logger.Debug("HTTP request handled.",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// persist hands the current catalog to the saver, if one is configured.
// Callers must hold editMu.
func (s *Server) persist(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Save(ctx, catalog.Snapshot(ctx, s.store, s.base))
}
