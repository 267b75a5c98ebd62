// Package web serves the browser surface: one HTML page, a small JSON API
// that drives the session's controller, and a websocket that pushes every
// state change back to the page.
package web

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/session"
)

// VideoLookup fetches one clip by id, for overlays opened on a clip that is
// not in the current result set.
type VideoLookup func(ctx context.Context, id int64) (catalog.Entry, error)

// Options configures the router.
type Options struct {
	CORSOrigins  []string
	SecureCookie bool
	SessionTTL   time.Duration
}

// Server holds the handlers' dependencies.
type Server struct {
	store  *session.Store
	lookup VideoLookup
	opts   Options
	page   *template.Template
}

// NewRouter wires every route onto a gin engine.
func NewRouter(store *session.Store, lookup VideoLookup, opts Options) *gin.Engine {
	s := &Server{
		store:  store,
		lookup: lookup,
		opts:   opts,
		page:   template.Must(template.New("index.html").Funcs(pageFuncs).ParseFS(templatesFS, "templates/index.html")),
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(), countRequests())
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", metricsHandler)

	r.GET("/", s.issueSession(), s.index)
	r.GET("/ws", s.requireSession(true), s.stream)

	// viewport starts the session itself, after the first page size is known.
	r.POST("/api/viewport", s.requireSession(false), s.viewport)

	api := r.Group("/api", s.requireSession(true))
	{
		api.GET("/state", s.state)
		api.POST("/search", s.search)
		api.POST("/query", s.query)
		api.POST("/more", s.more)
		api.POST("/select", s.selectVideo)
		api.DELETE("/select", s.clearSelection)
	}
	return r
}

// Serve runs handler on addr until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web: listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
