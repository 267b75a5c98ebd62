package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_clips/internal/browse"
	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/engine"
	"github.com/anatolykoptev/go_clips/internal/session"
)

const ctrlKey = "browse.controller"

// Client hints the page asks for; the browser sends them on later requests.
const acceptCH = "Sec-CH-Viewport-Width, Viewport-Width, ECT"

// countRequests counts every request in the engine metrics.
func countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		engine.IncrHTTPRequests()
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("web: request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)))
	}
}

// issueSession attaches the caller's controller, creating a session when the
// request carries no valid cookie. A new session fetches nothing until the
// page calls back with the issued cookie.
func (s *Server) issueSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(session.CookieName)
		hints := clientHints(c.Request)

		sid, ctrl, created := s.store.GetOrCreate(sid, hints)
		if !created {
			hints(ctrl)
			ctrl.Start()
		}
		s.attach(c, sid, ctrl)
	}
}

// requireSession attaches the controller of an issued session and, when start
// is set, starts its first fetch. Requests without one are rejected; they
// never mint a session.
func (s *Server) requireSession(start bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, _ := c.Cookie(session.CookieName)
		ctrl, ok := s.store.Get(sid)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No session"})
			return
		}
		clientHints(c.Request)(ctrl)
		if start {
			ctrl.Start()
		}
		s.attach(c, sid, ctrl)
	}
}

// attach refreshes the cookie so its expiry slides with activity, then
// hands ctrl to the handler.
func (s *Server) attach(c *gin.Context, sid string, ctrl *browse.Controller) {
	maxAge := int(s.opts.SessionTTL / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, sid, maxAge, "/", "", s.opts.SecureCookie, true)
	c.Header("Accept-CH", acceptCH)
	c.Set(ctrlKey, ctrl)
	c.Next()
}

// clientHints returns a func applying the request's viewport and network hints.
func clientHints(r *http.Request) func(*browse.Controller) {
	width, hasWidth := viewportHint(r)
	ect := r.Header.Get("ECT")
	return func(ctrl *browse.Controller) {
		if hasWidth {
			ctrl.SetViewport(width)
		}
		if ect != "" {
			ctrl.SetNetworkSpeed(catalog.ParseNetworkSpeed(ect))
		}
	}
}

func viewportHint(r *http.Request) (int, bool) {
	for _, h := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		if v := r.Header.Get(h); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return 0, false
}

func controller(c *gin.Context) *browse.Controller {
	return c.MustGet(ctrlKey).(*browse.Controller)
}
