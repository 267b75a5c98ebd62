package web

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_clips/internal/browse"
	"github.com/anatolykoptev/go_clips/internal/catalog"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageFuncs = template.FuncMap{
	"duration": catalog.FormatDuration,
	"loading":  func(s browse.State) bool { return s.Loading != browse.Idle },
	"initial":  func(s browse.State) bool { return s.Loading == browse.Initial },
	"seq":      func(n int) []struct{} { return make([]struct{}, n) },
}

type pageData struct {
	State browse.State
}

// index renders the page with the current state so the first paint needs no script.
func (s *Server) index(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.page.Execute(c.Writer, pageData{State: controller(c).Snapshot()}); err != nil {
		slog.Warn("web: render index", slog.Any("error", err))
	}
}
