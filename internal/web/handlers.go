package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/engine"
	"github.com/anatolykoptev/go_clips/internal/toolutil"
)

type searchRequest struct {
	Term string `json:"term"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type selectRequest struct {
	ID int64 `json:"id" binding:"required"`
}

type viewportRequest struct {
	Width   int    `json:"width"`
	Network string `json:"network"`
}

func (s *Server) state(c *gin.Context) {
	c.JSON(http.StatusOK, controller(c).Snapshot())
}

// search records a keystroke; the query itself changes after the debounce.
func (s *Server) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ctrl := controller(c)
	ctrl.SetSearchTerm(req.Term)
	c.JSON(http.StatusAccepted, ctrl.Snapshot())
}

// query applies a query at once, for form submits.
func (s *Server) query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ctrl := controller(c)
	ctrl.SetQuery(req.Query)
	c.JSON(http.StatusAccepted, ctrl.Snapshot())
}

func (s *Server) more(c *gin.Context) {
	ctrl := controller(c)
	started := ctrl.LoadMore()
	c.JSON(http.StatusOK, gin.H{"started": started, "state": ctrl.Snapshot()})
}

func (s *Server) selectVideo(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ctrl := controller(c)
	if ctrl.SelectVideo(req.ID) {
		c.JSON(http.StatusOK, ctrl.Snapshot())
		return
	}
	if s.lookup == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Video not found"})
		return
	}
	entry, err := s.lookupCached(c.Request.Context(), req.ID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": engine.UserMessage(err)})
		return
	}
	ctrl.ShowVideo(catalog.NewVideo(entry, ctrl.NetworkSpeed()))
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

// lookupCached reads clips outside the result set through the engine cache.
func (s *Server) lookupCached(ctx context.Context, id int64) (catalog.Entry, error) {
	key := engine.CacheKey("video_lookup", strconv.FormatInt(id, 10))
	return toolutil.Cached(ctx, key, func(ctx context.Context) (catalog.Entry, error) {
		return s.lookup(ctx, id)
	})
}

func (s *Server) clearSelection(c *gin.Context) {
	ctrl := controller(c)
	ctrl.ClearSelection()
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func (s *Server) viewport(c *gin.Context) {
	var req viewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	ctrl := controller(c)
	if req.Width > 0 {
		ctrl.SetViewport(req.Width)
	}
	if req.Network != "" {
		ctrl.SetNetworkSpeed(catalog.ParseNetworkSpeed(req.Network))
	}
	ctrl.Start()
	c.JSON(http.StatusOK, ctrl.Snapshot())
}

func metricsHandler(c *gin.Context) {
	c.String(http.StatusOK, engine.FormatMetrics())
}
