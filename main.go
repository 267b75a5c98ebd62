// go_clips — stock-video browser and MCP server.
//
// Serves the clip grid (web UI with a websocket-driven search/pagination
// controller per browser session) and exposes the same catalog as two MCP
// tools: video_search, video_get.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_clips/internal/browse"
	"github.com/anatolykoptev/go_clips/internal/clipserver"
	"github.com/anatolykoptev/go_clips/internal/engine"
	"github.com/anatolykoptev/go_clips/internal/engine/sources"
	"github.com/anatolykoptev/go_clips/internal/session"
	"github.com/anatolykoptev/go_clips/internal/web"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}

	if err := initEngine(); err != nil {
		slog.Error("engine init failed", slog.Any("error", err))
		os.Exit(1)
	}

	webPort := env.Str("WEB_PORT", "8892")
	mcpPort := env.Str("MCP_PORT", "8891")
	if env.Str("GIN_MODE", "") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	slog.Info("starting go_clips",
		slog.String("web_port", webPort),
		slog.String("mcp_port", mcpPort),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(newController,
		env.Duration("SESSION_TTL", 30*time.Minute),
		env.Int("MAX_SESSIONS", 10000),
	)
	defer store.Close()
	go store.Run(ctx, time.Minute)

	router := web.NewRouter(store, sources.GetPexelsVideo, web.Options{
		CORSOrigins:  env.List("CORS_ORIGINS", ""),
		SecureCookie: envBool("COOKIE_SECURE", false),
		SessionTTL:   env.Duration("SESSION_TTL", 30*time.Minute),
	})
	go func() {
		if err := web.Serve(ctx, net.JoinHostPort("", webPort), router); err != nil {
			slog.Error("web server failed", slog.Any("error", err))
			stop()
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_clips",
		Version: version,
	}, nil)

	clipserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", clipserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_clips",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 60 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

// newController builds an unstarted controller for a new browser session.
func newController() *browse.Controller {
	return browse.New(browse.FetcherFunc(sources.SearchPexelsVideos), browse.Options{
		DefaultQuery:  engine.Cfg.DefaultQuery,
		DebounceDelay: engine.Cfg.DebounceDelay,
	})
}

// envBool reads a boolean env var. Unset means def; an unparsable value is
// logged and also means def.
func envBool(key string, def bool) bool {
	raw := env.Str(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("invalid boolean env value, using default",
			slog.String("key", key), slog.String("value", raw), slog.Bool("default", def))
		return def
	}
	return v
}

func initEngine() error {
	c := engine.Config{
		PexelsAPIKey:         env.Str("PEXELS_API_KEY", ""),
		PexelsAPIBase:        env.Str("PEXELS_API_BASE", engine.DefaultPexelsAPIBase),
		PexelsRatePerHour:    env.Int("PEXELS_RATE_PER_HOUR", 200),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", engine.DefaultFetchTimeout),
		DebounceDelay:        env.Duration("DEBOUNCE_DELAY", engine.DefaultDebounceDelay),
		DefaultQuery:         env.Str("DEFAULT_QUERY", engine.DefaultQuery),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	if c.PexelsAPIKey == "" {
		return engine.ErrMissingAPIKey
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return nil
}
