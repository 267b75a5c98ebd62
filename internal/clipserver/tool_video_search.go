package clipserver

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/engine"
	"github.com/anatolykoptev/go_clips/internal/engine/sources"
	"github.com/anatolykoptev/go_clips/internal/toolutil"
)

func registerVideoSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_search",
		Description: "Search the Pexels stock-video catalog. Returns one page of clips with thumbnail, playable file URL (picked for the given network speed), duration and author, plus has_more for pagination. An empty query returns trending clips.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input VideoSearchInput) (*mcp.CallToolResult, VideoSearchOutput, error) {
		out, err := videoSearch(ctx, input)
		if err != nil {
			return nil, VideoSearchOutput{}, err
		}
		return nil, out, nil
	})
}

func videoSearch(ctx context.Context, input VideoSearchInput) (VideoSearchOutput, error) {
	query := engine.NormQuery(input.Query)
	page := toolutil.NormPage(input.Page)
	perPage := toolutil.NormPerPage(input.PerPage)
	speed := toolutil.NormNetwork(input.Network)

	cacheKey := engine.CacheKey("video_search", query, strconv.Itoa(page), strconv.Itoa(perPage), speed.String())
	return toolutil.Cached(ctx, cacheKey, func(ctx context.Context) (VideoSearchOutput, error) {
		entries, err := sources.SearchPexelsVideos(ctx, query, page, perPage)
		if err != nil {
			slog.Warn("video_search error", slog.String("query", query), slog.Int("page", page), slog.Any("error", err))
			return VideoSearchOutput{}, fmt.Errorf("video search failed: %w", err)
		}

		clips := make([]Clip, 0, len(entries))
		for _, v := range catalog.NewVideos(entries, speed) {
			clips = append(clips, toClip(v))
		}
		return VideoSearchOutput{
			Query:   query,
			Page:    page,
			PerPage: perPage,
			Count:   len(clips),
			HasMore: len(entries) >= perPage,
			Clips:   clips,
		}, nil
	})
}
