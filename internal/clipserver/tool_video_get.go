package clipserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/engine"
	"github.com/anatolykoptev/go_clips/internal/engine/sources"
	"github.com/anatolykoptev/go_clips/internal/toolutil"
)

func registerVideoGet(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_get",
		Description: "Fetch one Pexels clip by id. Returns thumbnail, playable file URL picked for the given network speed, duration and author.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input VideoGetInput) (*mcp.CallToolResult, VideoGetOutput, error) {
		out, err := videoGet(ctx, input)
		if err != nil {
			return nil, VideoGetOutput{}, err
		}
		return nil, out, nil
	})
}

func videoGet(ctx context.Context, input VideoGetInput) (VideoGetOutput, error) {
	if input.ID <= 0 {
		return VideoGetOutput{}, errors.New("id is required")
	}
	speed := toolutil.NormNetwork(input.Network)

	cacheKey := engine.CacheKey("video_get", strconv.FormatInt(input.ID, 10), speed.String())
	return toolutil.Cached(ctx, cacheKey, func(ctx context.Context) (VideoGetOutput, error) {
		entry, err := sources.GetPexelsVideo(ctx, input.ID)
		if err != nil {
			slog.Warn("video_get error", slog.Int64("id", input.ID), slog.Any("error", err))
			return VideoGetOutput{}, fmt.Errorf("video lookup failed: %w", err)
		}
		return VideoGetOutput{Clip: toClip(catalog.NewVideo(entry, speed))}, nil
	})
}
