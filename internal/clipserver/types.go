package clipserver

import "github.com/anatolykoptev/go_clips/internal/catalog"

type VideoSearchInput struct {
	Query   string `json:"query,omitempty" jsonschema:"Search query (default: Trending)"`
	Page    int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	PerPage int    `json:"per_page,omitempty" jsonschema:"Results per page (default 20, max 80)"`
	Network string `json:"network,omitempty" jsonschema:"Viewer connection used to pick the playable file: 4g, 3g, 2g, slow-2g (default: 4g)"`
}

type VideoSearchOutput struct {
	Query   string `json:"query"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	Count   int    `json:"count"`
	HasMore bool   `json:"has_more"`
	Clips   []Clip `json:"clips"`
}

type VideoGetInput struct {
	ID      int64  `json:"id" jsonschema:"Pexels video id"`
	Network string `json:"network,omitempty" jsonschema:"Viewer connection used to pick the playable file: 4g, 3g, 2g, slow-2g (default: 4g)"`
}

type VideoGetOutput struct {
	Clip Clip `json:"clip"`
}

// Clip is a catalog.Video flattened for tool output, with the duration
// already formatted.
type Clip struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Image     string `json:"image"`
	VideoFile string `json:"video_file"`
	Quality   string `json:"quality,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Duration  int    `json:"duration"`
	Length    string `json:"length"`
	Author    string `json:"author,omitempty"`
	AuthorURL string `json:"author_url,omitempty"`
}

func toClip(v catalog.Video) Clip {
	c := Clip{
		ID:        v.ID,
		URL:       v.URL,
		Image:     v.Image,
		VideoFile: v.VideoFile,
		Quality:   v.Quality,
		Width:     v.Width,
		Height:    v.Height,
		Duration:  v.Duration,
		Length:    v.FormattedDuration(),
	}
	if v.User != nil {
		c.Author = v.User.Name
		c.AuthorURL = v.User.URL
	}
	return c
}
