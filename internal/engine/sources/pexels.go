package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/anatolykoptev/go_clips/internal/catalog"
	"github.com/anatolykoptev/go_clips/internal/engine"
)

// Pexels video API. The key goes in the Authorization header as-is, no scheme.

const pexelsMaxBody = 4 * 1024 * 1024

// User-facing messages; FetchError.Msg is shown inline in the grid.
const (
	msgFetchFailed     = "Failed to fetch videos"
	msgInvalidResponse = "Invalid response from API"
)

// pexelsSearchResp mirrors /videos/search. Videos is a pointer so that a body
// without the list can be told apart from an empty page.
type pexelsSearchResp struct {
	Page         int            `json:"page"`
	PerPage      int            `json:"per_page"`
	TotalResults int            `json:"total_results"`
	Videos       *[]pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID         int64             `json:"id"`
	URL        string            `json:"url"`
	Image      string            `json:"image"`
	Duration   int               `json:"duration"`
	User       *pexelsUser       `json:"user"`
	VideoFiles []pexelsVideoFile `json:"video_files"`
}

type pexelsUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pexelsVideoFile struct {
	ID       int64  `json:"id"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Link     string `json:"link"`
}

// SearchPexelsVideos fetches one page of search results.
func SearchPexelsVideos(ctx context.Context, query string, page, perPage int) ([]catalog.Entry, error) {
	engine.IncrSearchRequests()
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	body, err := pexelsGet(ctx, "search", "/videos/search?"+params.Encode())
	if err != nil {
		engine.IncrSearchErrors()
		return nil, err
	}

	entries, err := parsePexelsSearch(body)
	if err != nil {
		engine.IncrSearchErrors()
		return nil, err
	}
	slog.Debug("pexels: search page",
		slog.String("query", query), slog.Int("page", page),
		slog.Int("per_page", perPage), slog.Int("count", len(entries)))
	return entries, nil
}

// GetPexelsVideo fetches a single clip by id.
func GetPexelsVideo(ctx context.Context, id int64) (catalog.Entry, error) {
	engine.IncrVideoRequests()

	body, err := pexelsGet(ctx, "video", "/videos/videos/"+strconv.FormatInt(id, 10))
	if err != nil {
		engine.IncrVideoErrors()
		return catalog.Entry{}, err
	}

	var v pexelsVideo
	if err := json.Unmarshal(body, &v); err != nil || v.ID == 0 {
		engine.IncrVideoErrors()
		return catalog.Entry{}, &engine.FetchError{Op: "video", Msg: msgInvalidResponse, Err: err}
	}
	return v.toEntry(), nil
}

// pexelsGet performs an authorized GET against the API base and returns the body
// of a 2xx response. Every failure comes back as *engine.FetchError.
func pexelsGet(ctx context.Context, op, path string) ([]byte, error) {
	if err := engine.WaitQuota(ctx); err != nil {
		return nil, &engine.FetchError{Op: op, Msg: msgFetchFailed, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, engine.Cfg.PexelsAPIBase+path, nil)
	if err != nil {
		return nil, &engine.FetchError{Op: op, Msg: msgFetchFailed, Err: err}
	}
	req.Header.Set("Authorization", engine.Cfg.PexelsAPIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", engine.UserAgent)

	resp, err := engine.Cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, &engine.FetchError{Op: op, Msg: msgFetchFailed, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("pexels: non-success status",
			slog.String("op", op), slog.Int("status", resp.StatusCode),
			slog.String("body", engine.TruncateRunes(string(snippet), 200, "...")))
		return nil, &engine.FetchError{Op: op, Status: resp.StatusCode, Msg: msgFetchFailed}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, pexelsMaxBody))
	if err != nil {
		return nil, &engine.FetchError{Op: op, Msg: msgFetchFailed, Err: fmt.Errorf("read body: %w", err)}
	}
	return body, nil
}

// parsePexelsSearch decodes a search body into catalog entries.
func parsePexelsSearch(body []byte) ([]catalog.Entry, error) {
	var resp pexelsSearchResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &engine.FetchError{Op: "search", Msg: msgInvalidResponse, Err: err}
	}
	if resp.Videos == nil {
		return nil, &engine.FetchError{Op: "search", Msg: msgInvalidResponse}
	}

	entries := make([]catalog.Entry, 0, len(*resp.Videos))
	for _, v := range *resp.Videos {
		entries = append(entries, v.toEntry())
	}
	return entries, nil
}

func (v pexelsVideo) toEntry() catalog.Entry {
	e := catalog.Entry{
		ID:       v.ID,
		URL:      v.URL,
		Image:    v.Image,
		Duration: v.Duration,
		Files:    make([]catalog.File, 0, len(v.VideoFiles)),
	}
	if v.User != nil {
		e.User = &catalog.User{ID: v.User.ID, Name: v.User.Name, URL: v.User.URL}
	}
	for _, f := range v.VideoFiles {
		e.Files = append(e.Files, catalog.File{
			ID:       f.ID,
			Quality:  f.Quality,
			FileType: f.FileType,
			Width:    f.Width,
			Height:   f.Height,
			Link:     f.Link,
		})
	}
	return e
}
