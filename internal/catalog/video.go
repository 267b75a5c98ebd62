// Package catalog holds the stock-video record shown in the grid and the
// small pure helpers around it: file quality selection, page sizing and
// duration formatting.
package catalog

// Quality tiers offered by the provider for a single clip.
const (
	TierSD  = "sd"
	TierHD  = "hd"
	TierUHD = "uhd"
)

// User is the uploader of a clip.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// File is one encoded rendition of a clip.
type File struct {
	ID       int64  `json:"id"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Link     string `json:"link"`
}

// Entry is a catalog item as returned by the provider, with every rendition.
type Entry struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	Duration int    `json:"duration"`
	User     *User  `json:"user,omitempty"`
	Files    []File `json:"video_files"`
}

// Video is the immutable record the grid and the overlay render.
// VideoFile is the one playable rendition picked for the viewer's network.
type Video struct {
	ID        int64  `json:"id"`
	URL       string `json:"url"`
	Image     string `json:"image"`
	VideoFile string `json:"video_file"`
	Quality   string `json:"quality,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Duration  int    `json:"duration"`
	User      *User  `json:"user,omitempty"`
}

// NewVideo builds a Video from a catalog entry, choosing the playable file for speed.
func NewVideo(e Entry, speed NetworkSpeed) Video {
	v := Video{
		ID:       e.ID,
		URL:      e.URL,
		Image:    e.Image,
		Duration: e.Duration,
		User:     e.User,
	}
	if f, ok := SelectFile(e.Files, speed); ok {
		v.VideoFile = f.Link
		v.Quality = f.Quality
		v.Width = f.Width
		v.Height = f.Height
	}
	return v
}

// NewVideos converts a page of entries.
func NewVideos(entries []Entry, speed NetworkSpeed) []Video {
	out := make([]Video, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewVideo(e, speed))
	}
	return out
}

// FormattedDuration is Duration rendered as m:ss.
func (v Video) FormattedDuration() string {
	return FormatDuration(v.Duration)
}
