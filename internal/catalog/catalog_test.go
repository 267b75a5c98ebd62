package catalog

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{61, "1:01"},
		{605, "10:05"},
		{3600, "60:00"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestPerPage(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  int
	}{
		{"wide edge", 1280, WidePerPage},
		{"very wide", 2560, WidePerPage},
		{"medium edge", 768, MediumPerPage},
		{"just below wide", 1279, MediumPerPage},
		{"just below medium", 767, NarrowPerPage},
		{"unknown width", 0, NarrowPerPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PerPage(tt.width); got != tt.want {
				t.Errorf("PerPage(%d) = %d, want %d", tt.width, got, tt.want)
			}
		})
	}
}

func TestSkeletonCount(t *testing.T) {
	if got := SkeletonCount(1440); got != 40 {
		t.Errorf("desktop = %d, want 40", got)
	}
	if got := SkeletonCount(800); got != 20 {
		t.Errorf("tablet = %d, want 20", got)
	}
	if got := SkeletonCount(375); got != 6 {
		t.Errorf("phone = %d, want 6", got)
	}
}

func TestParseNetworkSpeed(t *testing.T) {
	tests := map[string]NetworkSpeed{
		"4g":      SpeedFast,
		"4G":      SpeedFast,
		"3g":      SpeedMedium,
		"2g":      SpeedSlow,
		"slow-2g": SpeedSlow,
		"fast":    SpeedFast,
		"":        SpeedUnknown,
		"5g":      SpeedUnknown,
	}
	for in, want := range tests {
		if got := ParseNetworkSpeed(in); got != want {
			t.Errorf("ParseNetworkSpeed(%q) = %v, want %v", in, got, want)
		}
	}
}

var sampleFiles = []File{
	{ID: 1, Quality: "sd", Height: 540, Link: "https://cdn.example/sd.mp4"},
	{ID: 2, Quality: "hd", Height: 1080, Link: "https://cdn.example/hd.mp4"},
	{ID: 3, Quality: "uhd", Height: 2160, Link: "https://cdn.example/uhd.mp4"},
}

func TestSelectFile(t *testing.T) {
	tests := []struct {
		name  string
		files []File
		speed NetworkSpeed
		want  []string // acceptable tiers
	}{
		{"fast picks uhd or hd", sampleFiles, SpeedFast, []string{"uhd", "hd"}},
		{"medium picks hd or sd", sampleFiles, SpeedMedium, []string{"hd", "sd"}},
		{"slow picks sd", sampleFiles, SpeedSlow, []string{"sd"}},
		{"unknown picks sd", sampleFiles, SpeedUnknown, []string{"sd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := SelectFile(tt.files, tt.speed)
			if !ok {
				t.Fatal("expected a file")
			}
			found := false
			for _, q := range tt.want {
				if f.Quality == q {
					found = true
				}
			}
			if !found {
				t.Errorf("quality = %q, want one of %v", f.Quality, tt.want)
			}
		})
	}
}

func TestSelectFileFallsBackToTallest(t *testing.T) {
	files := []File{
		{Quality: "sd", Height: 360, Link: "a"},
		{Quality: "sd", Height: 720, Link: "b"},
		{Quality: "", Height: 480, Link: "c"},
	}
	f, ok := SelectFile(files, SpeedFast)
	if !ok {
		t.Fatal("expected a file")
	}
	if f.Link != "b" {
		t.Errorf("link = %q, want tallest file b", f.Link)
	}

	slowOnly := []File{{Quality: "hd", Height: 720, Link: "x"}, {Quality: "uhd", Height: 2160, Link: "y"}}
	f, _ = SelectFile(slowOnly, SpeedSlow)
	if f.Link != "y" {
		t.Errorf("slow fallback link = %q, want y", f.Link)
	}
}

func TestSelectFileEmpty(t *testing.T) {
	if _, ok := SelectFile(nil, SpeedFast); ok {
		t.Error("expected no file for empty list")
	}
}

func TestNewVideo(t *testing.T) {
	e := Entry{
		ID:       42,
		URL:      "https://www.pexels.com/video/42/",
		Image:    "https://images.example/42.jpg",
		Duration: 75,
		User:     &User{ID: 7, Name: "Ann", URL: "https://www.pexels.com/@ann"},
		Files:    sampleFiles,
	}
	v := NewVideo(e, SpeedSlow)
	if v.VideoFile != "https://cdn.example/sd.mp4" {
		t.Errorf("video file = %q", v.VideoFile)
	}
	if v.Quality != "sd" || v.Height != 540 {
		t.Errorf("quality/height = %q/%d", v.Quality, v.Height)
	}
	if v.FormattedDuration() != "1:15" {
		t.Errorf("duration = %q", v.FormattedDuration())
	}
	if v.User == nil || v.User.Name != "Ann" {
		t.Errorf("user = %+v", v.User)
	}

	bare := NewVideo(Entry{ID: 1}, SpeedFast)
	if bare.VideoFile != "" {
		t.Errorf("entry without files should have empty video file, got %q", bare.VideoFile)
	}
}
