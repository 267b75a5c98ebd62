package catalog

import "fmt"

// Viewport breakpoints in CSS pixels.
const (
	WideMinWidth   = 1280
	MediumMinWidth = 768
)

// Items requested per page for each viewport bucket.
const (
	WidePerPage   = 30
	MediumPerPage = 20
	NarrowPerPage = 10
)

// PerPage returns how many items to request for a viewport width.
func PerPage(width int) int {
	switch {
	case width >= WideMinWidth:
		return WidePerPage
	case width >= MediumMinWidth:
		return MediumPerPage
	}
	return NarrowPerPage
}

// SkeletonCount returns the number of placeholder tiles to draw while the
// first page loads.
func SkeletonCount(width int) int {
	switch {
	case width >= 1024:
		return 40
	case width >= MediumMinWidth:
		return 20
	}
	return 6
}

// FormatDuration renders seconds as m:ss. Negative input is treated as zero.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
