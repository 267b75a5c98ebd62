package browse

import (
	"fmt"

	"github.com/anatolykoptev/go_clips/internal/catalog"
)

// LoadingState says which kind of fetch, if any, is in flight.
type LoadingState int

const (
	Idle LoadingState = iota
	Initial
	Incremental
)

func (s LoadingState) String() string {
	switch s {
	case Initial:
		return "initial"
	case Incremental:
		return "incremental"
	}
	return "idle"
}

// MarshalText encodes the state by name so the browser can switch on it.
func (s LoadingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (s *LoadingState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "initial":
		*s = Initial
	case "incremental":
		*s = Incremental
	default:
		return fmt.Errorf("unknown loading state %q", b)
	}
	return nil
}

// State is a point-in-time copy of everything the page renders.
type State struct {
	Term      string          `json:"term"`
	Query     string          `json:"query"`
	Page      int             `json:"page"`
	Videos    []catalog.Video `json:"videos"`
	HasMore   bool            `json:"has_more"`
	Loading   LoadingState    `json:"loading"`
	Error     string          `json:"error,omitempty"`
	Selected  *catalog.Video  `json:"selected,omitempty"`
	PerPage   int             `json:"per_page"`
	Skeletons int             `json:"skeletons"`
	Network   string          `json:"network"`
	Version   uint64          `json:"version"`
}
