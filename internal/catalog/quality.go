package catalog

import "strings"

// NetworkSpeed is the coarse connection estimate reported by the browser.
type NetworkSpeed int

const (
	SpeedUnknown NetworkSpeed = iota
	SpeedSlow
	SpeedMedium
	SpeedFast
)

func (s NetworkSpeed) String() string {
	switch s {
	case SpeedSlow:
		return "slow"
	case SpeedMedium:
		return "medium"
	case SpeedFast:
		return "fast"
	}
	return "unknown"
}

// ParseNetworkSpeed maps a Network Information API effectiveType (also sent
// as the ECT client hint) to a NetworkSpeed. The plain names fast, medium and
// slow are accepted too.
func ParseNetworkSpeed(effectiveType string) NetworkSpeed {
	switch strings.ToLower(strings.TrimSpace(effectiveType)) {
	case "4g", "fast":
		return SpeedFast
	case "3g", "medium":
		return SpeedMedium
	case "2g", "slow-2g", "slow":
		return SpeedSlow
	}
	return SpeedUnknown
}

// preferredTiers lists the tiers acceptable for a speed, in no particular order.
func preferredTiers(speed NetworkSpeed) []string {
	switch speed {
	case SpeedFast:
		return []string{TierUHD, TierHD}
	case SpeedMedium:
		return []string{TierHD, TierSD}
	}
	return []string{TierSD}
}

// SelectFile picks the rendition to play. The first file whose tier is
// acceptable for speed wins; otherwise the tallest file is used.
// ok is false only when files is empty.
func SelectFile(files []File, speed NetworkSpeed) (File, bool) {
	if len(files) == 0 {
		return File{}, false
	}
	tiers := preferredTiers(speed)
	for _, f := range files {
		for _, t := range tiers {
			if strings.EqualFold(f.Quality, t) {
				return f, true
			}
		}
	}
	tallest := files[0]
	for _, f := range files[1:] {
		if f.Height > tallest.Height {
			tallest = f
		}
	}
	return tallest, true
}
