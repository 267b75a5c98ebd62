package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// UserAgent identifies go_clips to the provider.
const UserAgent = "go_clips/1.0"

// NormQuery trims a search term; empty resolves to the configured default query.
func NormQuery(q string) string {
	q = strings.TrimSpace(q)
	if q != "" {
		return q
	}
	if Cfg.DefaultQuery != "" {
		return Cfg.DefaultQuery
	}
	return DefaultQuery
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
