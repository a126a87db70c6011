package editor

import "strings"

// virtualInsertion is view-only text drawn at a rune column of one line. The
// buffer never sees it.
type virtualInsertion struct {
	Col      int
	Text     string
	StyleKey string
}

// sanitizeSingleLine strips line breaks so an insertion cannot reflow the
// view.
func sanitizeSingleLine(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
