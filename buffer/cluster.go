package buffer

import "github.com/iw2rmb/inkwell/internal/grapheme"

// Cursor columns stay rune-indexed, but movement and single-character
// deletion step over whole grapheme clusters so a combining mark or a ZWJ
// sequence is never split.

// clusterStartBefore returns the start of the cluster that ends at or spans
// col.
func clusterStartBefore(line []rune, col int) int {
	for _, c := range grapheme.Clusters(line, 0, 1) {
		if c.Start < col && col <= c.End {
			return c.Start
		}
	}
	return max(col-1, 0)
}

// clusterEndAfter returns the end of the cluster that starts at or spans col.
func clusterEndAfter(line []rune, col int) int {
	for _, c := range grapheme.Clusters(line, 0, 1) {
		if c.Start <= col && col < c.End {
			return c.End
		}
	}
	return min(col+1, len(line))
}

// snapToCluster moves col back to the start of the cluster it falls inside.
func snapToCluster(line []rune, col int) int {
	col = clampInt(col, 0, len(line))
	for _, c := range grapheme.Clusters(line, 0, 1) {
		if c.Start < col && col < c.End {
			return c.Start
		}
		if c.Start >= col {
			break
		}
	}
	return col
}
