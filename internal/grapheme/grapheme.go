// Package grapheme groups rune-indexed lines into terminal cells.
package grapheme

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Cluster is one user-perceived character of a line.
//
// Start and End are rune columns in the source line; StartCell and Width are
// terminal cells.
type Cluster struct {
	Text      string
	Start     int
	End       int
	StartCell int
	Width     int
}

// Clusters splits line into grapheme clusters, starting at startCell. Tabs
// advance to the next multiple of tabWidth and render as spaces.
func Clusters(line []rune, startCell, tabWidth int) []Cluster {
	if len(line) == 0 {
		return nil
	}
	if tabWidth <= 0 {
		tabWidth = 4
	}

	out := make([]Cluster, 0, len(line))
	cell := startCell
	col := 0
	g := uniseg.NewGraphemes(string(line))
	for g.Next() {
		runes := g.Runes()
		c := Cluster{Text: g.Str(), Start: col, End: col + len(runes), StartCell: cell}
		if c.Text == "\t" {
			c.Width = tabWidth - (cell % tabWidth)
			c.Text = strings.Repeat(" ", c.Width)
		} else {
			c.Width = Width(c.Text)
		}
		out = append(out, c)
		cell += c.Width
		col = c.End
	}
	return out
}

// Width returns the terminal cell width of s.
func Width(s string) int {
	w := runewidth.StringWidth(s)
	if w <= 0 && s != "" {
		w = uniseg.StringWidth(s)
	}
	if w < 0 {
		return 0
	}
	return w
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	return uniseg.GraphemeClusterCount(text)
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
