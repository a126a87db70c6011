// Package buffer implements the pure, rune-accurate document model behind the
// inkwell editor.
//
// Coordinates are 0-based (Row, Col) in runes.
// Ranges are half-open selections in document coordinates: [Start, End).
// Document offsets count runes across the whole text, with each line break
// counted as a single rune.
package buffer
