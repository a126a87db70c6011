package autocomplete

import "unicode"

// IsWordRune reports whether r belongs to a word: letters, digits and '_'.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// CurrentWord returns the maximal run of word runes ending at offset.
// Offsets outside [0, len(text)] are clamped.
func CurrentWord(text []rune, offset int) string {
	start, _ := wordStart(text, offset)
	end := clampOffset(text, offset)
	return string(text[start:end])
}

// WordBounds returns the whole word around offset as [start, end). The
// autocomplete decisions only ever use the backward half.
func WordBounds(text []rune, offset int) (start, end int) {
	start, end = wordStart(text, offset)
	for end < len(text) && IsWordRune(text[end]) {
		end++
	}
	return start, end
}

func wordStart(text []rune, offset int) (int, int) {
	end := clampOffset(text, offset)
	start := end
	for start > 0 && IsWordRune(text[start-1]) {
		start--
	}
	return start, end
}

func clampOffset(text []rune, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(text) {
		return len(text)
	}
	return offset
}
