package telegram

import "unicode/utf8"

// SplitChunks partitions text into pieces of at most max runes each.
// Each cut prefers the last line boundary inside the window (the
// newline stays at the end of the earlier chunk); a hard mid-line cut
// happens only when the window contains no newline at all.
// Concatenating the chunks reproduces text byte for byte.
func SplitChunks(text string, max int) []string {
	if max <= 0 || text == "" {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		runes := 0
		end := start
		lastNL := -1 // byte index just past the last newline in the window
		for end < len(text) && runes < max {
			r, size := utf8.DecodeRuneInString(text[end:])
			if r == '\n' {
				lastNL = end + size
			}
			runes++
			end += size
		}
		if end < len(text) && lastNL > start {
			end = lastNL
		}
		chunks = append(chunks, text[start:end])
		start = end
	}
	return chunks
}
