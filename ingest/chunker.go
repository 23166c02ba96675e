package ingest

import "strings"

// boundaries are tried in order when looking for a place to cut a chunk:
// paragraph, line, sentence, word. Hard character cut is the last resort.
var boundaries = []string{"\n\n", "\n", ". ", " "}

// SplitText splits text into overlapping chunks of at most size runes,
// preferring natural boundaries over hard cuts. Consecutive chunks share
// roughly overlap runes so a fact spanning a cut survives on both sides.
// Chunks are trimmed and never empty; whitespace-only input yields none.
func SplitText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}

	runes := []rune(text)
	var chunks []string

	start := 0
	for start < len(runes) {
		if len(runes)-start <= size {
			if chunk := strings.TrimSpace(string(runes[start:])); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		window := string(runes[start : start+size])
		cut := size
		for _, sep := range boundaries {
			idx := strings.LastIndex(window, sep)
			if idx < 0 {
				continue
			}
			// A boundary in the first half would make a runt chunk,
			// keep looking for a weaker separator instead.
			cutRunes := len([]rune(window[:idx+len(sep)]))
			if cutRunes > size/2 {
				cut = cutRunes
				break
			}
		}

		if chunk := strings.TrimSpace(string(runes[start : start+cut])); chunk != "" {
			chunks = append(chunks, chunk)
		}

		advance := cut - overlap
		if advance <= 0 {
			advance = cut
		}
		start += advance
	}

	return chunks
}
