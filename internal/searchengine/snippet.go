package searchengine

import (
	"sort"
	"strings"
)

// window is a half-open byte range [Start, End) within a field, used while
// building and deduplicating candidate snippet positions before rendering.
type window struct {
	Start, End int
}

// buildSnippets locates each occurrence of a query word in text, centers a
// snippetLength-byte window on it, deduplicates overlapping windows, and
// renders up to maxSnippets Snippets with matches wrapped in <mark></mark>
// (spec §4.2 step 5).
func buildSnippets(text string, words []string, snippetLength, maxSnippets int) []Snippet {
	if text == "" || len(words) == 0 || maxSnippets <= 0 {
		return nil
	}
	if snippetLength <= 0 {
		snippetLength = 200
	}

	lower := strings.ToLower(text)
	half := snippetLength / 2

	var windows []window
	for _, w := range words {
		if w == "" {
			continue
		}
		start := 0
		for {
			idx := strings.Index(lower[start:], w)
			if idx == -1 {
				break
			}
			pos := start + idx
			winStart := pos - half
			if winStart < 0 {
				winStart = 0
			}
			winEnd := pos + len(w) + half
			if winEnd > len(text) {
				winEnd = len(text)
			}
			windows = append(windows, window{Start: winStart, End: winEnd})
			start = pos + len(w)
			if start >= len(lower) {
				break
			}
		}
	}
	if len(windows) == 0 {
		return nil
	}

	windows = mergeOverlapping(windows)

	if len(windows) > maxSnippets {
		windows = windows[:maxSnippets]
	}

	out := make([]Snippet, 0, len(windows))
	for _, w := range windows {
		out = append(out, Snippet{
			Text:    highlight(text[w.Start:w.End], words),
			Start:   w.Start,
			End:     w.End,
			Context: contextWindow(text, w.Start, w.End),
		})
	}
	return out
}

// mergeOverlapping sorts windows by start offset and merges any that
// overlap or touch, so the same span of text never appears twice.
func mergeOverlapping(windows []window) []window {
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })
	merged := make([]window, 0, len(windows))
	for _, w := range windows {
		if len(merged) == 0 {
			merged = append(merged, w)
			continue
		}
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// highlight wraps every case-insensitive occurrence of each word in
// <mark>…</mark>, preserving the source casing of the matched text.
func highlight(segment string, words []string) string {
	if len(words) == 0 {
		return segment
	}
	lower := strings.ToLower(segment)
	type hit struct{ start, end int }
	var hits []hit
	for _, w := range words {
		if w == "" {
			continue
		}
		start := 0
		for {
			idx := strings.Index(lower[start:], w)
			if idx == -1 {
				break
			}
			pos := start + idx
			hits = append(hits, hit{start: pos, end: pos + len(w)})
			start = pos + len(w)
			if start >= len(lower) {
				break
			}
		}
	}
	if len(hits) == 0 {
		return segment
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	var b strings.Builder
	cursor := 0
	lastEnd := -1
	for _, h := range hits {
		if h.start < lastEnd {
			continue // overlapping with previous highlighted span
		}
		b.WriteString(segment[cursor:h.start])
		b.WriteString("<mark>")
		b.WriteString(segment[h.start:h.end])
		b.WriteString("</mark>")
		cursor = h.end
		lastEnd = h.end
	}
	b.WriteString(segment[cursor:])
	return b.String()
}

// contextWindow returns a plain, unhighlighted ±50-byte window around the
// snippet's matched span, clipped to the field bounds.
func contextWindow(text string, start, end int) string {
	const radius = 50
	ctxStart := start - radius
	if ctxStart < 0 {
		ctxStart = 0
	}
	ctxEnd := end + radius
	if ctxEnd > len(text) {
		ctxEnd = len(text)
	}
	return text[ctxStart:ctxEnd]
}
