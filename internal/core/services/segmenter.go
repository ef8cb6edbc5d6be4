package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clarita-labs/clarita-cli/internal/core/domain"
)

// Segmenter splits raw text into ordered segments with character-accurate
// boundaries into the original string. Segments are immutable once created.
type Segmenter struct {
	// Paragraphs splits on blank lines instead of sentence terminators.
	Paragraphs bool
}

// NewSegmenter creates a sentence-level segmenter.
func NewSegmenter() *Segmenter {
	return &Segmenter{}
}

// Segment splits text into ordered segments tagged with the given role.
// Empty or whitespace-only text yields zero segments.
func (s *Segmenter) Segment(text string, role domain.SegmentRole) []domain.Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var spans [][2]int
	if s.Paragraphs {
		spans = paragraphSpans(text)
	} else {
		spans = sentenceSpans(text)
	}

	segments := make([]domain.Segment, 0, len(spans))
	for _, span := range spans {
		start, end := trimSpan(text, span[0], span[1])
		if start >= end {
			continue
		}
		segments = append(segments, domain.Segment{
			Role:      role,
			Index:     len(segments),
			Text:      text[start:end],
			CharStart: start,
			CharEnd:   end,
		})
	}

	return segments
}

// sentenceSpans returns raw [start,end) byte spans split on sentence
// terminators. A trailing unterminated sentence is its own span.
func sentenceSpans(text string) [][2]int {
	var spans [][2]int
	start := 0

	for i, r := range text {
		if !isSentenceTerminator(r) {
			continue
		}
		end := i + len(string(r))
		spans = append(spans, [2]int{start, end})
		start = end
	}

	if start < len(text) {
		spans = append(spans, [2]int{start, len(text)})
	}

	return spans
}

// paragraphSpans returns raw [start,end) byte spans split on blank lines.
func paragraphSpans(text string) [][2]int {
	var spans [][2]int
	start := 0

	for {
		idx := strings.Index(text[start:], "\n\n")
		if idx < 0 {
			break
		}
		spans = append(spans, [2]int{start, start + idx})
		start += idx + 2
		// Swallow additional blank lines between paragraphs
		for start < len(text) && text[start] == '\n' {
			start++
		}
	}

	if start < len(text) {
		spans = append(spans, [2]int{start, len(text)})
	}

	return spans
}

// trimSpan narrows a span to exclude surrounding whitespace.
func trimSpan(text string, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return start, end
}

func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '…', '\n':
		return true
	default:
		return false
	}
}
