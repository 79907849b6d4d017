package ingest

import (
	"regexp"
	"strings"
)

const (
	// DefaultChunkSize is the target span length in characters
	DefaultChunkSize = 500
	// DefaultOverlap is the number of trailing characters carried into the
	// next chunk so no semantic unit is fully cut at a boundary
	DefaultOverlap = 50
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]?`)

// Chunker splits text into bounded, overlap-preserving spans packed along
// sentence boundaries.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker creates a Chunker. Non-positive arguments fall back to defaults.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultOverlap
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

// Split returns the text of each span in document order. Every span is at
// most chunkSize+overlap characters; consecutive spans share the overlap tail.
func (c *Chunker) Split(text string) []string {
	sentences := sentencePattern.FindAllString(text, -1)

	var spans []string
	var current strings.Builder

	flush := func() string {
		span := strings.TrimSpace(current.String())
		if span != "" {
			spans = append(spans, span)
		}
		return span
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(sentence) > c.chunkSize {
			span := flush()
			current.Reset()

			// carry the tail of the previous span for context continuity
			if len(span) > c.overlap {
				current.WriteString(span[len(span)-c.overlap:])
				current.WriteString(" ")
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
	}
	flush()

	return spans
}
