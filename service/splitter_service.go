package service

import (
	"strings"

	"github.com/ragforge/pdfrag/types"
)

// SplitterService splits a markdown document into segments at header
// boundaries, carrying the enclosing header path forward as metadata.
type SplitterService struct{}

func NewSplitterService() *SplitterService {
	return &SplitterService{}
}

// Split cuts the document strictly at level 1-3 header lines. A segment runs
// from just after a header line to just before the next header line, or to
// the end of text. Text before the first header forms a segment with no
// header path. Empty inter-header regions are dropped, never emitted as
// empty segments.
//
// The header path accumulates with standard nested-heading semantics: a new
// header at level N replaces the stored level-N header and clears all deeper
// levels.
func (s *SplitterService) Split(doc types.MarkdownDocument) []types.Segment {
	var segments []types.Segment
	headers := make(map[string]string)

	var buf []string
	bufStart := 0
	bufStarted := false

	flush := func() {
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		if content != "" {
			segments = append(segments, types.Segment{
				Content: content,
				Headers: copyHeaders(headers),
				Page:    doc.PageAt(bufStart),
			})
		}
		buf = buf[:0]
		bufStarted = false
	}

	offset := 0
	for _, line := range strings.Split(doc.Text, "\n") {
		if level, text, ok := parseHeaderLine(line); ok {
			flush()
			setHeader(headers, level, text)
		} else {
			if !bufStarted && strings.TrimSpace(line) != "" {
				bufStart = offset
				bufStarted = true
			}
			buf = append(buf, line)
		}
		offset += len(line) + 1
	}
	flush()

	return segments
}

// parseHeaderLine reports whether the line is a markdown header of level 1-3.
func parseHeaderLine(line string) (level int, text string, ok bool) {
	trimmed := strings.TrimSpace(line)
	for level = 3; level >= 1; level-- {
		marker := strings.Repeat("#", level) + " "
		if strings.HasPrefix(trimmed, marker) {
			return level, strings.TrimSpace(trimmed[len(marker):]), true
		}
	}
	return 0, "", false
}

func setHeader(headers map[string]string, level int, text string) {
	keys := []string{types.HeaderKey1, types.HeaderKey2, types.HeaderKey3}
	headers[keys[level-1]] = text
	for _, key := range keys[level:] {
		delete(headers, key)
	}
}

func copyHeaders(headers map[string]string) map[string]string {
	if len(headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	return out
}
