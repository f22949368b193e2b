package service

import (
	"strings"
	"unicode"

	"github.com/ragforge/pdfrag/types"
)

type LineKind int

const (
	LineBody LineKind = iota
	LineHeader1
	LineHeader2
	LineHeader3
	LineListItem
)

// LineClassifier decides how a single extracted line is rendered in the
// markdown document. Implementations are interchangeable so a stronger
// (layout- or model-based) classifier can replace the default heuristic
// without touching the splitter or chunker.
type LineClassifier interface {
	Classify(line string) LineKind
}

// HeuristicLineClassifier is the canonical classifier: a short, fully
// upper-case line containing at least one letter is a level-2 header, a
// bulleted line is a list item, everything else is body text. Intentionally
// conservative and intentionally lossy with respect to the PDF's true
// visual structure.
type HeuristicLineClassifier struct {
	MaxHeaderLen int
}

func NewHeuristicLineClassifier() *HeuristicLineClassifier {
	return &HeuristicLineClassifier{MaxHeaderLen: 100}
}

func (c *HeuristicLineClassifier) Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LineBody
	}
	if _, ok := bulletText(trimmed); ok {
		return LineListItem
	}
	if len(trimmed) < c.MaxHeaderLen && isUpperCase(trimmed) {
		return LineHeader2
	}
	return LineBody
}

// bulletText strips a leading bullet marker, reporting whether one was found.
func bulletText(trimmed string) (string, bool) {
	for _, prefix := range []string{"•", "- ", "* "} {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)), true
		}
	}
	return "", false
}

func isUpperCase(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// MarkdownService converts extracted pages into a single markdown string.
type MarkdownService struct {
	classifier LineClassifier
}

func NewMarkdownService(classifier LineClassifier) *MarkdownService {
	if classifier == nil {
		classifier = NewHeuristicLineClassifier()
	}
	return &MarkdownService{classifier: classifier}
}

// Structure renders pages as markdown, one line at a time. Every character
// of input text appears in the output (header and list markup is prepended,
// never substituted) and line order is preserved. The returned document
// records the byte offset at which each page begins so later stages can
// recover page numbers.
func (s *MarkdownService) Structure(pages []types.Page) types.MarkdownDocument {
	doc := types.MarkdownDocument{}
	if len(pages) > 0 {
		doc.Source = pages[0].Metadata.Source
	}

	var sb strings.Builder
	for _, page := range pages {
		doc.Spans = append(doc.Spans, types.PageSpan{
			Offset: sb.Len(),
			Page:   page.Metadata.PageNumber,
		})
		if page.Text == "" {
			continue
		}
		for _, line := range strings.Split(page.Text, "\n") {
			s.writeLine(&sb, line)
		}
		// page break acts as a paragraph boundary
		sb.WriteByte('\n')
	}

	doc.Text = sb.String()
	return doc
}

func (s *MarkdownService) writeLine(sb *strings.Builder, line string) {
	trimmed := strings.TrimSpace(line)
	switch s.classifier.Classify(line) {
	case LineHeader1:
		sb.WriteString("\n# " + trimmed + "\n\n")
	case LineHeader2:
		sb.WriteString("\n## " + trimmed + "\n\n")
	case LineHeader3:
		sb.WriteString("\n### " + trimmed + "\n\n")
	case LineListItem:
		text, _ := bulletText(trimmed)
		sb.WriteString("- " + text + "\n")
	default:
		sb.WriteString(line + "\n")
	}
}
