package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ragforge/pdfrag/types"
)

const (
	StrategyParagraph = "paragraph"
	StrategyWindow    = "window"
	StrategySemantic  = "semantic"
)

var sentenceRe = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)

var DefaultDocumentServiceConfig = types.DocumentServiceConfig{
	MaxChunkSize: 3000,
	ChunkOverlap: 200,
	Strategy:     StrategyParagraph,
}

// ChunkerService bounds structural segments to embedding-ready chunks.
//
// The canonical strategy is "paragraph": greedy accumulation of blank-line
// delimited paragraphs up to maxChunkSize. A single paragraph longer than
// maxChunkSize is emitted whole, above the nominal bound; that is a known
// limitation of the strategy, not silently masked. "window" is a sliding
// window over characters with sentence-boundary cuts and fixed overlap and
// enforces a hard size bound. "semantic" cuts where consecutive sentences
// drift apart in embedding space and has no upper bound.
type ChunkerService struct {
	maxChunkSize int
	chunkOverlap int
	strategy     string
	embedder     Embedder // semantic strategy only
}

func NewChunkerService(config types.DocumentServiceConfig, embedder Embedder) *ChunkerService {
	if config.MaxChunkSize <= 0 {
		config.MaxChunkSize = DefaultDocumentServiceConfig.MaxChunkSize
	}
	if config.ChunkOverlap < 0 {
		config.ChunkOverlap = 0
	}
	if config.Strategy == "" {
		config.Strategy = StrategyParagraph
	}
	return &ChunkerService{
		maxChunkSize: config.MaxChunkSize,
		chunkOverlap: config.ChunkOverlap,
		strategy:     config.Strategy,
		embedder:     embedder,
	}
}

// Chunk produces final chunks for all segments, in source order. Chunk
// metadata inherits the owning segment's header path unchanged, plus the
// segment page and the document source. No chunk is empty.
func (s *ChunkerService) Chunk(ctx context.Context, segments []types.Segment, source string) ([]types.DocumentChunk, error) {
	var chunks []types.DocumentChunk
	for _, segment := range segments {
		meta := types.ChunkMetadata{
			Headers: segment.Headers,
			Page:    segment.Page,
			Source:  source,
		}

		if len(segment.Content) <= s.maxChunkSize {
			chunks = append(chunks, types.DocumentChunk{Content: segment.Content, Metadata: meta})
			continue
		}

		var (
			parts []string
			err   error
		)
		switch s.strategy {
		case StrategyParagraph:
			parts = s.splitByParagraph(segment.Content)
		case StrategyWindow:
			parts = s.splitByWindow(segment.Content)
		case StrategySemantic:
			parts, err = s.splitBySimilarity(ctx, segment.Content)
		default:
			return nil, fmt.Errorf("unknown chunk strategy: %s", s.strategy)
		}
		if err != nil {
			return nil, err
		}

		for _, part := range parts {
			chunks = append(chunks, types.DocumentChunk{Content: part, Metadata: meta})
		}
	}
	return chunks, nil
}

// splitByParagraph greedily packs blank-line delimited paragraphs. The
// buffer is flushed when appending the next paragraph plus its separating
// blank line would cross maxChunkSize.
func (s *ChunkerService) splitByParagraph(content string) []string {
	var parts []string
	current := ""
	for _, para := range strings.Split(content, "\n\n") {
		if current != "" && len(current)+len(para)+2 > s.maxChunkSize {
			if flushed := strings.TrimSpace(current); flushed != "" {
				parts = append(parts, flushed)
			}
			current = para
			continue
		}
		if current == "" {
			current = para
		} else {
			current += "\n\n" + para
		}
	}
	if flushed := strings.TrimSpace(current); flushed != "" {
		parts = append(parts, flushed)
	}
	return parts
}

// splitByWindow slides a fixed-size window over the content, preferring to
// cut at a sentence end, then at a word boundary. Consecutive windows share
// chunkOverlap characters. Header granularity inside the window is lost but
// the size bound is hard.
func (s *ChunkerService) splitByWindow(content string) []string {
	var parts []string
	pos := 0
	for pos < len(content) {
		end := pos + s.maxChunkSize
		if end >= len(content) {
			if part := strings.TrimSpace(content[pos:]); part != "" {
				parts = append(parts, part)
			}
			break
		}

		cut := end
		for i := end - 1; i > pos; i-- {
			if content[i] == '.' || content[i] == '?' || content[i] == '!' {
				cut = i + 1
				break
			}
		}
		if cut == end {
			for i := end - 1; i > pos; i-- {
				if content[i] == ' ' || content[i] == '\n' {
					cut = i
					break
				}
			}
		}

		if part := strings.TrimSpace(content[pos:cut]); part != "" {
			parts = append(parts, part)
		}

		next := cut - s.chunkOverlap
		if next <= pos {
			next = cut
		}
		pos = next
	}
	return parts
}

// splitBySimilarity embeds consecutive sentences and starts a new chunk
// wherever the similarity between neighbours drops more than one standard
// deviation below the mean. Chunks are variable-size and semantically
// coherent; there is no hard upper bound.
func (s *ChunkerService) splitBySimilarity(ctx context.Context, content string) ([]string, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("semantic chunking requires an embedder")
	}

	sentences := splitSentences(content)
	if len(sentences) < 2 {
		return []string{strings.TrimSpace(content)}, nil
	}

	vectors, err := s.embedder.EmbedTexts(ctx, sentences)
	if err != nil {
		return nil, err
	}

	sims := make([]float64, len(sentences)-1)
	for i := 0; i < len(sims); i++ {
		sims[i] = cosineSimilarity(vectors[i], vectors[i+1])
	}
	threshold := mean(sims) - stddev(sims)

	var parts []string
	var current []string
	for i, sentence := range sentences {
		current = append(current, sentence)
		if i < len(sims) && sims[i] < threshold {
			parts = append(parts, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, " "))
	}
	return parts, nil
}

func splitSentences(content string) []string {
	matches := sentenceRe.FindAllString(content, -1)
	if len(matches) == 0 {
		return []string{strings.TrimSpace(content)}
	}
	sentences := make([]string, 0, len(matches))
	for _, m := range matches {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, na, nb float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(vals)))
}
