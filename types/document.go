package types

// Header metadata keys used by the structural splitter. The level-N header
// nearest above a segment is stored under the matching key.
const (
	HeaderKey1 = "Header 1"
	HeaderKey2 = "Header 2"
	HeaderKey3 = "Header 3"
)

// Page holds the plain text extracted from one physical PDF page.
type Page struct {
	Text     string       `json:"text"`
	Metadata PageMetadata `json:"metadata"`
}

type PageMetadata struct {
	Source     string `json:"source"`
	PageNumber int    `json:"page_number"`
	TotalPages int    `json:"total_pages"`
}

// PageSpan marks the byte offset in a markdown document where a page begins.
type PageSpan struct {
	Offset int `json:"offset"`
	Page   int `json:"page"`
}

// MarkdownDocument is the markdown rendering of an extracted document.
// Spans let later stages map a byte offset back to the source page.
type MarkdownDocument struct {
	Text   string     `json:"markdown"`
	Source string     `json:"source"`
	Spans  []PageSpan `json:"spans,omitempty"`
}

// PageAt returns the page number owning the given byte offset, or 0 when
// no span information is available.
func (d MarkdownDocument) PageAt(offset int) int {
	page := 0
	for _, span := range d.Spans {
		if span.Offset > offset {
			break
		}
		page = span.Page
	}
	return page
}

// Segment is a header-delimited slice of a markdown document.
type Segment struct {
	Content string            `json:"content"`
	Headers map[string]string `json:"headers"`
	Page    int               `json:"page,omitempty"`
}

// DocumentChunk is a final, size-bounded unit of text ready for embedding.
type DocumentChunk struct {
	Content  string        `json:"content"`
	Metadata ChunkMetadata `json:"metadata"`
}

type ChunkMetadata struct {
	Headers map[string]string `json:"headers,omitempty"`
	Page    int               `json:"page,omitempty"`
	Source  string            `json:"source,omitempty"`
}
