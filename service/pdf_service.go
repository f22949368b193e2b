package service

import (
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ragforge/pdfrag/types"
)

// PDFService extracts per-page plain text from PDF files.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

// Extract returns one Page per physical page, 1-indexed, in page order.
// Pages with no extractable text yield an empty string rather than an error;
// a file that cannot be opened at all is a ParseError and fatal for the
// document. No OCR, column reflow or table reconstruction is attempted.
func (s *PDFService) Extract(filePath string) ([]types.Page, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return nil, &types.ParseError{Path: filePath, Err: err}
	}
	defer f.Close()

	totalPages := reader.NumPage()
	pages := make([]types.Page, 0, totalPages)
	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		text := extractPageText(reader, pageNum)
		pages = append(pages, types.Page{
			Text: cleanText(text),
			Metadata: types.PageMetadata{
				Source:     filePath,
				PageNumber: pageNum,
				TotalPages: totalPages,
			},
		})
	}
	return pages, nil
}

// extractPageText reconstructs the page as newline-separated rows. The
// row-based reading keeps line boundaries, which the markdown structurer
// depends on; when it fails the plain concatenated text is used instead.
// Parser panics on malformed pages degrade to an empty page.
func extractPageText(reader *pdf.Reader, pageNum int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		var sb strings.Builder
		for i, row := range rows {
			if i > 0 {
				sb.WriteByte('\n')
			}
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
		}
		return sb.String()
	}

	plain, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return plain
}

// cleanText strips control garbage that PDF extraction tends to leave behind.
func cleanText(text string) string {
	replacements := map[string]string{
		"\u0000": "",   // Null character
		"\ufffd": "",   // Unicode replacement character
		"\u001b": "",   // Escape character
		"\r":     "",   // Carriage return
		"\f":     "\n", // Form feed to newline
	}
	cleaned := text
	for old, repl := range replacements {
		cleaned = strings.ReplaceAll(cleaned, old, repl)
	}
	return strings.TrimSpace(cleaned)
}
