package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/ragforge/pdfrag/types"
)

var pdfVersionRe = regexp.MustCompile(`%PDF-(\d+\.\d+)`)

// ValidatorService inspects a PDF file and produces a compliance report.
// It is the pipeline's only gate: documents whose report status is FAIL are
// never extracted.
type ValidatorService struct{}

func NewValidatorService() *ValidatorService {
	return &ValidatorService{}
}

// Validate checks the PDF at filePath and returns a validation report.
// A missing file is the caller's fault and returns types.ErrFileNotFound
// with no report. A structurally unreadable PDF is not an error: it yields
// a FAIL report with a single CRITICAL finding.
func (s *ValidatorService) Validate(filePath string) (*types.ValidationReport, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrFileNotFound, filePath)
		}
		return nil, err
	}

	report := &types.ValidationReport{Findings: []types.Finding{}}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader, err := openReader(f, stat.Size())
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			// Password-protected and not decryptable with an empty password.
			// Per policy this is informational, not a failure; page-level
			// inspection is skipped.
			report.FileInfo = s.fileInfo(filePath, stat, 0)
			report.Findings = append(report.Findings, encryptedFinding())
			report.Tally()
			return report, nil
		}
		report.Findings = append(report.Findings, types.Finding{
			Severity:       types.SeverityCritical,
			Category:       "STRUCTURE",
			Code:           "PARSE_ERROR",
			Message:        fmt.Sprintf("Failed to parse PDF: %v", err),
			Location:       "File",
			Recommendation: "Check if the file is a valid PDF.",
		})
		report.Tally()
		return report, nil
	}

	report.FileInfo = s.fileInfo(filePath, stat, 0)
	s.inspect(reader, report)
	report.Tally()
	return report, nil
}

// inspect fills page count, Info-dictionary metadata and encryption findings.
// The underlying parser panics on some malformed structures; a panic here
// downgrades to a CRITICAL parse finding instead of crashing the caller.
func (s *ValidatorService) inspect(reader *pdf.Reader, report *types.ValidationReport) {
	defer func() {
		if rec := recover(); rec != nil {
			report.Findings = append(report.Findings, types.Finding{
				Severity:       types.SeverityCritical,
				Category:       "STRUCTURE",
				Code:           "PARSE_ERROR",
				Message:        fmt.Sprintf("Failed to parse PDF: %v", rec),
				Location:       "File",
				Recommendation: "Check if the file is a valid PDF.",
			})
		}
	}()

	report.FileInfo.PageCount = reader.NumPage()

	trailer := reader.Trailer()
	if enc := trailer.Key("Encrypt"); !enc.IsNull() {
		report.Findings = append(report.Findings, encryptedFinding())
	}

	info := trailer.Key("Info")
	if !info.IsNull() {
		report.Metadata = types.DocumentInfo{
			Title:    info.Key("Title").Text(),
			Author:   info.Key("Author").Text(),
			Subject:  info.Key("Subject").Text(),
			Producer: info.Key("Producer").Text(),
			Creator:  info.Key("Creator").Text(),
		}
		if created := info.Key("CreationDate").Text(); created != "" {
			report.FileInfo.CreatedDate = created
		}
	}
}

func (s *ValidatorService) fileInfo(filePath string, stat os.FileInfo, pageCount int) *types.FileInfo {
	fi := &types.FileInfo{
		Filename:     filepath.Base(filePath),
		SizeBytes:    stat.Size(),
		PageCount:    pageCount,
		ModifiedDate: stat.ModTime().Format(time.RFC3339),
	}
	if version := readPDFVersion(filePath); version != "" {
		fi.PDFVersion = version
	}
	return fi
}

func encryptedFinding() types.Finding {
	return types.Finding{
		Severity:       types.SeverityInfo,
		Category:       "SECURITY",
		Code:           "ENCRYPTED",
		Message:        "The PDF is encrypted.",
		Location:       "Document Level",
		Recommendation: "Ensure you have the password if content extraction is needed.",
	}
}

// openReader opens the PDF with an empty user password so that files
// encrypted with a blank password remain readable.
func openReader(f *os.File, size int64) (reader *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	return pdf.NewReaderEncrypted(f, size, func() string { return "" })
}

// readPDFVersion pulls the format version out of the %PDF- header line.
func readPDFVersion(filePath string) string {
	f, err := os.Open(filePath)
	if err != nil {
		return ""
	}
	defer f.Close()

	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	if m := pdfVersionRe.FindSubmatch(buf[:n]); m != nil {
		return string(m[1])
	}
	return ""
}
