package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ragforge/pdfrag/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWellFormedPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	writeTestPDF(t, path, []string{"page one", "page two", "page three"})

	s := NewValidatorService()
	report, err := s.Validate(path)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, types.ValidationPass, report.Status)
	assert.Empty(t, report.Findings)
	assert.Equal(t, 0, report.Summary.CriticalErrors)
	assert.Equal(t, 0, report.Summary.Errors)

	require.NotNil(t, report.FileInfo)
	assert.Equal(t, "report.pdf", report.FileInfo.Filename)
	assert.Equal(t, 3, report.FileInfo.PageCount)
	assert.Equal(t, "1.4", report.FileInfo.PDFVersion)
	assert.NotEmpty(t, report.FileInfo.ModifiedDate)
	assert.NotEmpty(t, report.FileInfo.CreatedDate)

	assert.Equal(t, "Test Document", report.Metadata.Title)
	assert.Equal(t, "Test Suite", report.Metadata.Author)
	assert.Equal(t, "test producer", report.Metadata.Producer)
}

func TestValidateMissingFile(t *testing.T) {
	s := NewValidatorService()
	report, err := s.Validate(filepath.Join(t.TempDir(), "does-not-exist.pdf"))

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrFileNotFound)
	assert.Nil(t, report)
}

func TestValidateJunkFileFailsWithoutError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all, just bytes"), 0644))

	s := NewValidatorService()
	report, err := s.Validate(path)
	require.NoError(t, err, "unparseable content is a report outcome, not an error")
	require.NotNil(t, report)

	assert.Equal(t, types.ValidationFail, report.Status)
	require.NotEmpty(t, report.Findings)
	finding := report.Findings[0]
	assert.Equal(t, types.SeverityCritical, finding.Severity)
	assert.Equal(t, "STRUCTURE", finding.Category)
	assert.Equal(t, "PARSE_ERROR", finding.Code)
	assert.Equal(t, 1, report.Summary.CriticalErrors)
}

func TestValidateEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	s := NewValidatorService()
	report, err := s.Validate(path)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, types.ValidationFail, report.Status)
}

func TestValidateReportIsPerFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	bad := filepath.Join(dir, "bad.pdf")
	writeTestPDF(t, good, []string{"content"})
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0644))

	s := NewValidatorService()

	badReport, err := s.Validate(bad)
	require.NoError(t, err)
	assert.Equal(t, types.ValidationFail, badReport.Status)

	// A later validation must not inherit findings from the earlier one.
	goodReport, err := s.Validate(good)
	require.NoError(t, err)
	assert.Equal(t, types.ValidationPass, goodReport.Status)
	assert.Empty(t, goodReport.Findings)
}
