package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "report.pdf", SanitizeFileName("report.pdf"))
	assert.Equal(t, "my_report__v2_.pdf", SanitizeFileName("my report (v2).pdf"))
	assert.Equal(t, "b_o-c_o_2025.pdf", SanitizeFileName("báo-cáo 2025.pdf"))
}

func TestGetFileNameWithoutExt(t *testing.T) {
	assert.Equal(t, "report", GetFileNameWithoutExt("/tmp/uploads/report.pdf"))
	assert.Equal(t, "archive.tar", GetFileNameWithoutExt("archive.tar.gz"))
	assert.Equal(t, "noext", GetFileNameWithoutExt("noext"))
}

func TestTimestampedFileName(t *testing.T) {
	name := TimestampedFileName("manual.pdf")
	assert.Regexp(t, regexp.MustCompile(`^manual_\d{10}\.pdf$`), name)
}

func TestCopyFileWithTimestamp(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "uploads")

	src := filepath.Join(srcDir, "doc.pdf")
	require.NoError(t, os.WriteFile(src, []byte("pdf bytes"), 0644))

	dst, err := CopyFileWithTimestamp(src, dstDir)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
	assert.Regexp(t, regexp.MustCompile(`doc_\d{10}\.pdf$`), dst)
}
