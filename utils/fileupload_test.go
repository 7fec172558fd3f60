package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	// Create a buffer to write our multipart form
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	// Create form file
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	// Parse the multipart form
	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateReportFile_AcceptedFormats(t *testing.T) {
	content := []byte("fake report content")

	for _, name := range []string{"report.pdf", "scan.png", "photo.jpg", "photo.jpeg", "SCAN.PDF", "Photo.JPG"} {
		t.Run(name, func(t *testing.T) {
			fileHeader := createTestFileHeader(name, int64(len(content)), content)
			require.NotNil(t, fileHeader)
			assert.NoError(t, ValidateReportFile(fileHeader))
		})
	}
}

func TestValidateReportFile_FileTooLarge(t *testing.T) {
	// Test with file exceeding size limit (11MB)
	content := []byte("fake pdf content")
	fileHeader := createTestFileHeader("large.pdf", 11*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateReportFile(fileHeader)
	require.Error(t, err)

	uploadErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", uploadErr.Code)
	assert.Contains(t, uploadErr.Message, "10 MB")
}

func TestValidateReportFile_Empty(t *testing.T) {
	fileHeader := createTestFileHeader("empty.pdf", 0, []byte("x"))
	require.NotNil(t, fileHeader)

	err := ValidateReportFile(fileHeader)
	require.Error(t, err)
	assert.Equal(t, "EMPTY_FILE", err.(*FileUploadError).Code)
}

func TestValidateReportFile_InvalidFormats(t *testing.T) {
	content := []byte("fake content")

	for _, name := range []string{"notes.txt", "sheet.xlsx", "anim.gif", "noextension"} {
		t.Run(name, func(t *testing.T) {
			fileHeader := createTestFileHeader(name, int64(len(content)), content)
			require.NotNil(t, fileHeader)

			err := ValidateReportFile(fileHeader)
			require.Error(t, err)
			assert.Equal(t, "INVALID_FILE_FORMAT", err.(*FileUploadError).Code)
		})
	}
}

func TestReportContentType(t *testing.T) {
	ct, ok := ReportContentType("lab.PDF")
	assert.True(t, ok)
	assert.Equal(t, "application/pdf", ct)

	ct, ok = ReportContentType("lab.jpeg")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	_, ok = ReportContentType("lab.doc")
	assert.False(t, ok)
}

func TestReportKey(t *testing.T) {
	now := time.Unix(1710235800, 0)
	assert.Equal(t, "reports/1710235800_lab.pdf", ReportKey("../../etc/lab.pdf", now))
}

func TestSaveUploadedFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("%PDF-1.4 nitrogen 32")
	fileHeader := createTestFileHeader("lab.pdf", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	key, err := SaveUploadedFile(fileHeader, dir, "reports/1_lab.pdf")
	require.NoError(t, err)
	assert.Equal(t, "reports/1_lab.pdf", key)

	saved, err := os.ReadFile(filepath.Join(dir, "reports", "1_lab.pdf"))
	require.NoError(t, err)
	assert.Equal(t, content, saved)
}

func TestGetUploadURL(t *testing.T) {
	assert.Equal(t, "/api/v1/uploads/1_lab.pdf", GetUploadURL("reports/1_lab.pdf"))
	assert.Equal(t, "", GetUploadURL(""))
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{
		Code:    "TEST_ERROR",
		Message: "Test error message",
	}
	assert.Equal(t, "Test error message", err.Error())
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2024, 3, 12, 23, 0, 0, 0, time.UTC)
	number := NewOrderNumber(now)

	assert.Regexp(t, `^SQ-20240312-[0-9A-HJ-NP-Z]{8}$`, number)
	assert.NotEqual(t, number, NewOrderNumber(now))
}

func TestNewReference(t *testing.T) {
	now := time.UnixMilli(1710235800123)
	ref := NewReference("REF", now)

	assert.Regexp(t, `^REF-1710235800123-[0-9A-HJ-NP-Z]{6}$`, ref)
}
