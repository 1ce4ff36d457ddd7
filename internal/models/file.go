package models

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// ContentTypePDF is the MIME type of PDF documents.
	ContentTypePDF = "application/pdf"
	// ContentTypeDocx is the MIME type of Word documents.
	ContentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	// ContentTypeOctetStream is used when nothing better is known.
	ContentTypeOctetStream = "application/octet-stream"
)

// File is a named binary object. Data is owned by the File and never shared
// with the buffer it was read from.
type File struct {
	Name        string `form:"name" validate:"required"`
	ContentType string `form:"content_type"`
	Data        []byte `form:"data" validate:"required,min=1"`
}

// NewFile copies data into a new File.
func NewFile(name, contentType string, data []byte) File {
	owned := make([]byte, len(data))
	copy(owned, data)
	return File{Name: name, ContentType: contentType, Data: owned}
}

// Size returns the number of bytes held by the file.
func (f File) Size() int {
	return len(f.Data)
}

// IsZero reports whether the file carries neither a name nor content.
func (f File) IsZero() bool {
	return f.Name == "" && len(f.Data) == 0
}

// LoadFile reads a file from disk and sniffs its content type.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}

	contentType := mimetype.Detect(data).String()
	if contentType == "" {
		contentType = ContentTypeOctetStream
	}

	return File{Name: filepath.Base(path), ContentType: contentType, Data: data}, nil
}

// SampleFileBundle holds the three sample documents shipped by the service.
type SampleFileBundle struct {
	Assignment File
	Solution   File
	Submission File
}

// Files returns the bundle members in assignment, solution, submission order.
func (b SampleFileBundle) Files() []File {
	return []File{b.Assignment, b.Solution, b.Submission}
}
