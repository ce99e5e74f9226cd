// Package loader reads the content of Full files with byte-order-mark detection.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"github.com/harrison/repoquill/internal/models"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// ContentLoader loads the text of a single entry.
// A returned *models.FileError is a per-file failure; any other error (only ever
// a context error) aborts the run.
type ContentLoader interface {
	Load(ctx context.Context, entry models.FileEntry) (models.FileContent, error)
}

// FileReader loads files from disk, decoding UTF-16/UTF-32 by BOM and falling
// back to Windows-1252 for content that is not valid UTF-8.
type FileReader struct{}

// NewFileReader creates a FileReader
func NewFileReader() *FileReader {
	return &FileReader{}
}

// Load reads and decodes entry's file
func (r *FileReader) Load(ctx context.Context, entry models.FileEntry) (models.FileContent, error) {
	if err := ctx.Err(); err != nil {
		return models.FileContent{}, err
	}

	data, err := os.ReadFile(entry.AbsolutePath)
	if err != nil {
		return models.FileContent{}, classifyReadError(entry.RelativePath, err)
	}

	text, err := Decode(data)
	if err != nil {
		return models.FileContent{}, &models.FileError{
			Path:    entry.RelativePath,
			Message: fmt.Sprintf("Unexpected error: %v", err),
		}
	}

	return models.FileContent{Entry: entry, Content: text}, nil
}

func classifyReadError(rel string, err error) *models.FileError {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &models.FileError{Path: rel, Message: "File not found"}
	case errors.Is(err, fs.ErrPermission):
		return &models.FileError{Path: rel, Message: "Access denied"}
	default:
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return &models.FileError{Path: rel, Message: fmt.Sprintf("IO error: %v", pathErr.Err)}
		}
		return &models.FileError{Path: rel, Message: fmt.Sprintf("Unexpected error: %v", err)}
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
)

// DetectEncoding returns the encoding announced by data's byte order mark, or
// nil when there is none.
func DetectEncoding(data []byte) encoding.Encoding {
	switch {
	case bytes.HasPrefix(data, bomUTF32LE):
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	case bytes.HasPrefix(data, bomUTF32BE):
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	case bytes.HasPrefix(data, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case bytes.HasPrefix(data, bomUTF8):
		return unicode.UTF8BOM
	default:
		return nil
	}
}

// Decode converts raw file bytes to a UTF-8 string. Valid UTF-8 without a BOM is
// returned unchanged.
func Decode(data []byte) (string, error) {
	if enc := DetectEncoding(data); enc != nil {
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode: %w", err)
		}
		return string(out), nil
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(out), nil
}
