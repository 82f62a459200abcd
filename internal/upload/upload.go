// Package upload validates and reads user-supplied text files.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pscheid92/sentiscope/internal/domain"
)

// DefaultMaxBytes caps uploads when no explicit limit is configured.
const DefaultMaxBytes int64 = 1 << 20

// IsTextFile reports whether a file is acceptable by extension or MIME prefix.
func IsTextFile(filename, contentType string) bool {
	if strings.EqualFold(filepath.Ext(filename), ".txt") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.HasPrefix(mediaType, "text/")
}

// Read validates the file type and returns its content as text.
// A leading UTF-8 byte order mark is dropped.
func Read(filename, contentType string, r io.Reader, maxBytes int64) (string, error) {
	if !IsTextFile(filename, contentType) {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidFileType, filename)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrFileTooLarge, filename, maxBytes)
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrInvalidFileType, filename)
	}
	return string(data), nil
}
