// Package input loads source files for highlighting.
package input

import (
	"bytes"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// ErrBinary marks files that look like binary data; occurrence rows
// and columns are only meaningful for text.
var ErrBinary = errors.New("binary file")

// binarySniffLen bounds how much of the file the NUL check inspects.
const binarySniffLen = 8192

// ReadSource reads path and normalizes CRLF line endings, keeping row
// numbers stable across platforms.
func ReadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if looksBinary(data) {
		return "", errors.Errorf("%s: %w", path, ErrBinary)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

func looksBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
