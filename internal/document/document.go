// Package document extracts plain text from resume files.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotFound          = errors.New("document not found")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrParse             = errors.New("document could not be parsed")
)

const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
)

type extractFunc func(path string) ([]string, error)

var extractors = map[string]extractFunc{
	ExtPDF:  pdfPages,
	ExtDOCX: docxParagraphs,
}

// Extract returns the newline-joined text of a .pdf (per page) or .docx (per
// paragraph) file, trimmed of surrounding whitespace.
func Extract(path string) (string, error) {
	path = CleanPath(path)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	extract, ok := extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (use %s or %s)", ErrUnsupportedFormat, ext, ExtPDF, ExtDOCX)
	}

	chunks, err := extract(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}

	return strings.TrimSpace(strings.Join(chunks, "\n")), nil
}

// CleanPath trims whitespace and the quotes terminals add to dragged-in paths.
func CleanPath(path string) string {
	path = strings.TrimSpace(path)
	for _, quote := range []string{`"`, `'`} {
		if len(path) >= 2 && strings.HasPrefix(path, quote) && strings.HasSuffix(path, quote) {
			path = path[1 : len(path)-1]
		}
	}
	return strings.TrimSpace(path)
}
