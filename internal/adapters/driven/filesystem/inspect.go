package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// Extension is the only file type the indexing service ingests.
const Extension = ".pdf"

var (
	// ErrNotPDF indicates a file without the .pdf extension.
	ErrNotPDF = fmt.Errorf("%w: not a PDF file", domain.ErrValidation)

	// ErrUnreadablePDF indicates a .pdf file whose structure could not be parsed.
	ErrUnreadablePDF = fmt.Errorf("%w: unreadable PDF", domain.ErrValidation)
)

// IsPDF reports whether name carries the PDF extension.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

// PageCount parses the PDF at path and returns its page count.
func PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return countPages(f, info.Size())
}

// countPages recovers from panics; the pdf reader panics on some
// truncated files.
func countPages(r io.ReaderAt, size int64) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("%w: %v", ErrUnreadablePDF, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrUnreadablePDF, err)
	}
	n = reader.NumPage()
	if n <= 0 {
		return 0, fmt.Errorf("%w: no pages", ErrUnreadablePDF)
	}
	return n, nil
}

// Load validates the file at path and returns it ready for selection.
func Load(path string) (domain.UploadFile, error) {
	if !IsPDF(path) {
		return domain.UploadFile{}, fmt.Errorf("%w: %s", ErrNotPDF, filepath.Base(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.UploadFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return domain.UploadFile{}, fmt.Errorf("%w: %s is a directory", domain.ErrValidation, path)
	}

	pages, err := PageCount(path)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return domain.UploadFile{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return domain.UploadFile{}, fmt.Errorf("read %s: %w", path, err)
	}

	file := domain.FileFromPath(filepath.Base(path), path, info.Size())
	file.Pages = pages
	return file, nil
}
