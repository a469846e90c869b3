package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/policydesk/internal/adapters/driven/filesystem/pdftest"
	"github.com/custodia-labs/policydesk/internal/core/domain"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("policy.pdf"))
	assert.True(t, IsPDF("POLICY.PDF"))
	assert.True(t, IsPDF("/tmp/a/b.Pdf"))
	assert.False(t, IsPDF("policy.docx"))
	assert.False(t, IsPDF("pdf"))
	assert.False(t, IsPDF(""))
}

func TestPageCount(t *testing.T) {
	dir := t.TempDir()

	for _, pages := range []int{1, 3, 12} {
		path := pdftest.Write(t, dir, "doc.pdf", pages)

		n, err := PageCount(path)

		require.NoError(t, err)
		assert.Equal(t, pages, n)
	}
}

func TestPageCount_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf at all"), 0o600))

	_, err := PageCount(path)

	assert.ErrorIs(t, err, ErrUnreadablePDF)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPageCount_Truncated(t *testing.T) {
	data := pdftest.Build(2)
	path := filepath.Join(t.TempDir(), "cut.pdf")
	require.NoError(t, os.WriteFile(path, data[:len(data)/2], 0o600))

	_, err := PageCount(path)

	assert.ErrorIs(t, err, ErrUnreadablePDF)
}

func TestPageCount_Missing(t *testing.T) {
	_, err := PageCount(filepath.Join(t.TempDir(), "nope.pdf"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "rider.pdf", 4)

	f, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "rider.pdf", f.Name)
	assert.Equal(t, path, f.Path)
	assert.Equal(t, 4, f.Pages)
	assert.Equal(t, int64(len(pdftest.Build(4))), f.Size)

	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
}

func TestLoad_Rejects(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))
	broken := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(broken, []byte("%PDF-1.4\nnothing else"), 0o600))
	folder := filepath.Join(dir, "folder.pdf")
	require.NoError(t, os.Mkdir(folder, 0o700))

	_, err := Load(txt)
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = Load(broken)
	assert.ErrorIs(t, err, ErrUnreadablePDF)
	assert.Contains(t, err.Error(), "broken.pdf")

	_, err = Load(folder)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Load(filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
