package domain

import (
	"bytes"
	"io"
	"os"
)

// UploadFile is a file chosen for upload. Content is opened lazily so a
// selection can hold many files without reading them.
type UploadFile struct {
	// Name is the filename sent to the service.
	Name string

	// Path is the local path, empty for in-memory files.
	Path string

	// Size is the content length in bytes, if known.
	Size int64

	// Pages is the locally counted page count, zero when unknown.
	Pages int

	// Open returns the file content.
	Open func() (io.ReadCloser, error)
}

// FileFromPath creates an UploadFile backed by a local file.
func FileFromPath(name, path string, size int64) UploadFile {
	return UploadFile{
		Name: name,
		Path: path,
		Size: size,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// FileFromBytes creates an UploadFile backed by memory.
func FileFromBytes(name string, data []byte) UploadFile {
	return UploadFile{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// SelectionSet is the ordered set of files chosen for the next upload.
// Files are unique by name; adding a file with an existing name replaces it.
type SelectionSet struct {
	entries []selected
	serial  uint64
}

type selected struct {
	file UploadFile
	id   uint64
}

// SelectionBatch is a snapshot of the selection taken for one upload.
type SelectionBatch struct {
	Files []UploadFile
	ids   []uint64
}

// Add inserts or replaces files.
func (s *SelectionSet) Add(files ...UploadFile) {
	for _, f := range files {
		s.serial++
		entry := selected{file: f, id: s.serial}
		if i := s.index(f.Name); i >= 0 {
			s.entries[i] = entry
			continue
		}
		s.entries = append(s.entries, entry)
	}
}

// Remove drops the file with the given name. It reports whether a file was removed.
func (s *SelectionSet) Remove(name string) bool {
	i := s.index(name)
	if i < 0 {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return true
}

// Batch snapshots the current selection.
func (s *SelectionSet) Batch() SelectionBatch {
	b := SelectionBatch{
		Files: make([]UploadFile, len(s.entries)),
		ids:   make([]uint64, len(s.entries)),
	}
	for i, e := range s.entries {
		b.Files[i] = e.file
		b.ids[i] = e.id
	}
	return b
}

// RemoveBatch drops the entries captured by b. Files added or replaced
// after the batch was taken stay selected.
func (s *SelectionSet) RemoveBatch(b SelectionBatch) {
	taken := make(map[uint64]struct{}, len(b.ids))
	for _, id := range b.ids {
		taken[id] = struct{}{}
	}
	kept := s.entries[:0]
	for _, e := range s.entries {
		if _, ok := taken[e.id]; !ok {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// Clear empties the selection.
func (s *SelectionSet) Clear() {
	s.entries = nil
}

// Len returns the number of selected files.
func (s *SelectionSet) Len() int {
	return len(s.entries)
}

// IsEmpty reports whether no files are selected.
func (s *SelectionSet) IsEmpty() bool {
	return len(s.entries) == 0
}

// Contains reports whether a file with the given name is selected.
func (s *SelectionSet) Contains(name string) bool {
	return s.index(name) >= 0
}

// Files returns a copy of the selected files in insertion order.
func (s *SelectionSet) Files() []UploadFile {
	out := make([]UploadFile, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.file
	}
	return out
}

// Names returns the selected filenames in insertion order.
func (s *SelectionSet) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.file.Name
	}
	return names
}

func (s *SelectionSet) index(name string) int {
	for i, e := range s.entries {
		if e.file.Name == name {
			return i
		}
	}
	return -1
}

// UploadPhase is the state of the upload pipeline.
type UploadPhase string

// Upload phases.
const (
	UploadIdle      UploadPhase = "idle"
	UploadUploading UploadPhase = "uploading"
)

// UploadSnapshot is a consistent view of the upload pipeline state.
type UploadSnapshot struct {
	Phase     UploadPhase
	Progress  int
	Selection []string
}
