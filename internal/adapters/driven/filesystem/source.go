package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/policydesk/internal/core/domain"
	"github.com/custodia-labs/policydesk/internal/core/ports/driven"
	"github.com/custodia-labs/policydesk/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("file source closed")

// Source lists and watches the PDF files directly inside a directory.
// Hidden files and subdirectories are ignored.
type Source struct {
	dir string

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
	closed   bool
}

// New creates a source for dir.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Dir returns the directory being scanned.
func (s *Source) Dir() string {
	return s.dir
}

// Scan returns the PDF files in the directory sorted by name. Page counts
// are filled in when the file parses.
func (s *Source) Scan() ([]domain.UploadFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	var files []domain.UploadFile
	for _, e := range entries {
		if e.IsDir() || !candidate(e.Name()) {
			continue
		}
		if f, ok := s.describe(filepath.Join(s.dir, e.Name())); ok {
			files = append(files, f)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Watch streams additions and removals until ctx is cancelled or the
// source is closed.
func (s *Source) Watch(ctx context.Context) (<-chan driven.FileEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", s.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", s.dir, err)
	}
	s.watchers = append(s.watchers, watcher)

	events := make(chan driven.FileEvent)
	go s.loop(ctx, watcher, events)
	return events, nil
}

// Close stops every watcher. It is safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, w := range s.watchers {
		errs = append(errs, w.Close())
	}
	s.watchers = nil
	return errors.Join(errs...)
}

func (s *Source) loop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- driven.FileEvent) {
	defer close(out)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			fe, ok := s.handleFsEvent(ev)
			if !ok {
				continue
			}
			select {
			case out <- fe:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watch %s: %v", s.dir, err)
		}
	}
}

// handleFsEvent maps a raw event to a file event. Create and Write mean
// the file is (again) available; Remove and Rename mean it is gone.
func (s *Source) handleFsEvent(ev fsnotify.Event) (driven.FileEvent, bool) {
	name := filepath.Base(ev.Name)
	if !candidate(name) {
		return driven.FileEvent{}, false
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return driven.FileEvent{
			Kind: driven.FileRemoved,
			File: domain.FileFromPath(name, ev.Name, 0),
		}, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		f, ok := s.describe(ev.Name)
		if !ok {
			return driven.FileEvent{}, false
		}
		return driven.FileEvent{Kind: driven.FileAdded, File: f}, true
	default:
		return driven.FileEvent{}, false
	}
}

// describe stats path and returns it as an upload file. Directories and
// vanished files are rejected.
func (s *Source) describe(path string) (domain.UploadFile, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return domain.UploadFile{}, false
	}

	f := domain.FileFromPath(filepath.Base(path), path, info.Size())
	if pages, err := PageCount(path); err == nil {
		f.Pages = pages
	} else {
		logger.Debug("page count %s: %v", path, err)
	}
	return f, true
}

func candidate(name string) bool {
	return !strings.HasPrefix(name, ".") && IsPDF(name)
}
