package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileInbox uses one file as an action inbox. Every time a writer leaves a
// new non-empty document in the file, the inbox emits it once.
//
// The parent directory is watched rather than the file, so the file may be
// missing at start and writers may replace it by rename. By default a
// document identical to the previous one is not emitted again: a single save
// often surfaces as several write events. With Drain the file is truncated
// after each read and every write is a new document, even a repeated one.
type FileInbox struct {
	path  string
	drain bool
	last  []byte
}

// NewFileInbox creates a FileInbox for path.
func NewFileInbox(path string) *FileInbox {
	return &FileInbox{path: filepath.Clean(path)}
}

// Drain truncates the file after each document is read. It suits a single
// writer that waits for the file to empty before writing the next document.
// Must be called before Watch.
func (i *FileInbox) Drain() *FileInbox {
	i.drain = true
	return i
}

// Path returns the inbox path.
func (i *FileInbox) Path() string {
	return i.path
}

// Watch emits the current document, if any, then every new one. It fails
// when the parent directory cannot be watched.
func (i *FileInbox) Watch(ctx context.Context) (<-chan []byte, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(i.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch inbox directory %s: %w", dir, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer watcher.Close()

		emit := func() bool {
			doc := i.take()
			if doc == nil {
				return true
			}
			select {
			case out <- doc:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != i.path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !emit() {
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}

// take reads the next document, or nil when there is none to emit.
func (i *FileInbox) take() []byte {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			i.last = nil
		}
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if i.drain {
		if err := os.Truncate(i.path, 0); err != nil {
			return nil
		}
		return data
	}

	if bytes.Equal(data, i.last) {
		return nil
	}
	i.last = data
	return data
}
