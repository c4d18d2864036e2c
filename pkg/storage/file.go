package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File is an Adapter backed by a single JSON file under the application's
// state directory. It is the durable slice a CLI process rehydrates from on
// start, and multiple processes may share it.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile creates a file adapter at path, creating the parent directory if
// needed. The file itself is created lazily on first write.
func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &File{path: path}, nil
}

// Get returns the value stored under key.
func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	value, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key, writing the file before returning.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

// Delete removes the given keys. Missing keys are not an error.
func (f *File) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(values, key)
	}
	return f.save(values)
}

// Watch reports writes to the backing file made by other processes. The
// watcher is released when ctx is canceled.
func (f *File) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file: editors and atomic writers
	// replace the inode, which would silently detach a file-level watch.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch state directory: %w", err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != f.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					select {
					case changes <- struct{}{}:
					default:
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return changes, nil
}

// Path returns the location of the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("state file %s is corrupt: %w", f.path, err)
	}
	return values, nil
}

func (f *File) save(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}
