package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"sonicpdf/logger"
)

// ErrAssetMissing is returned when a catalog entry has no file on disk.
var ErrAssetMissing = errors.New("audio asset not found")

// AssetLibrary indexes the local music and effect files and keeps the index
// fresh with a filesystem watcher, so assets can be dropped in or swapped
// without a restart. Resolve maps a catalog asset path to the URL the reader
// streams it from.
type AssetLibrary struct {
	mu      sync.RWMutex
	root    string
	urlBase string
	present map[string]struct{} // relative slash-separated paths

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewAssetLibrary scans root and starts watching it. urlBase is the public
// path prefix the files are served under, e.g. "/assets".
func NewAssetLibrary(root, urlBase string) (*AssetLibrary, error) {
	lib := &AssetLibrary{
		root:    root,
		urlBase: strings.TrimSuffix(urlBase, "/"),
		present: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	if err := lib.rescan(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create asset watcher: %w", err)
	}
	lib.watcher = watcher

	// Watch the root and each category subdirectory.
	dirs := []string{root}
	entries, _ := os.ReadDir(root)
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	for _, d := range dirs {
		if err := watcher.Add(d); err != nil {
			logger.Warn("failed to watch asset directory",
				logger.String("dir", d), logger.ErrorField(err))
		}
	}

	go lib.watch()
	return lib, nil
}

// Resolve implements the playback asset resolver: the catalog path of an
// indexed file maps to its streaming URL.
func (l *AssetLibrary) Resolve(assetPath string) (string, error) {
	l.mu.RLock()
	_, ok := l.present[assetPath]
	l.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrAssetMissing, assetPath)
	}
	return l.urlBase + "/" + assetPath, nil
}

// Root returns the directory the library serves from.
func (l *AssetLibrary) Root() string { return l.root }

// Close stops the watcher.
func (l *AssetLibrary) Close() error {
	close(l.done)
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}

// rescan rebuilds the index from disk.
func (l *AssetLibrary) rescan() error {
	present := make(map[string]struct{})
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		present[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan asset directory %s: %w", l.root, err)
	}

	l.mu.Lock()
	l.present = present
	l.mu.Unlock()
	logger.Info("asset library indexed",
		logger.String("dir", l.root), logger.Int("files", len(present)))
	return nil
}

// watch applies filesystem events to the index.
func (l *AssetLibrary) watch() {
	for {
		select {
		case <-l.done:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			rel, err := filepath.Rel(l.root, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if info, err := os.Stat(event.Name); err == nil {
					if info.IsDir() {
						// New category directory: index its contents too.
						l.watcher.Add(event.Name)
						if err := l.rescan(); err != nil {
							logger.Warn("asset rescan failed", logger.ErrorField(err))
						}
						continue
					}
					l.mu.Lock()
					l.present[rel] = struct{}{}
					l.mu.Unlock()
					logger.Debug("asset added", logger.String("asset", rel))
				}
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				l.mu.Lock()
				delete(l.present, rel)
				l.mu.Unlock()
				logger.Debug("asset removed", logger.String("asset", rel))
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("asset watcher error", logger.ErrorField(err))
		}
	}
}
