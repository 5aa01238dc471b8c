// Package scan lists the image files of a single directory
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions are the recognised image suffixes. Matching is exact and case
// sensitive, so "a.PNG" and "a.jpeg" are not images.
var Extensions = []string{".png", ".jpg"}

// LoggerFunc receives progress and warning messages from the scanner.
type LoggerFunc func(message string)

// FileItem represents a file item.
type FileItem struct {
	Path string
	Info os.FileInfo
}

// FileItems is a slice of FileItem
type FileItems []FileItem

// NewFileItem creates a new FileItem
func NewFileItem(p string, info os.FileInfo) FileItem {
	return FileItem{
		Path: p,
		Info: info,
	}
}

// Paths returns the path of every item, in order.
func (fi FileItems) Paths() []string {
	paths := make([]string, len(fi))
	for i, item := range fi {
		paths[i] = item.Path
	}
	return paths
}

// SortByPath orders the items lexicographically by full path.
func (fi FileItems) SortByPath() {
	sort.Slice(fi, func(i, j int) bool { return fi[i].Path < fi[j].Path })
}

// FileScannerImpl is the filesystem backed scanner used by the service layer.
type FileScannerImpl struct{}

// Run lists dir (not its subdirectories) and streams every image file found.
// The channel is closed once the listing is exhausted. Errors are reported
// through logger and end the scan early.
func (FileScannerImpl) Run(dir string, logger LoggerFunc) <-chan FileItem {
	out := make(chan FileItem)
	go func() {
		defer close(out)
		entries, err := os.ReadDir(dir)
		if err != nil {
			logf(logger, "unable to read directory %s: %v", dir, err)
			return
		}
		for _, e := range entries {
			if e.IsDir() || !IsImage(e.Name()) {
				continue
			}
			info, err := e.Info()
			if err != nil {
				logf(logger, "unable to stat %s: %v", e.Name(), err)
				continue
			}
			out <- NewFileItem(filepath.Join(dir, e.Name()), info)
		}
	}()
	return out
}

// Scanner streams the image files of a directory.
type Scanner interface {
	Run(dir string, logger LoggerFunc) <-chan FileItem
}

// List collects a scan of dir into a slice sorted by path. It fails if dir
// itself cannot be opened for listing, which Run only logs.
func List(dir string, s Scanner, logger LoggerFunc) (FileItems, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to read directory %s: %w", dir, err)
	}
	f.Close()
	var items FileItems
	for item := range s.Run(dir, logger) {
		items = append(items, item)
	}
	items.SortByPath()
	return items, nil
}

// IsImage checks if a file name carries one of the recognised extensions.
func IsImage(n string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(n, ext) {
			return true
		}
	}
	return false
}

func logf(logger LoggerFunc, format string, args ...interface{}) {
	if logger != nil {
		logger(fmt.Sprintf(format, args...))
	}
}
