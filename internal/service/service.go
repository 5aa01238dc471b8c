// Package service wires scanning, image loading, annotation files and the
// session database behind one type used by both the GUI and the CLI.
package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fyannotate/internal/annotation"
	"fyannotate/internal/scan"
)

// SessionStore abstracts the session DB for easier testing and decoupling.
type SessionStore interface {
	SetLastFolder(dir string) error
	LastFolder() (string, error)
	SetLastAnnotations(path string) error
	LastAnnotations() (string, error)
	SetFolderIndex(dir string, index int) error
	FolderIndex(dir string) (int, bool, error)
	Close() error
}

// FileScanner abstracts file scanning.
type FileScanner interface {
	Run(dir string, logger scan.LoggerFunc) <-chan scan.FileItem
}

// Service is the main entry point for business logic.
type Service struct {
	Session  SessionStore // may be nil, in which case nothing is remembered
	FileScan FileScanner
	Images   *ImageService
	Logger   func(string)
}

// NewService constructs a new Service.
func NewService(session SessionStore, fileScan FileScanner, logger func(string)) *Service {
	if logger == nil {
		logger = func(string) {}
	}
	return &Service{
		Session:  session,
		FileScan: fileScan,
		Images:   NewImageService(),
		Logger:   logger,
	}
}

// ListImages returns the image set of dir sorted by full path.
func (s *Service) ListImages(dir string) (scan.FileItems, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("unable to open folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	items, err := scan.List(dir, s.FileScan, func(msg string) { s.Logger(fmt.Sprintf("scan: %s", msg)) })
	if err != nil {
		return nil, err
	}
	s.Logger(fmt.Sprintf("Loaded %d images from %s", len(items), dir))
	return items, nil
}

// SaveAnnotations writes store to path and remembers the file.
func (s *Service) SaveAnnotations(path string, store annotation.Store) error {
	if path == "" {
		return errors.New("annotation path required")
	}
	if err := annotation.SaveFile(path, store); err != nil {
		return err
	}
	s.Logger(fmt.Sprintf("Saved %d boxes for %d images to %s", store.Count(), len(store), filepath.Base(path)))
	s.rememberAnnotations(path)
	return nil
}

// LoadAnnotations reads the store at path and remembers the file.
func (s *Service) LoadAnnotations(path string) (annotation.Store, error) {
	if path == "" {
		return nil, errors.New("annotation path required")
	}
	store, err := annotation.LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.Logger(fmt.Sprintf("Loaded %d boxes for %d images from %s", store.Count(), len(store), filepath.Base(path)))
	s.rememberAnnotations(path)
	return store, nil
}

// PruneAnnotations removes from store every key that is not the base name of
// a file in items. It returns the removed keys, sorted.
func (s *Service) PruneAnnotations(store annotation.Store, items scan.FileItems) []string {
	present := make(map[string]bool, len(items))
	for _, item := range items {
		present[filepath.Base(item.Path)] = true
	}
	var removed []string
	for _, key := range store.Keys() {
		if !present[key] {
			delete(store, key)
			removed = append(removed, key)
		}
	}
	return removed
}

// RecordFolder remembers dir as the last opened folder.
func (s *Service) RecordFolder(dir string) {
	if s.Session == nil {
		return
	}
	if err := s.Session.SetLastFolder(dir); err != nil {
		s.Logger(fmt.Sprintf("Failed to record folder %s: %v", dir, err))
	}
}

// RecordIndex remembers the image cursor of dir.
func (s *Service) RecordIndex(dir string, index int) {
	if s.Session == nil || dir == "" {
		return
	}
	if err := s.Session.SetFolderIndex(dir, index); err != nil {
		s.Logger(fmt.Sprintf("Failed to record index for %s: %v", dir, err))
	}
}

// RestorePoint returns the last opened folder and its cursor. ok is false when
// nothing was recorded or the folder no longer exists.
func (s *Service) RestorePoint() (dir string, index int, ok bool) {
	if s.Session == nil {
		return "", 0, false
	}
	dir, err := s.Session.LastFolder()
	if err != nil || dir == "" {
		return "", 0, false
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", 0, false
	}
	index, _, err = s.Session.FolderIndex(dir)
	if err != nil {
		s.Logger(fmt.Sprintf("Failed to read index for %s: %v", dir, err))
		index = 0
	}
	return dir, index, true
}

// LastAnnotations returns the annotation file used most recently, or "".
func (s *Service) LastAnnotations() string {
	if s.Session == nil {
		return ""
	}
	path, err := s.Session.LastAnnotations()
	if err != nil {
		return ""
	}
	return path
}

func (s *Service) rememberAnnotations(path string) {
	if s.Session == nil {
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := s.Session.SetLastAnnotations(path); err != nil {
		s.Logger(fmt.Sprintf("Failed to record annotation file %s: %v", path, err))
	}
}
