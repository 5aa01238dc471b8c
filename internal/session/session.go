// Package session remembers where the user left off between runs using a
// BoltDB file: the last opened folder, the last annotation file and the image
// cursor of every folder that has been visited.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	dbFileName        = "fyannotate_session.db"
	appName           = "fyannotate"
	SettingsBucket    = "Settings"    // Bucket name for single valued settings.
	FolderIndexBucket = "FolderIndex" // Bucket name for folder path to image index mapping.

	// lockTimeout bounds the wait for the file lock held by another process.
	lockTimeout = time.Second

	keyLastFolder      = "lastFolder"
	keyLastAnnotations = "lastAnnotations"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// DB manages the session database.
type DB struct {
	db     *bolt.DB
	path   string
	logger LoggerFunc
}

// DefaultPath returns the session file location inside the user config
// directory, creating the application folder if needed.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return dbFileName, nil
	}
	appConfigDir := filepath.Join(configDir, appName)
	if err := os.MkdirAll(appConfigDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", appConfigDir, err)
	}
	return filepath.Join(appConfigDir, dbFileName), nil
}

// Open creates or opens the session database. An empty dbPath selects
// DefaultPath.
func Open(dbPath string, logger LoggerFunc) (*DB, error) {
	if dbPath == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}
	if logger != nil {
		logger(fmt.Sprintf("Using session database at: %s", dbPath))
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{SettingsBucket, FolderIndexBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db: db, path: dbPath, logger: logger}, nil
}

// Path returns the database file path.
func (s *DB) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *DB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *DB) putSetting(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(SettingsBucket)).Put([]byte(key), []byte(value))
	})
}

func (s *DB) getSetting(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(SettingsBucket)).Get([]byte(key)); v != nil {
			value = string(v)
		}
		return nil
	})
	return value, err
}

// SetLastFolder records the folder most recently opened.
func (s *DB) SetLastFolder(dir string) error {
	return s.putSetting(keyLastFolder, dir)
}

// LastFolder returns the folder most recently opened, or "" if none.
func (s *DB) LastFolder() (string, error) {
	return s.getSetting(keyLastFolder)
}

// SetLastAnnotations records the annotation file most recently saved or loaded.
func (s *DB) SetLastAnnotations(path string) error {
	return s.putSetting(keyLastAnnotations, path)
}

// LastAnnotations returns the annotation file most recently used, or "".
func (s *DB) LastAnnotations() (string, error) {
	return s.getSetting(keyLastAnnotations)
}

// SetFolderIndex stores the image cursor for dir.
func (s *DB) SetFolderIndex(dir string, index int) error {
	data, err := json.Marshal(index)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(FolderIndexBucket)).Put([]byte(dir), data); err != nil {
			return fmt.Errorf("failed to store index for '%s': %w", dir, err)
		}
		return nil
	})
}

// FolderIndex returns the stored cursor for dir. ok is false when dir has
// never been recorded.
func (s *DB) FolderIndex(dir string) (index int, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(FolderIndexBucket)).Get([]byte(dir))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &index); err != nil {
			return fmt.Errorf("failed to decode index for '%s': %w", dir, err)
		}
		ok = true
		return nil
	})
	return index, ok, err
}

// Folders returns every recorded folder, sorted.
func (s *DB) Folders() ([]string, error) {
	var folders []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(FolderIndexBucket)).ForEach(func(k, _ []byte) error {
			folders = append(folders, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(folders)
	return folders, nil
}
