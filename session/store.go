package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// TokenFilename is the name of the session file inside the dsc config directory.
	TokenFilename = "dsc-token.json"

	configDirName = "dsc"
)

// Store persists a single session record.
type Store interface {
	Load() (*Record, error)
	// Save reports whether the record was written. A write skipped because
	// another process holds the lock is not an error.
	Save(rec *Record) (bool, error)
	Delete() error
	Path() string
}

// FileStore keeps the session record as JSON in one file, coordinating with
// other processes through advisory locks.
type FileStore struct {
	path string
	log  zerolog.Logger
}

// DefaultTokenFile returns <user config dir>/dsc/dsc-token.json.
func DefaultTokenFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%w: no config directory: %w", ErrStoreIO, err)
	}
	return filepath.Join(dir, configDirName, TokenFilename), nil
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string, log zerolog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the session record under a shared lock.
// A missing file yields ErrNotLoggedIn.
func (s *FileStore) Load() (*Record, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("%w: reading session file at %s: %w", ErrStoreIO, s.path, err)
	}

	lock, err := acquireSharedLock(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
	defer s.releaseLock(lock)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("%w: reading session file at %s: %w", ErrStoreIO, s.path, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStoreCorrupt, s.path, err)
	}
	return &rec, nil
}

// Save replaces the session file with rec. If another process holds the
// lock the write is skipped and Save returns false: that process is already
// updating the session and the caller still has the fresh token in memory.
func (s *FileStore) Save(rec *Record) (bool, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false, fmt.Errorf("%w: creating directory %s: %w", ErrStoreIO, dir, err)
	}

	lock, err := tryExclusiveLock(s.path)
	if err != nil {
		if errors.Is(err, ErrLockBusy) {
			s.log.Debug().Str("path", s.path).Msg("could not obtain write lock, not storing session")
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrStoreIO, err)
	}
	defer s.releaseLock(lock)

	s.log.Debug().Str("path", s.path).Msg("storing session")

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return false, fmt.Errorf("%w: encoding session: %w", ErrStoreIO, err)
	}

	// Write to temp file first (atomic write pattern)
	tempFile := s.path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return false, fmt.Errorf("%w: failed to write temp file: %w", ErrStoreIO, err)
	}

	if err := os.Rename(tempFile, s.path); err != nil {
		if removeErr := os.Remove(tempFile); removeErr != nil {
			return false, fmt.Errorf(
				"%w: failed to rename temp file: %v; additionally failed to remove temp file: %w",
				ErrStoreIO,
				err,
				removeErr,
			)
		}
		return false, fmt.Errorf("%w: failed to rename temp file: %w", ErrStoreIO, err)
	}
	return true, nil
}

// Delete removes the session file. A missing file is not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: deleting session file at %s: %w", ErrStoreIO, s.path, err)
	}
	return nil
}

func (s *FileStore) releaseLock(lock *fileLock) {
	if err := lock.release(); err != nil {
		s.log.Warn().Err(err).Str("path", lock.lockPath).Msg("failed to release lock")
	}
}
