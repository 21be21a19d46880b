package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/esglens/esglens/internal/logging"
)

const fileExtension = ".json"

type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors returned by Store.
const (
	ErrNotFound   constError = "cache entry not found"
	ErrExpired    constError = "cache entry expired"
	ErrInvalidKey constError = "cache key cannot be empty"
	ErrDisabled   constError = "cache is disabled"
)

// Store is a file-backed TTL cache. A nil *Store behaves as a disabled
// cache. Safe for concurrent use.
type Store struct {
	dir    string
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	mu sync.RWMutex
}

// Stats summarizes the files currently in the store.
type Stats struct {
	Entries int
	Expired int
	Bytes   int64
}

// Open creates the directory if needed and returns a Store. A zero ttl
// keeps entries forever.
func Open(dir string, ttl time.Duration) (*Store, error) {
	if dir == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if ttl < 0 {
		return nil, fmt.Errorf("cache ttl must be >= 0, got %s", ttl)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Store{
		dir:    dir,
		ttl:    ttl,
		now:    time.Now,
		logger: logging.ComponentLogger(log.Logger, "cache"),
	}, nil
}

// Dir returns the cache directory.
func (s *Store) Dir() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// Get decodes the value stored under key into out.
func (s *Store) Get(key string, out any) error {
	if s == nil {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	path := s.path(key)

	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	if entry.ExpiredAt(s.now()) {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return ErrExpired
	}

	if err = json.Unmarshal(entry.Data, out); err != nil {
		return fmt.Errorf("failed to decode cached value: %w", err)
	}
	return nil
}

// Put stores v under key, replacing any previous value.
func (s *Store) Put(key string, v any) error {
	if s == nil {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	encoded, err := json.MarshalIndent(newEntry(key, data, s.now(), s.ttl), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(key)
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, encoded, 0600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	s.logger.Debug().Str("operation", "put").Str("key", shortKey(key)).Msg("cached value")
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	if s == nil {
		return ErrDisabled
	}
	if key == "" {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	if s == nil {
		return ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.walk(func(path string, _ *Entry) error {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(path), err)
		}
		return nil
	})
}

// Purge removes expired entries and returns how many were deleted.
// Unreadable files are skipped.
func (s *Store) Purge() (int, error) {
	if s == nil {
		return 0, ErrDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	err := s.walk(func(path string, e *Entry) error {
		if e != nil && e.ExpiredAt(now) {
			if rmErr := os.Remove(path); rmErr == nil {
				removed++
			}
		}
		return nil
	})
	if removed > 0 {
		s.logger.Info().Str("operation", "purge").Int("removed", removed).Msg("purged expired cache entries")
	}
	return removed, err
}

// Stats counts entries and their on-disk size.
func (s *Store) Stats() (Stats, error) {
	if s == nil {
		return Stats{}, ErrDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var st Stats
	now := s.now()
	err := s.walk(func(path string, e *Entry) error {
		st.Entries++
		if info, statErr := os.Stat(path); statErr == nil {
			st.Bytes += info.Size()
		}
		if e != nil && e.ExpiredAt(now) {
			st.Expired++
		}
		return nil
	})
	return st, err
}

// walk calls fn for every cache file. The entry is nil when the file
// cannot be decoded.
func (s *Store) walk(fn func(path string, e *Entry) error) error {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != fileExtension {
			continue
		}
		path := filepath.Join(s.dir, de.Name())

		var entry *Entry
		if data, readErr := os.ReadFile(path); readErr == nil {
			var e Entry
			if json.Unmarshal(data, &e) == nil {
				entry = &e
			}
		}
		if err = fn(path, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(key)
	return filepath.Join(s.dir, safe+fileExtension)
}

func shortKey(key string) string {
	const n = 12
	if len(key) <= n {
		return key
	}
	return key[:n]
}
