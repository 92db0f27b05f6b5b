// Package rawcache persists raw fetched provider data between runs, one
// artifact per source, so repeated analysis does not re-hit the providers.
package rawcache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/fantalab/listone/internal/domain/player"
)

// artifact is the on-disk shape of one source's raw dataset.
type artifact struct {
	Source    player.Source      `json:"source"`
	FetchedAt time.Time          `json:"fetched_at"`
	Records   []player.RawRecord `json:"records"`
}

// Store reads and writes per-source cache artifacts under a data
// directory. Writers hold a per-source lock and replace the artifact
// atomically via temp file + rename, so a crashed run never leaves a
// half-written artifact behind.
type Store struct {
	dir   string
	mu    sync.Mutex
	locks map[player.Source]*sync.Mutex
	now   func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		locks: make(map[player.Source]*sync.Mutex),
		now:   time.Now,
	}
}

func (s *Store) path(src player.Source) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_raw.json", src))
}

func (s *Store) sourceLock(src player.Source) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[src]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[src] = lock
	}
	return lock
}

// Load returns the cached records for a source and when they were fetched.
// ok is false when no artifact exists.
func (s *Store) Load(src player.Source) ([]player.RawRecord, time.Time, bool, error) {
	raw, err := os.ReadFile(s.path(src))
	if os.IsNotExist(err) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("read cache artifact for %s: %w", src, err)
	}

	var art artifact
	if err := sonic.Unmarshal(raw, &art); err != nil {
		return nil, time.Time{}, false, fmt.Errorf("decode cache artifact for %s: %w", src, err)
	}

	return art.Records, art.FetchedAt, true, nil
}

// Fresh reports whether a usable artifact newer than maxAge exists.
func (s *Store) Fresh(src player.Source, maxAge time.Duration) bool {
	_, fetchedAt, ok, err := s.Load(src)
	if err != nil || !ok {
		return false
	}
	return s.now().Sub(fetchedAt) <= maxAge
}

// Save replaces the artifact for a source.
func (s *Store) Save(src player.Source, records []player.RawRecord) error {
	lock := s.sourceLock(src)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	raw, err := sonic.Marshal(artifact{
		Source:    src,
		FetchedAt: s.now().UTC(),
		Records:   records,
	})
	if err != nil {
		return fmt.Errorf("encode cache artifact for %s: %w", src, err)
	}

	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".%s_raw-*", src))
	if err != nil {
		return fmt.Errorf("create temp artifact for %s: %w", src, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp artifact for %s: %w", src, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp artifact for %s: %w", src, err)
	}
	if err := os.Rename(tmpName, s.path(src)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("publish cache artifact for %s: %w", src, err)
	}

	return nil
}

// Stat describes one source's cache artifact for status reporting.
type Stat struct {
	Source    player.Source
	Exists    bool
	SizeBytes int64
	FetchedAt time.Time
	Records   int
}

// Describe inspects the artifact for a source without failing on decode
// problems; a corrupt artifact reports as missing.
func (s *Store) Describe(src player.Source) Stat {
	stat := Stat{Source: src}

	info, err := os.Stat(s.path(src))
	if err != nil {
		return stat
	}

	records, fetchedAt, ok, err := s.Load(src)
	if err != nil || !ok {
		return stat
	}

	stat.Exists = true
	stat.SizeBytes = info.Size()
	stat.FetchedAt = fetchedAt
	stat.Records = len(records)
	return stat
}
