package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// Store layers a MemoryCache over a DiskCache. Disk hits are promoted to
// memory; writes go to both tiers.
type Store struct {
	memory *MemoryCache
	disk   *DiskCache
	maxAge time.Duration

	mu        sync.Mutex
	hits      map[Level]int64
	misses    int64
	closeOnce sync.Once
}

// NewStore opens a two-tier store. Entries older than cfg.MaxAge are pruned
// from disk when the store opens.
func NewStore(cfg Config) (*Store, error) {
	if cfg.DiskPath == "" {
		return nil, errors.New("cache: disk path is required")
	}
	disk, err := NewDiskCache(cfg.DiskPath, cfg.DiskCapacity, cfg.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	s := &Store{
		memory: NewMemoryCache(cfg.MemoryCapacity),
		disk:   disk,
		maxAge: cfg.MaxAge,
		hits:   make(map[Level]int64),
	}
	s.Prune()
	return s, nil
}

// Get looks up key in memory, then on disk.
func (s *Store) Get(key string) ([]byte, Level, bool) {
	if data, ok := s.memory.Get(key); ok {
		s.count(LevelMemory, true)
		return data, LevelMemory, true
	}
	if data, ok := s.disk.Get(key); ok {
		s.count(LevelDisk, true)
		_ = s.memory.Put(key, data) // too large for memory is fine
		return data, LevelDisk, true
	}
	s.count(0, false)
	return nil, 0, false
}

// Put writes value to both tiers. A value that only fits on disk is not an
// error.
func (s *Store) Put(key string, value []byte) error {
	if err := s.memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return err
	}
	return s.disk.Put(key, value)
}

// Delete removes key from both tiers.
func (s *Store) Delete(key string) error {
	return errors.Join(s.memory.Delete(key), s.disk.Delete(key))
}

// Clear empties both tiers.
func (s *Store) Clear() error {
	return errors.Join(s.memory.Clear(), s.disk.Clear())
}

// Prune drops entries older than the configured max age.
func (s *Store) Prune() int {
	if s.maxAge <= 0 {
		return 0
	}
	return s.memory.Prune(s.maxAge) + s.disk.RemoveOlderThan(time.Now().Add(-s.maxAge))
}

// Stats returns per-tier statistics.
func (s *Store) Stats() map[Level]Stats {
	return map[Level]Stats{
		LevelMemory: s.memory.Stats(),
		LevelDisk:   s.disk.Stats(),
	}
}

// HitRate returns the combined hit rate across both tiers.
func (s *Store) HitRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{Hits: s.hits[LevelMemory] + s.hits[LevelDisk], Misses: s.misses}
	return st.HitRate()
}

// Close persists the disk index.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.disk.Close()
	})
	return err
}

func (s *Store) count(l Level, hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if hit {
		s.hits[l]++
	} else {
		s.misses++
	}
}
