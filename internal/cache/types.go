package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity.
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when cached data cannot be decoded.
	ErrCacheCorrupted = errors.New("cache data corrupted")

	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache closed")
)

// Level identifies a cache tier.
type Level int

const (
	LevelMemory Level = iota
	LevelDisk
)

func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "memory"
	case LevelDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// Stats holds cache counters.
type Stats struct {
	Capacity  int64
	Size      int64
	Items     int64
	Hits      int64
	Misses    int64
	Evictions int64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is implemented by every tier.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error
	Contains(key string) bool
	Stats() Stats
}

// Config configures a Store.
type Config struct {
	MemoryCapacity   int64 // bytes
	DiskCapacity     int64 // bytes
	DiskPath         string
	CompressionLevel int           // zstd level, 0 disables compression
	MaxAge           time.Duration // entries older than this are pruned, 0 keeps forever
}

// DefaultConfig returns a Config with 16MB of memory and 100MB of disk.
func DefaultConfig(path string) Config {
	return Config{
		MemoryCapacity:   16 << 20,
		DiskCapacity:     100 << 20,
		DiskPath:         path,
		CompressionLevel: 3,
		MaxAge:           7 * 24 * time.Hour,
	}
}

// Key derives a cache key from everything that changes synthesized audio.
func Key(text, model string, lengthScale float64, sampleRate int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%.3f|%d", model, text, lengthScale, sampleRate)))
	return hex.EncodeToString(sum[:16])
}
