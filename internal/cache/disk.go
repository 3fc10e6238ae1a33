package cache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

const (
	indexFile = "cache.index"

	// Values smaller than this are stored uncompressed.
	compressThreshold = 1024
)

// DiskCache persists values as files under a directory. Values are zstd
// compressed when that makes them smaller, and an index of entries is
// written with encoding/gob on Close so the cache survives restarts.
type DiskCache struct {
	mu       sync.Mutex
	dir      string
	capacity int64
	size     int64
	index    map[string]*diskEntry
	stats    Stats
	closed   bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

type diskEntry struct {
	File       string
	Size       int64 // bytes on disk
	Compressed bool
	Created    time.Time
	LastAccess time.Time
}

// NewDiskCache opens or creates a disk cache in dir. A compression level of
// zero disables compression.
func NewDiskCache(dir string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		dir:      dir,
		capacity: capacity,
		index:    make(map[string]*diskEntry),
	}

	if compressionLevel > 0 {
		var err error
		dc.encoder, err = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
	}
	// The decoder is always needed to read entries written at another level.
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	dc.decoder = dec

	if err := dc.loadIndex(); err != nil {
		// A corrupt index only costs us the old entries.
		dc.index = make(map[string]*diskEntry)
	}
	for _, e := range dc.index {
		dc.size += e.Size
	}

	return dc, nil
}

// Get reads and decompresses the value for key. Entries whose files are
// missing or undecodable are dropped and reported as misses.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.index[key]
	if !ok || dc.closed {
		dc.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.File)
	if err == nil && entry.Compressed {
		data, err = dc.decoder.DecodeAll(data, nil)
	}
	if err != nil {
		dc.drop(key, entry)
		dc.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	dc.stats.Hits++
	return data, true
}

// Put writes value to disk, evicting least recently accessed entries to
// stay under capacity.
func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return ErrClosed
	}

	data, compressed := value, false
	if dc.encoder != nil && len(value) > compressThreshold {
		if enc := dc.encoder.EncodeAll(value, nil); len(enc) < len(value) {
			data, compressed = enc, true
		}
	}

	n := int64(len(data))
	if n > dc.capacity {
		return ErrItemTooLarge
	}
	if existing, ok := dc.index[key]; ok {
		dc.drop(key, existing)
	}
	for dc.size+n > dc.capacity && len(dc.index) > 0 {
		dc.evictOldest()
	}

	path := dc.filePath(key)
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := time.Now()
	dc.index[key] = &diskEntry{
		File:       path,
		Size:       n,
		Compressed: compressed,
		Created:    now,
		LastAccess: now,
	}
	dc.size += n
	return nil
}

// Delete removes key and its file.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, ok := dc.index[key]; ok {
		dc.drop(key, entry)
	}
	return nil
}

// Clear removes every entry and saves the empty index.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	for key, entry := range dc.index {
		dc.drop(key, entry)
	}
	return dc.saveIndex()
}

// Contains reports whether key is indexed.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	_, ok := dc.index[key]
	return ok
}

// RemoveOlderThan drops entries created before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.index {
		if entry.Created.Before(cutoff) {
			dc.drop(key, entry)
			removed++
		}
	}
	return removed
}

func (dc *DiskCache) Stats() Stats {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	s := dc.stats
	s.Capacity = dc.capacity
	s.Size = dc.size
	s.Items = int64(len(dc.index))
	return s
}

// Close saves the index and releases the codecs. It is safe to call twice.
func (dc *DiskCache) Close() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if dc.closed {
		return nil
	}
	dc.closed = true

	err := dc.saveIndex()
	if dc.encoder != nil {
		err = errors.Join(err, dc.encoder.Close())
	}
	dc.decoder.Close()
	return err
}

// drop must be called with mu held.
func (dc *DiskCache) drop(key string, entry *diskEntry) {
	_ = os.Remove(entry.File)
	dc.size -= entry.Size
	delete(dc.index, key)
}

func (dc *DiskCache) evictOldest() {
	var oldestKey string
	var oldest *diskEntry
	for key, entry := range dc.index {
		if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
			oldestKey, oldest = key, entry
		}
	}
	if oldest != nil {
		dc.drop(oldestKey, oldest)
		dc.stats.Evictions++
	}
}

func (dc *DiskCache) filePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(dc.dir, hex.EncodeToString(sum[:16])+".pcm")
}

func (dc *DiskCache) loadIndex() error {
	f, err := os.Open(filepath.Join(dc.dir, indexFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	if err := gob.NewDecoder(f).Decode(&dc.index); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheCorrupted, err)
	}
	return nil
}

func (dc *DiskCache) saveIndex() error {
	path := filepath.Join(dc.dir, indexFile)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	err = gob.NewEncoder(f).Encode(dc.index)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
