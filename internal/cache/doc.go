// Package cache stores synthesized PCM audio so repeated utterances skip
// the synthesizer. A small in-memory LRU sits in front of a zstd-compressed
// on-disk store that survives restarts.
package cache
