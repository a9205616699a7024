// Dockvault - Docker Volume Backup Control Panel
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dockvault

package backup

import (
	"sync"
)

// DefaultLogCapacity is the number of entries retained by the engine log
const DefaultLogCapacity = 1000

// LogBuffer is a fixed-capacity, insertion-ordered log history.
// Once full, each append evicts the oldest entry.
type LogBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	start   int // index of the oldest entry
	size    int
}

// NewLogBuffer creates a buffer holding at most capacity entries.
// A non-positive capacity falls back to DefaultLogCapacity.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogBuffer{
		entries: make([]LogEntry, capacity),
	}
}

// Append adds an entry, evicting the oldest one when the buffer is full
func (b *LogBuffer) Append(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.entries)
	if b.size < capacity {
		b.entries[(b.start+b.size)%capacity] = entry
		b.size++
		return
	}

	b.entries[b.start] = entry
	b.start = (b.start + 1) % capacity
}

// Recent returns up to limit of the newest entries, oldest first.
// The returned slice is a copy and is never nil.
func (b *LogBuffer) Recent(limit int) []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || b.size == 0 {
		return []LogEntry{}
	}
	if limit > b.size {
		limit = b.size
	}

	capacity := len(b.entries)
	out := make([]LogEntry, limit)
	first := b.start + b.size - limit
	for i := 0; i < limit; i++ {
		out[i] = b.entries[(first+i)%capacity]
	}
	return out
}

// Len returns the number of retained entries
func (b *LogBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Capacity returns the maximum number of retained entries
func (b *LogBuffer) Capacity() int {
	return len(b.entries)
}
