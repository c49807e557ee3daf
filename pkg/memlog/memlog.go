// Package memlog is an in-memory reference implementation of
// logiface.Log, useful for tests and for consumers that want log
// semantics without committing to a file. Unlike pkg/offsetlog its ids
// are a dense, 0-based sequence rather than byte offsets.
package memlog

import (
	"sync"

	"github.com/ssargent/huginn/pkg/logiface"
)

// Log is an in-memory, append-only sequence of records. It satisfies
// logiface.Log. The zero value is ready to use.
type Log struct {
	mu      sync.RWMutex
	records [][]byte
	cleared map[logiface.ID]bool
}

// New returns an empty in-memory log.
func New() *Log {
	return &Log{cleared: make(map[logiface.ID]bool)}
}

// Get returns the record at id, or ErrNotFound if id is out of range
// or was previously cleared.
func (l *Log) Get(id logiface.ID) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if id < 0 || id >= logiface.ID(len(l.records)) {
		return nil, logiface.ErrNotFound
	}
	if l.cleared[id] {
		return nil, logiface.ErrNotFound
	}
	return l.records[id], nil
}

// Append stores data and returns its new, densely-assigned id.
func (l *Log) Append(data []byte) (logiface.ID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	id := logiface.ID(len(l.records))
	l.records = append(l.records, cp)
	return id, nil
}

// Latest returns the id of the most recently appended record.
func (l *Log) Latest() (logiface.ID, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.records) == 0 {
		return 0, false
	}
	return logiface.ID(len(l.records) - 1), true
}

// Clear marks id's record as erased; subsequent Get calls for it
// return ErrNotFound. Unlike the offset log, this is cheap here since
// there's no on-disk framing to preserve.
func (l *Log) Clear(id logiface.ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 || id >= logiface.ID(len(l.records)) {
		return logiface.ErrNotFound
	}
	if l.cleared == nil {
		l.cleared = make(map[logiface.ID]bool)
	}
	l.cleared[id] = true
	l.records[id] = nil
	return nil
}

// Len returns the number of records ever appended, including cleared
// ones.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

var _ logiface.Log = (*Log)(nil)
