package offsetlog

import (
	"io"

	"github.com/ssargent/huginn/pkg/codec"
)

// Iterator walks an offset log's frames in either direction. It holds
// a single boundary position between two adjacent frames: Forward
// decodes the frame starting at the boundary and advances past it;
// Backward decodes the frame ending at the boundary and retreats
// before it. Calling Forward then Backward (or vice versa) yields the
// same record twice, matching the cursor-between-elements semantics
// of a bidirectional list iterator.
//
// An Iterator is not safe for concurrent use, but is safe to use while
// other goroutines call Get or Append on the same Log.
type Iterator struct {
	log      *Log
	width    codec.Width
	boundary int64
}

// NewIterator returns an iterator positioned at the start of the log;
// the first Forward call returns the oldest record.
func NewIterator(log *Log) *Iterator {
	return &Iterator{log: log, width: log.opts.width, boundary: 0}
}

// NewIteratorAt returns an iterator positioned so that Forward returns
// the record beginning at offset, and Backward returns the record
// immediately preceding it.
func NewIteratorAt(log *Log, offset int64) *Iterator {
	return &Iterator{log: log, width: log.opts.width, boundary: offset}
}

// NewReverseIterator returns an iterator positioned at the end of the
// log; the first Backward call returns the newest record.
func NewReverseIterator(log *Log) *Iterator {
	return &Iterator{log: log, width: log.opts.width, boundary: log.End()}
}

// Forward decodes the frame starting at the iterator's current
// boundary and advances the boundary past it. It returns ok=false,
// with a nil error, once the boundary reaches the end of the log.
func (it *Iterator) Forward() (codec.Record, bool, error) {
	end := it.log.End()
	if it.boundary >= end {
		return codec.Record{}, false, nil
	}

	it.log.mu.Lock()
	rec, nextOff, err := codec.DecodeForward(it.log.reader, it.width, it.boundary)
	it.log.mu.Unlock()
	if err != nil {
		if it.log.opts.metrics != nil {
			it.log.opts.metrics.ObserveCorruption()
		}
		return codec.Record{}, false, err
	}

	it.boundary = nextOff
	return rec, true, nil
}

// Backward decodes the frame ending at the iterator's current
// boundary and retreats the boundary before it. It returns ok=false,
// with a nil error, once the boundary reaches the start of the log.
func (it *Iterator) Backward() (codec.Record, bool, error) {
	if it.boundary <= 0 {
		return codec.Record{}, false, nil
	}

	it.log.mu.Lock()
	rec, frameStart, err := codec.DecodeBackward(it.log.reader, it.width, it.boundary)
	it.log.mu.Unlock()
	if err == io.EOF {
		return codec.Record{}, false, nil
	}
	if err != nil {
		if it.log.opts.metrics != nil {
			it.log.opts.metrics.ObserveCorruption()
		}
		return codec.Record{}, false, err
	}

	it.boundary = frameStart
	return rec, true, nil
}

// Boundary reports the iterator's current position, usable with
// NewIteratorAt to resume traversal later.
func (it *Iterator) Boundary() int64 {
	return it.boundary
}
