// Package offsetlog implements the append-only, self-framing,
// bidirectionally-traversable offset log described by spec.md's
// components A-C: the native frame codec (pkg/codec), the buffered
// positional I/O (pkg/fileio), and here, the engine that ties a single
// on-disk file to the logiface.Log contract.
package offsetlog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/huginn/pkg/codec"
	"github.com/ssargent/huginn/pkg/fileio"
	"github.com/ssargent/huginn/pkg/logiface"
)

// Log is a single append-only offset log file. It satisfies
// logiface.Log. A single mutex guards both the write path and the read
// cache, mirroring the teacher's LogWriter: appends are serialized
// with reads rather than run concurrently, which keeps the read cache
// and last_offset bookkeeping trivially consistent.
//
// Every write goes through fileio.WriteAt at the log's recorded end
// offset rather than through the file's shared cursor — spec.md §4.C
// requires a positional write at end_of_file, and the fd's own current
// offset (left at 0 by a reopen of an existing file) is not
// trustworthy for that.
type Log struct {
	file *os.File
	path string

	mu      sync.Mutex
	reader  *fileio.BufOffsetReader
	end     int64 // offset one past the last committed frame
	last    int64 // offset of the last committed frame's header
	hasLast bool

	readOnly bool
	opts     options
}

// Open opens (creating if necessary) the offset log file at path for
// reading and writing, recovering last_offset by probing backward from
// the file's current length.
func Open(path string, opt ...Option) (*Log, error) {
	return open(path, false, opt...)
}

// OpenReadOnly opens the offset log file at path for reading only.
// Append and AppendBatch return an error; Clear returns
// logiface.ErrClearUnsupported like any other Log.
func OpenReadOnly(path string, opt ...Option) (*Log, error) {
	return open(path, true, opt...)
}

func open(path string, readOnly bool, opt ...Option) (*Log, error) {
	o := defaultOptions()
	for _, fn := range opt {
		fn(&o)
	}
	if o.width != codec.Width4 && o.width != codec.Width8 {
		return nil, errors.Newf("offsetlog: invalid width %d", int(o.width))
	}

	flag := os.O_RDONLY
	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, errors.Wrapf(err, "offsetlog: creating directory for %s", path)
		}
		flag = os.O_CREATE | os.O_RDWR
	}

	file, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "offsetlog: opening %s", path)
	}

	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, errors.Wrapf(err, "offsetlog: stat %s", path)
	}

	l := &Log{
		file:     file,
		path:     path,
		end:      stat.Size(),
		readOnly: readOnly,
		opts:     o,
		reader:   fileio.NewBufOffsetReader(file, o.windowSize),
	}

	if err := l.recoverTail(); err != nil {
		_ = file.Close()
		return nil, err
	}

	if o.integrityCheckOpen {
		if err := l.IntegrityCheck(); err != nil {
			_ = file.Close()
			return nil, err
		}
	}

	return l, nil
}

// recoverTail establishes last_offset by decoding backward from the
// file's current length, per spec.md's open-time recovery procedure.
// An empty file has no last frame, which is not an error.
func (l *Log) recoverTail() error {
	if l.end == 0 {
		return nil
	}
	_, frameOffset, err := codec.DecodeBackward(l.file, l.opts.width, l.end)
	if err != nil {
		if l.opts.metrics != nil {
			l.opts.metrics.ObserveCorruption()
		}
		return errors.Wrapf(err, "offsetlog: recovering tail of %s", l.path)
	}
	l.last = frameOffset
	l.hasLast = true
	return nil
}

// Get retrieves the payload stored at the frame beginning at id (a
// byte offset). A negative id is rejected as ErrNotFound outright; an
// id at or past the current end of the log is not special-cased here —
// it falls through to DecodeForward, which reports it as
// ErrDecodeBufferSizeTooSmall ("reading past the end"), per spec.md §8's
// boundary behaviors.
func (l *Log) Get(id logiface.ID) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 {
		return nil, errors.Wrapf(logiface.ErrNotFound, "offsetlog: offset %d", id)
	}

	rec, _, err := codec.DecodeForward(l.reader, l.opts.width, id)
	if err != nil {
		if l.opts.metrics != nil {
			l.opts.metrics.ObserveCorruption()
		}
		return nil, err
	}
	if l.opts.metrics != nil {
		l.opts.metrics.ObserveRead()
	}
	return rec.Data, nil
}

// NextOffset decodes the frame starting at id and returns the offset
// immediately following it, without returning the payload. It exists
// so callers that only track "the last id I consumed" (pkg/driver)
// can resume an Iterator without re-fetching the payload they already
// have.
func (l *Log) NextOffset(id logiface.ID) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 || id >= l.end {
		return 0, errors.Wrapf(logiface.ErrNotFound, "offsetlog: offset %d", id)
	}
	_, nextOff, err := codec.DecodeForward(l.reader, l.opts.width, id)
	if err != nil {
		if l.opts.metrics != nil {
			l.opts.metrics.ObserveCorruption()
		}
		return 0, err
	}
	return nextOff, nil
}

// Append encodes data as a new frame at the current end of the log and
// returns the offset it was written at. On any I/O failure the log's
// in-memory end/last_offset are left exactly as they were before the
// call, so a failed Append never corrupts the log's notion of its own
// length.
func (l *Log) Append(data []byte) (logiface.ID, error) {
	if l.readOnly {
		return 0, errors.New("offsetlog: log opened read-only")
	}

	start := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	offset := l.end
	frame, nextOff, err := codec.Encode(l.opts.width, offset, data)
	if err != nil {
		return 0, err
	}

	if _, err := fileio.WriteAt(l.file, frame, offset); err != nil {
		return 0, errors.Wrapf(err, "offsetlog: writing frame at %d", offset)
	}
	if err := l.file.Sync(); err != nil {
		return 0, errors.Wrapf(err, "offsetlog: fsync after frame at %d", offset)
	}

	l.end = nextOff
	l.last = offset
	l.hasLast = true
	l.reader.Invalidate()

	if l.opts.metrics != nil {
		l.opts.metrics.ObserveAppend(len(data), time.Since(start))
	}

	return offset, nil
}

// AppendBatch writes every record in data as a contiguous run of
// frames via a single positional write at the batch's starting offset,
// returning each record's offset in order. On any I/O error the
// in-memory end/last_offset are left unchanged — they only advance
// after the whole batch has been written and synced.
func (l *Log) AppendBatch(data [][]byte) ([]logiface.ID, error) {
	if l.readOnly {
		return nil, errors.New("offsetlog: log opened read-only")
	}
	if len(data) == 0 {
		return nil, nil
	}

	start := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]logiface.ID, len(data))
	batchStart := l.end
	offset := batchStart
	totalBytes := 0
	var buf []byte

	for i, payload := range data {
		frame, nextOff, err := codec.Encode(l.opts.width, offset, payload)
		if err != nil {
			return nil, err
		}
		buf = append(buf, frame...)
		ids[i] = offset
		totalBytes += len(payload)
		offset = nextOff
	}

	if _, err := fileio.WriteAt(l.file, buf, batchStart); err != nil {
		return nil, errors.Wrapf(err, "offsetlog: writing batch at %d", batchStart)
	}
	if err := l.file.Sync(); err != nil {
		return nil, errors.Wrap(err, "offsetlog: fsync after batch")
	}

	l.last = ids[len(ids)-1]
	l.end = offset
	l.hasLast = true
	l.reader.Invalidate()

	if l.opts.metrics != nil {
		l.opts.metrics.ObserveAppend(totalBytes, time.Since(start))
	}

	return ids, nil
}

// End returns the offset one past the last committed frame — the
// offset at which the next Append will write.
func (l *Log) End() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.end
}

// Latest returns the offset of the most recently appended frame.
func (l *Log) Latest() (logiface.ID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.hasLast
}

// Clear is not supported: a frame's next_off is load-bearing for
// traversal in both directions, so zeroing or truncating a frame in
// place would break every other frame's reachability.
func (l *Log) Clear(logiface.ID) error {
	return logiface.ErrClearUnsupported
}

// IntegrityCheck performs a full forward scan of the log, decoding
// every frame from offset 0 to end and returning the first corruption
// encountered, if any. It does not mutate the log; it exists for
// callers that want a stronger guarantee than the open-time tail probe
// before trusting a file (spec.md §7's opt-in tier-2 check).
func (l *Log) IntegrityCheck() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	offset := int64(0)
	for offset < l.end {
		_, nextOff, err := codec.DecodeForward(l.file, l.opts.width, offset)
		if err != nil {
			if l.opts.metrics != nil {
				l.opts.metrics.ObserveCorruption()
			}
			return errors.Wrapf(err, "offsetlog: integrity check failed at offset %d", offset)
		}
		offset = nextOff
	}
	return nil
}

// Close closes the underlying file. Every Append/AppendBatch already
// writes and syncs its frame(s) positionally before returning, so there
// is no buffered state left to flush here.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Path returns the file path this log was opened from.
func (l *Log) Path() string {
	return l.path
}

// Width reports the offset width this log was constructed with.
func (l *Log) Width() codec.Width {
	return l.opts.width
}

var _ logiface.Log = (*Log)(nil)
