// Package foreignlog is a read-only decoder for the sibling frame
// format produced by an external tool. It transcodes each foreign
// record into the JSON document shape the native log's consumers
// expect, presenting the result through the same logiface.Log Get
// path — Append is unimplemented, since the format is read-only here.
package foreignlog

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/ssargent/huginn/pkg/logiface"
)

const lengthHeaderSize = 8

// keyPair is the foreign format's (hash_bytes, algorithm_name) pair,
// decoded as a 2-element CBOR array.
type keyPair struct {
	_         struct{} `cbor:",toarray"`
	Hash      []byte
	Algorithm string
}

// envelope is the supported (tag == 1) foreign payload body, decoded
// as a 6-element CBOR array: (prev_key, body, key, seq, timestamp, raw).
// Body is left as cbor.RawMessage rather than typed as a byte string:
// the producing tool (see original_source/src/go_offset_log.rs) encodes
// it as an arbitrary CBOR value, not necessarily a byte string, so
// typing it any more narrowly than "undecoded bytes" would make
// cbor.Unmarshal fail on a real foreign file whose body happens to be a
// map or array. Timestamp is likewise encoded as a float there, not an
// integer, and is converted after decoding.
type envelope struct {
	_         struct{} `cbor:",toarray"`
	PrevKey   *keyPair
	Body      cbor.RawMessage
	Key       keyPair
	Seq       uint64
	Timestamp float64
	Raw       []byte
}

// document is the transcoded shape emitted to readers.
type document struct {
	Key       string      `json:"key"`
	Value     interface{} `json:"value"`
	Timestamp int64       `json:"timestamp"`
}

// supportedTag is the only envelope tag this reader understands.
const supportedTag = 1

// KeyFormatter converts a foreign key's raw hash and algorithm name
// into the canonical legacy string form used as the transcoded
// document's "key" field. The core treats this as a pluggable
// collaborator; spec.md does not fix its output bit-exact.
type KeyFormatter func(hash []byte, algorithm string) string

// Reader decodes a foreign-format log file found at <dir>/data.
type Reader struct {
	file *os.File
	fmt  KeyFormatter

	mu         sync.Mutex
	end        int64
	hasEnd     bool
	lastOffset int64
	hasLast    bool
}

type options struct {
	keyFormatter KeyFormatter
}

// Option configures a Reader at construction time.
type Option func(*options)

// WithKeyFormatter overrides the default legacy key formatter.
func WithKeyFormatter(f KeyFormatter) Option {
	return func(o *options) { o.keyFormatter = f }
}

// Open opens the foreign-format log file named "data" inside dir.
func Open(dir string, opt ...Option) (*Reader, error) {
	o := options{keyFormatter: DefaultKeyFormatter}
	for _, fn := range opt {
		fn(&o)
	}

	path := filepath.Join(dir, "data")
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "foreignlog: opening %s", path)
	}

	return &Reader{file: file, fmt: o.keyFormatter}, nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Get decodes the frame at offset and returns its transcoded JSON
// document as UTF-8 bytes.
func (r *Reader) Get(offset logiface.ID) ([]byte, error) {
	doc, _, err := r.decodeAt(offset)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Append always fails: the foreign format is read-only here.
func (r *Reader) Append([]byte) (logiface.ID, error) {
	return 0, errors.New("foreignlog: read-only, append not supported")
}

// Clear always fails: clearing a foreign record would require
// rewriting a file format this reader does not own.
func (r *Reader) Clear(logiface.ID) error {
	return logiface.ErrClearUnsupported
}

// Latest scans the file once (there is no tail-probe: the foreign
// format carries no backward link) and returns the offset of its last
// frame, caching the result for subsequent calls.
func (r *Reader) Latest() (logiface.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasEnd {
		if err := r.scanToEndLocked(); err != nil {
			return 0, false
		}
	}
	return r.lastOffset, r.hasLast
}

// End returns the offset one past the last frame, scanning the file
// once if it hasn't been scanned yet.
func (r *Reader) End() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.hasEnd {
		if err := r.scanToEndLocked(); err != nil {
			return 0, err
		}
	}
	return r.end, nil
}

func (r *Reader) scanToEndLocked() error {
	offset := int64(0)
	last := int64(0)
	hasLast := false
	for {
		_, nextOff, err := r.decodeFrameAt(offset)
		if errors.Is(err, errFrameEOF) {
			break
		}
		if err != nil {
			return err
		}
		last = offset
		hasLast = true
		offset = nextOff
	}
	r.end = offset
	r.hasEnd = true
	r.lastOffset = last
	r.hasLast = hasLast
	return nil
}

// errFrameEOF signals "no frame begins here; we've reached the end of
// the file" as distinct from a decode failure partway through one.
var errFrameEOF = errors.New("foreignlog: no frame at offset")

func (r *Reader) decodeAt(offset int64) ([]byte, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, nextOff, err := r.decodeFrameAt(offset)
	if errors.Is(err, errFrameEOF) {
		return nil, 0, errors.Wrapf(logiface.ErrNotFound, "foreignlog: offset %d", offset)
	}
	return doc, nextOff, err
}

// decodeFrameAt decodes the foreign frame starting at offset: an
// 8-byte big-endian length, then that many payload bytes. Caller must
// hold r.mu.
func (r *Reader) decodeFrameAt(offset int64) ([]byte, int64, error) {
	head := make([]byte, lengthHeaderSize)
	n, err := r.file.ReadAt(head, offset)
	if n == 0 {
		return nil, 0, errFrameEOF
	}
	if err != nil && n < lengthHeaderSize {
		return nil, 0, errors.Wrapf(err, "foreignlog: short length header at %d", offset)
	}

	length := binary.BigEndian.Uint64(head)
	payload := make([]byte, length)
	n, err = r.file.ReadAt(payload, offset+lengthHeaderSize)
	if err != nil && int64(n) < int64(length) {
		return nil, 0, errors.Wrapf(err, "foreignlog: short payload at %d (wanted %d, got %d)", offset, length, n)
	}

	if len(payload) == 0 || payload[0] != supportedTag {
		return nil, 0, errors.Wrapf(logiface.ErrUnsupportedMessageType, "foreignlog: tag at offset %d", offset)
	}

	var env envelope
	if err := cbor.Unmarshal(payload[1:], &env); err != nil {
		return nil, 0, errors.Wrapf(err, "foreignlog: decoding envelope at %d", offset)
	}

	var value interface{}
	if err := json.Unmarshal(env.Raw, &value); err != nil {
		return nil, 0, errors.Wrapf(err, "foreignlog: parsing raw JSON at %d", offset)
	}

	legacyKey := r.fmt(env.Key.Hash, env.Key.Algorithm)
	doc, err := json.Marshal(document{Key: legacyKey, Value: value, Timestamp: int64(env.Timestamp)})
	if err != nil {
		return nil, 0, errors.Wrapf(err, "foreignlog: encoding transcoded document at %d", offset)
	}

	nextOff := offset + lengthHeaderSize + int64(length)
	return doc, nextOff, nil
}

var _ logiface.Log = (*Reader)(nil)
