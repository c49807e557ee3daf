package codec

import (
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// Width is the number of bytes used to encode a frame's next_off field.
// It is chosen once, at construction time, and is not recorded in the
// file itself — a reader must already know which width a log was
// written with.
type Width int

const (
	// Width4 addresses files up to 4GiB.
	Width4 Width = 4
	// Width8 addresses files beyond 4GiB.
	Width8 Width = 8
)

func (w Width) valid() bool {
	return w == Width4 || w == Width8
}

// headerSize is the size, in bytes, of the leading length field.
const headerSize = 4

// ErrCorruptLogFile indicates that a frame's framing values disagree:
// the head and tail length fields don't match, or next_off does not
// equal offset+frame_size.
var ErrCorruptLogFile = errors.New("corrupt log file: framing values disagree")

// ErrDecodeBufferSizeTooSmall indicates a short read: fewer bytes were
// available than the frame claims to need, which conventionally means
// the file is truncated.
var ErrDecodeBufferSizeTooSmall = errors.New("decode buffer size too small")

// Record is a decoded (offset, payload) pair.
type Record struct {
	Offset int64
	Data   []byte
}

// FrameSize returns the total on-disk size of a frame wrapping a
// payload of the given length, for the given offset width.
func FrameSize(width Width, payloadLen int) int64 {
	return int64(headerSize+payloadLen+headerSize) + int64(width)
}

// Encode renders payload into a frame starting at offset, returning the
// frame bytes and the offset at which the next frame begins
// (offset + FrameSize(width, len(payload))).
//
// The caller is responsible for ensuring offset equals the file's
// current end; Encode itself has no notion of "the log".
func Encode(width Width, offset int64, payload []byte) ([]byte, int64, error) {
	if !width.valid() {
		return nil, 0, errors.Newf("codec: invalid offset width %d", int(width))
	}

	frameSize := FrameSize(width, len(payload))
	nextOff := offset + frameSize

	buf := make([]byte, frameSize)
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[headerSize:], payload)
	tailLenOff := headerSize + len(payload)
	binary.BigEndian.PutUint32(buf[tailLenOff:], uint32(len(payload)))
	if err := putWidth(buf[tailLenOff+headerSize:], width, nextOff); err != nil {
		return nil, 0, err
	}

	return buf, nextOff, nil
}

// DecodeForward decodes the frame that starts at offset, reading from r.
// It returns the decoded record and the offset of the next frame
// (which equals offset + frame_size on success).
func DecodeForward(r io.ReaderAt, width Width, offset int64) (Record, int64, error) {
	if !width.valid() {
		return Record{}, 0, errors.Newf("codec: invalid offset width %d", int(width))
	}

	head := make([]byte, headerSize)
	n, err := r.ReadAt(head, offset)
	if err != nil && err != io.EOF {
		return Record{}, 0, err
	}
	if n < headerSize {
		return Record{}, 0, errors.Wrapf(ErrDecodeBufferSizeTooSmall, "offset %d: short header read (%d/%d bytes)", offset, n, headerSize)
	}

	payloadLen := int(binary.BigEndian.Uint32(head))
	tailSize := headerSize + int(width)
	rest := make([]byte, payloadLen+tailSize)
	n, err = r.ReadAt(rest, offset+headerSize)
	if err != nil && err != io.EOF {
		return Record{}, 0, err
	}
	if n < len(rest) {
		return Record{}, 0, errors.Wrapf(ErrDecodeBufferSizeTooSmall, "offset %d: short frame read (%d/%d bytes)", offset, n, len(rest))
	}

	payload := rest[:payloadLen]
	tailLen := binary.BigEndian.Uint32(rest[payloadLen : payloadLen+headerSize])
	if int(tailLen) != payloadLen {
		return Record{}, 0, errors.Wrapf(ErrCorruptLogFile, "offset %d: tail length %d != head length %d", offset, tailLen, payloadLen)
	}

	nextOff, err := readWidth(rest[payloadLen+headerSize:], width)
	if err != nil {
		return Record{}, 0, err
	}
	wantNext := offset + FrameSize(width, payloadLen)
	if nextOff != wantNext {
		return Record{}, 0, errors.Wrapf(ErrCorruptLogFile, "offset %d: next_off %d != %d", offset, nextOff, wantNext)
	}

	data := make([]byte, payloadLen)
	copy(data, payload)

	return Record{Offset: offset, Data: data}, nextOff, nil
}

// DecodeBackward recovers the frame that ends at end — end is the
// offset immediately following the frame's last byte, i.e. the
// next_off of the frame being decoded, or the file length to reach the
// last frame in the log. It returns the decoded record and the offset
// at which that frame starts.
func DecodeBackward(r io.ReaderAt, width Width, end int64) (Record, int64, error) {
	if !width.valid() {
		return Record{}, 0, errors.Newf("codec: invalid offset width %d", int(width))
	}

	tailSize := int64(headerSize + int(width))
	if end < tailSize {
		return Record{}, 0, errors.Wrapf(ErrDecodeBufferSizeTooSmall, "end %d: too small to hold a trailing frame tail", end)
	}

	tail := make([]byte, tailSize)
	n, err := r.ReadAt(tail, end-tailSize)
	if err != nil && err != io.EOF {
		return Record{}, 0, err
	}
	if n < len(tail) {
		return Record{}, 0, errors.Wrapf(ErrDecodeBufferSizeTooSmall, "end %d: short tail read (%d/%d bytes)", end, n, len(tail))
	}

	payloadLen := int(binary.BigEndian.Uint32(tail))
	dataStart := end - tailSize - int64(payloadLen)
	frameOffset := dataStart - headerSize
	if frameOffset < 0 {
		return Record{}, 0, errors.Wrapf(ErrCorruptLogFile, "end %d: computed frame offset %d is negative", end, frameOffset)
	}

	rec, nextOff, err := DecodeForward(r, width, frameOffset)
	if err != nil {
		return Record{}, 0, err
	}
	if nextOff != end {
		return Record{}, 0, errors.Wrapf(ErrCorruptLogFile, "end %d: decoded frame at %d advances to %d instead", end, frameOffset, nextOff)
	}

	return rec, frameOffset, nil
}

func putWidth(buf []byte, width Width, v int64) error {
	switch width {
	case Width4:
		if v < 0 || v > int64(^uint32(0)) {
			return errors.Newf("codec: offset %d does not fit in a 4-byte width", v)
		}
		binary.BigEndian.PutUint32(buf, uint32(v))
	case Width8:
		binary.BigEndian.PutUint64(buf, uint64(v))
	default:
		return errors.Newf("codec: invalid offset width %d", int(width))
	}
	return nil
}

func readWidth(buf []byte, width Width) (int64, error) {
	switch width {
	case Width4:
		return int64(binary.BigEndian.Uint32(buf)), nil
	case Width8:
		return int64(binary.BigEndian.Uint64(buf)), nil
	default:
		return 0, errors.Newf("codec: invalid offset width %d", int(width))
	}
}
