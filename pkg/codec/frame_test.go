package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// byteReaderAt adapts a byte slice to io.ReaderAt, the way an *os.File does.
type byteReaderAt []byte

func (b byteReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func TestEncodeSingleShortRecord(t *testing.T) {
	frame, next, err := Encode(Width4, 0, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, int64(16), next)
	assert.Equal(t, []byte{
		0, 0, 0, 4,
		1, 2, 3, 4,
		0, 0, 0, 4,
		0, 0, 0, 16,
	}, frame)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello, offset log")
	frame, next, err := Encode(Width4, 100, payload)
	require.NoError(t, err)

	rec, gotNext, err := DecodeForward(byteReaderAt(append(make([]byte, 100), frame...)), Width4, 100)
	require.NoError(t, err)
	assert.Equal(t, payload, rec.Data)
	assert.Equal(t, int64(100), rec.Offset)
	assert.Equal(t, next, gotNext)
}

func TestEncodeThenDecodeBackwardRecoversSameOffset(t *testing.T) {
	frame, next, err := Encode(Width4, 0, []byte{9, 9, 9})
	require.NoError(t, err)

	rec, frameOffset, err := DecodeBackward(byteReaderAt(frame), Width4, next)
	require.NoError(t, err)
	assert.Equal(t, int64(0), frameOffset)
	assert.Equal(t, []byte{9, 9, 9}, rec.Data)
}

func TestTwoRecordsBackwardIteration(t *testing.T) {
	var buf bytes.Buffer
	f1, n1, err := Encode(Width4, 0, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	buf.Write(f1)
	f2, n2, err := Encode(Width4, n1, []byte{5, 6, 7, 8})
	require.NoError(t, err)
	buf.Write(f2)

	assert.Equal(t, int64(32), n2)

	data := byteReaderAt(buf.Bytes())

	rec2, off2, err := DecodeBackward(data, Width4, n2)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 6, 7, 8}, rec2.Data)
	assert.Equal(t, n1, off2)

	rec1, off1, err := DecodeBackward(data, Width4, off2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, rec1.Data)
	assert.Equal(t, int64(0), off1)
}

func TestDecodeForwardRejectsMismatchedTailLength(t *testing.T) {
	// hand-crafted: head len=8, tail len=9 (scenario 4 in spec.md §8)
	frame := []byte{
		0, 0, 0, 8,
		1, 2, 3, 4, 5, 6, 7, 8,
		0, 0, 0, 9,
		0, 0, 0, 20,
	}
	_, _, err := DecodeForward(byteReaderAt(frame), Width4, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptLogFile)
}

func TestDecodeForwardRejectsBadNextOffset(t *testing.T) {
	frame := []byte{
		0, 0, 0, 8,
		1, 2, 3, 4, 5, 6, 7, 8,
		0, 0, 0, 8,
		0, 0, 0, 21, // should be 20
	}
	_, _, err := DecodeForward(byteReaderAt(frame), Width4, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptLogFile)
}

func TestDecodeForwardTruncatedFrame(t *testing.T) {
	frame := []byte{0, 0, 0, 8, 1, 2, 3, 4, 5, 6, 7, 8, 0, 0, 0, 9, 0, 0, 0}
	_, _, err := DecodeForward(byteReaderAt(frame), Width4, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecodeBufferSizeTooSmall)
}

func TestWidth8RoundTrip(t *testing.T) {
	frame, next, err := Encode(Width8, 0, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 0, 4,
		1, 2, 3, 4,
		0, 0, 0, 4,
		0, 0, 0, 0, 0, 0, 0, 20,
	}, frame)

	rec, gotNext, err := DecodeForward(byteReaderAt(frame), Width8, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, rec.Data)
	assert.Equal(t, next, gotNext)
}

func TestFrameSize(t *testing.T) {
	assert.Equal(t, int64(16), FrameSize(Width4, 4))
	assert.Equal(t, int64(20), FrameSize(Width8, 4))
}
