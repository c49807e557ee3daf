package foreignlog

import (
	"github.com/cockroachdb/errors"

	"github.com/ssargent/huginn/pkg/logiface"
)

func isNotFound(err error) bool {
	return errors.Is(err, logiface.ErrNotFound)
}

// Iterator walks a foreign-format file forward only: unlike the native
// frame, a foreign frame carries no trailing length or backward link,
// so there is nothing to decode-backward from.
type Iterator struct {
	r      *Reader
	offset int64
}

// NewIterator returns an iterator positioned at the start of the file.
func NewIterator(r *Reader) *Iterator {
	return &Iterator{r: r, offset: 0}
}

// NewIteratorAt returns an iterator positioned so that Forward returns
// the record beginning at offset.
func NewIteratorAt(r *Reader, offset int64) *Iterator {
	return &Iterator{r: r, offset: offset}
}

// Forward decodes the frame at the iterator's current offset and
// advances past it, returning ok=false once the file is exhausted.
func (it *Iterator) Forward() (data []byte, offset int64, ok bool, err error) {
	doc, nextOff, err := it.r.decodeAt(it.offset)
	if err != nil {
		if isNotFound(err) {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}
	start := it.offset
	it.offset = nextOff
	return doc, start, true, nil
}
