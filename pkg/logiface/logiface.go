// Package logiface defines the abstract log contract shared by every log
// variant in huginn: the on-disk offset log (pkg/offsetlog), the
// in-memory reference log (pkg/memlog), and the read-only foreign-format
// reader (pkg/foreignlog).
package logiface

import "github.com/cockroachdb/errors"

// ID identifies a record within a log. Concrete logs give it different
// meanings: the offset log uses byte offsets (sparse, monotonically
// increasing, but not consecutive), while the in-memory log uses a
// dense 0-based sequence. Consumers must not assume ids are consecutive.
type ID = int64

// Log is the contract any log variant that participates as a data
// source exposes.
type Log interface {
	// Get retrieves the payload previously stored at id. It returns
	// ErrNotFound if id is not valid for this log.
	Get(id ID) ([]byte, error)

	// Append stores data and returns its new id.
	Append(data []byte) (ID, error)

	// Latest returns the most recently appended id, or ok=false if the
	// log is empty.
	Latest() (id ID, ok bool)

	// Clear is a best-effort erasure of the payload at id. Logs that
	// cannot support this without invalidating their framing return
	// ErrClearUnsupported.
	Clear(id ID) error
}

// Sentinel errors making up the error taxonomy described in spec §7.
var (
	// ErrNotFound indicates id does not identify a record in this log.
	ErrNotFound = errors.New("log: not found")

	// ErrSequenceNotFound indicates a consumer-facing sequence id has
	// no corresponding record.
	ErrSequenceNotFound = errors.New("log: sequence not found")

	// ErrUnsupportedMessageType indicates a foreign envelope carried a
	// tag this reader does not know how to decode.
	ErrUnsupportedMessageType = errors.New("log: unsupported message type")

	// ErrClearUnsupported indicates this log variant cannot perform a
	// best-effort erasure (e.g. it is read-only).
	ErrClearUnsupported = errors.New("log: clear not supported")
)
