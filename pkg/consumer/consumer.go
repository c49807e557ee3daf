// Package consumer defines the contract a downstream view exposes to
// receive records pumped out of a log in order. Views themselves
// (relational, full-text, key-value projections) are out of scope
// here; this package only fixes the interface pkg/driver drives.
package consumer

import "github.com/ssargent/huginn/pkg/logiface"

// Item pairs a record's log-assigned id with its payload, the unit a
// driver hands to a Sink.
type Item struct {
	ID   logiface.ID
	Data []byte
}

// Sink is a view's receiving end. A driver calls Append once per
// record, strictly in increasing id order, and consults Latest to
// learn where to resume a previously interrupted pump.
type Sink interface {
	// Append delivers one record. id is always greater than every id
	// previously passed to Append on this Sink.
	Append(id logiface.ID, data []byte) error

	// Latest returns the id of the most recently applied record, or
	// ok=false if the sink has applied nothing yet.
	Latest() (id logiface.ID, ok bool)
}

// BatchSink is implemented by sinks that can apply a contiguous run of
// records more efficiently than one Append call per record. A driver
// that detects this interface may prefer it when it has buffered more
// than one record.
type BatchSink interface {
	Sink

	// AppendBatch delivers items in order, equivalent to calling Append
	// for each item in order, but as one logical operation.
	AppendBatch(items []Item) error
}
