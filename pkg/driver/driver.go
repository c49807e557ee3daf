// Package driver pumps records out of a log, in strictly monotonic id
// order, into a consumer.Sink — the glue between component C/D (the
// offset log and its iterator) and component G (the abstract consumer
// contract). It is the only part of the core allowed to know about
// both sides at once.
package driver

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ssargent/huginn/pkg/consumer"
	"github.com/ssargent/huginn/pkg/offsetlog"
)

// BatchSize controls how many records Pump accumulates before handing
// them to a BatchSink in one call. It has no effect on a plain Sink,
// which always receives one record per Append call.
const BatchSize = 128

// Pump drives every record from src into sink, starting after
// whatever sink.Latest() reports, and stopping once src is exhausted
// or ctx is cancelled. It returns nil once it has delivered everything
// currently in src; the caller decides whether and when to call Pump
// again for records appended afterward.
func Pump(ctx context.Context, src *offsetlog.Log, sink consumer.Sink) error {
	it, err := ResumeIterator(src, sink)
	if err != nil {
		return errors.Wrap(err, "driver: resuming iterator")
	}

	batch, isBatch := sink.(consumer.BatchSink)
	if isBatch {
		return pumpBatched(ctx, it, batch)
	}
	return pumpOne(ctx, it, sink)
}

func pumpOne(ctx context.Context, it *offsetlog.Iterator, sink consumer.Sink) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, ok, err := it.Forward()
		if err != nil {
			return errors.Wrap(err, "driver: reading next record")
		}
		if !ok {
			return nil
		}
		if err := sink.Append(rec.Offset, rec.Data); err != nil {
			return errors.Wrapf(err, "driver: sink rejected record at %d", rec.Offset)
		}
	}
}

func pumpBatched(ctx context.Context, it *offsetlog.Iterator, sink consumer.BatchSink) error {
	var batch []consumer.Item
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.AppendBatch(batch); err != nil {
			return errors.Wrap(err, "driver: sink rejected batch")
		}
		batch = batch[:0]
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			_ = flush()
			return err
		}
		rec, ok, err := it.Forward()
		if err != nil {
			_ = flush()
			return errors.Wrap(err, "driver: reading next record")
		}
		if !ok {
			return flush()
		}
		batch = append(batch, consumer.Item{ID: rec.Offset, Data: rec.Data})
		if len(batch) >= BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

// ResumeIterator builds an iterator positioned exactly where a pump
// into sink should continue: right after sink's last applied record,
// or at the start of the log if sink has applied nothing yet.
func ResumeIterator(src *offsetlog.Log, sink consumer.Sink) (*offsetlog.Iterator, error) {
	lastID, ok := sink.Latest()
	if !ok {
		return offsetlog.NewIterator(src), nil
	}

	nextOff, err := src.NextOffset(lastID)
	if err != nil {
		return nil, err
	}
	return offsetlog.NewIteratorAt(src, nextOff), nil
}
