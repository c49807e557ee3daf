package offsetlog

import (
	"github.com/ssargent/huginn/pkg/codec"
	"github.com/ssargent/huginn/pkg/metrics"
)

// options collects the construction-time choices for a Log.
type options struct {
	width              codec.Width
	windowSize         int
	integrityCheckOpen bool
	metrics            *metrics.Collector
}

func defaultOptions() options {
	return options{
		width: codec.Width4,
	}
}

// Option configures a Log at construction time.
type Option func(*options)

// WithWidth selects the offset width (codec.Width4 or codec.Width8).
// The default is Width4. A log opened with one width cannot be read
// correctly with another — the width is not stored in the file.
func WithWidth(w codec.Width) Option {
	return func(o *options) { o.width = w }
}

// WithReadWindow sets the BufOffsetReader window size used to amortize
// syscalls during Get and iteration. The default is
// fileio.DefaultWindowSize.
func WithReadWindow(bytes int) Option {
	return func(o *options) { o.windowSize = bytes }
}

// WithIntegrityCheckOnOpen runs a full forward scan at open time and
// fails the open if any frame does not validate, instead of trusting
// the tail probe alone.
func WithIntegrityCheckOnOpen() Option {
	return func(o *options) { o.integrityCheckOpen = true }
}

// WithMetrics attaches a metrics.Collector that Append/AppendBatch/Get
// and IntegrityCheck will report to. Nil (the default) disables
// reporting.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *options) { o.metrics = m }
}
