// Package codec implements the self-framing binary layout used by the
// native offset log in github.com/ssargent/huginn.
//
// # Frame format
//
// Every record is wrapped in a frame that repeats its own length on both
// sides and carries a forward link to the next frame:
//
//	[len:u32][payload:len][len:u32][next_off:WIDE]
//
// All integers are big-endian. WIDE is either 4 or 8 bytes and is fixed
// for the lifetime of a given log file; it is a construction-time choice
// of the caller (see Width) and is never itself stored on disk.
//
// The repeated length and the forward link exist so the log can be
// traversed in either direction, and so the last frame can be located by
// probing the file tail, without any side-car index.
//
// # Validation
//
// Decoding checks two things: that the head and tail length fields agree,
// and that the stored next_off is at least offset+frame_size. This
// implementation resolves that inequality as strict equality — see
// DESIGN.md for the reasoning — so any mismatch is reported as
// ErrCorruptLogFile. A short read (fewer bytes available than the frame
// claims to need) is reported as ErrDecodeBufferSizeTooSmall.
package codec
