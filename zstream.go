package zstream

import "go.uber.org/zap"

// Mode selects the direction of a session.
type Mode int

const (
	ModeCompress Mode = iota
	ModeDecompress
)

func (m Mode) String() string {
	switch m {
	case ModeCompress:
		return "compress"
	case ModeDecompress:
		return "decompress"
	}
	return "unknown"
}

// FlushMode controls how aggressively the engine must emit buffered output
// on a single transform call.
type FlushMode int

const (
	// NoFlush lets the engine buffer input internally for better ratios.
	NoFlush FlushMode = iota
	// PartialFlush emits enough output for the receiver to make progress.
	PartialFlush
	// SyncFlush emits all pending output and aligns it to a byte boundary.
	SyncFlush
	// FullFlush is SyncFlush plus a reset of the compression history.
	FullFlush
	// Finish terminates the stream; no further input is accepted.
	Finish
	// Block stops at the next block boundary without emitting extra output.
	Block
)

func (f FlushMode) String() string {
	switch f {
	case NoFlush:
		return "no-flush"
	case PartialFlush:
		return "partial-flush"
	case SyncFlush:
		return "sync-flush"
	case FullFlush:
		return "full-flush"
	case Finish:
		return "finish"
	case Block:
		return "block"
	}
	return "unknown"
}

// FormatKind is the container/framing convention of a byte stream.
type FormatKind int

const (
	// FormatRaw is a headerless DEFLATE bitstream.
	FormatRaw FormatKind = iota
	// FormatZlib wraps the bitstream in a zlib header and Adler-32 trailer.
	FormatZlib
	// FormatGzip wraps the bitstream in a gzip header and CRC-32 trailer.
	FormatGzip
	// FormatAuto detects gzip vs zlib from the stream prefix (decode only).
	FormatAuto
)

func (k FormatKind) String() string {
	switch k {
	case FormatRaw:
		return "raw"
	case FormatZlib:
		return "zlib"
	case FormatGzip:
		return "gzip"
	case FormatAuto:
		return "auto"
	}
	return "unknown"
}

// WindowFormat pairs a container kind with the history window size.
// Producer and consumer of a stream must agree on the kind; a mismatch
// surfaces as a format error on the first decode call.
type WindowFormat struct {
	Kind FormatKind

	// SizeBits is the base-two logarithm of the history window, 8..15.
	// Zero selects the default of 15 (32 KiB). The pure-Go engine always
	// decodes with a full window; SizeBits is validated and recorded for
	// compatibility with streams produced elsewhere.
	SizeBits int
}

// Raw returns a headerless DEFLATE format with the default window.
func Raw() WindowFormat { return WindowFormat{Kind: FormatRaw} }

// Zlib returns a zlib-wrapped format with the default window.
func Zlib() WindowFormat { return WindowFormat{Kind: FormatZlib} }

// Gzip returns a gzip-wrapped format with the default window.
func Gzip() WindowFormat { return WindowFormat{Kind: FormatGzip} }

// AutoDetect returns a format that resolves gzip vs zlib from the first
// bytes of the stream. Decode only.
func AutoDetect() WindowFormat { return WindowFormat{Kind: FormatAuto} }

const (
	minWindowBits     = 8
	maxWindowBits     = 15
	defaultWindowBits = 15
)

// Strategy tunes the compressor for particular kinds of input.
type Strategy int

const (
	StrategyDefault Strategy = iota
	// StrategyFiltered favors short matches for filtered data.
	StrategyFiltered
	// StrategyHuffmanOnly disables match finding entirely.
	StrategyHuffmanOnly
	// StrategyRLE limits matches to run-length encoding.
	StrategyRLE
	// StrategyFixed forces fixed Huffman tables.
	StrategyFixed
)

// Status is the result of a single engine transform call.
type Status int

const (
	// StatusOK means the call made progress and the session stays active.
	StatusOK Status = iota
	// StatusStreamEnd means the stream terminated cleanly.
	StatusStreamEnd
	// StatusNeedDict means decoding cannot proceed without the preset
	// dictionary the producer used.
	StatusNeedDict
	// StatusBufferFull means the output slice was exhausted while the
	// engine still holds producible output. Call again; not an error.
	StatusBufferFull
	// StatusDataError means the stream is corrupt. Fatal to the session.
	StatusDataError
	// StatusMemoryError means the engine could not allocate state.
	StatusMemoryError
	// StatusFormatError means the container framing did not match the
	// configured window format.
	StatusFormatError
	// StatusMisuse means the caller drove the session incorrectly
	// (uninitialized, closed, or a timing rule violated).
	StatusMisuse
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStreamEnd:
		return "stream-end"
	case StatusNeedDict:
		return "need-dictionary"
	case StatusBufferFull:
		return "buffer-full"
	case StatusDataError:
		return "data-error"
	case StatusMemoryError:
		return "memory-error"
	case StatusFormatError:
		return "format-error"
	case StatusMisuse:
		return "misuse"
	}
	return "unknown"
}

// fatal reports whether the status terminates the session.
func (s Status) fatal() bool {
	switch s {
	case StatusDataError, StatusMemoryError, StatusFormatError:
		return true
	}
	return false
}

// Compression level bounds. Level 0 selects the default (6), matching the
// common zlib convention of "reasonable ratio at reasonable speed".
const (
	DefaultLevel    = 0
	BestSpeed       = 1
	BestCompression = 9
)

const (
	defaultScratchSize = 32 * 1024
	defaultChunkSize   = 64 * 1024
)

// Params holds session tuning knobs.
type Params struct {
	// Level is the compression level: 0 for the default, 1 (fastest) to
	// 9 (best). Ignored when decompressing.
	Level int

	// Strategy tunes match finding. Only StrategyHuffmanOnly changes the
	// behavior of the pure-Go engine; the others are accepted and
	// recorded for parameter compatibility.
	Strategy Strategy

	// MemoryLevel is the engine's internal memory tradeoff, 1..9.
	// Zero selects the default of 8. The pure-Go engine validates but
	// does not vary allocation by it.
	MemoryLevel int

	// ScratchSize is the fixed output scratch buffer used by the chunked
	// transform loop. It is never grown; large outputs are produced by
	// looping. Zero selects 32 KiB.
	ScratchSize int

	// Dictionary is an optional preset dictionary. On the compress side
	// it is applied at initialization; on the decompress side it is held
	// until the stream signals that a dictionary is required.
	Dictionary []byte

	// Logger receives debug events from the session and loop.
	// Nil selects a no-op logger.
	Logger *zap.Logger
}

// DefaultParams returns parameters with all defaults resolved.
func DefaultParams() *Params {
	return &Params{
		Level:       DefaultLevel,
		Strategy:    StrategyDefault,
		ScratchSize: defaultScratchSize,
	}
}
