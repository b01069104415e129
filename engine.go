package zstream

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

var errGzipDictionary = errors.New("preset dictionary unsupported by gzip framing")

// Engine is the stateful codec primitive driven by a Session. A single
// Transform call never loops internally: it consumes what it can from in,
// produces what fits into out, and reports a status. StatusBufferFull is
// the expected "call again with room" signal, not an error.
//
// An Engine is exclusively owned by one session and is not safe for
// concurrent use.
type Engine interface {
	Transform(in, out []byte, flush FlushMode) (consumed, produced int, status Status)
	SetDictionary(dict []byte) Status
	Reset() Status
	Close() error
}

// errDetailer exposes the last underlying error for diagnostics.
type errDetailer interface {
	errDetail() string
}

// headerAttacher is implemented by compress engines that can emit
// container metadata.
type headerAttacher interface {
	setHeader(h *Header) Status
}

// headerProvider is implemented by decompress engines that recover
// container metadata.
type headerProvider interface {
	header() *Header
}

// newEngine validates parameters and builds the codec engine for mode.
func newEngine(mode Mode, format WindowFormat, params *Params) (Engine, error) {
	bits := format.SizeBits
	if bits == 0 {
		bits = defaultWindowBits
	}
	if bits < minWindowBits || bits > maxWindowBits {
		return nil, ErrInvalidWindowBits
	}
	format.SizeBits = bits

	if params.MemoryLevel != 0 && (params.MemoryLevel < 1 || params.MemoryLevel > 9) {
		return nil, ErrInvalidMemoryLevel
	}

	if mode == ModeDecompress {
		return newInflateEngine(format), nil
	}

	if format.Kind == FormatAuto {
		return nil, ErrAutoDetectEncode
	}
	level, err := flateLevel(params.Level, params.Strategy)
	if err != nil {
		return nil, err
	}
	return &deflateEngine{format: format, level: level}, nil
}

// flateLevel maps the public level/strategy convention onto the flate
// package's level space.
func flateLevel(level int, strategy Strategy) (int, error) {
	if strategy == StrategyHuffmanOnly {
		return flate.HuffmanOnly, nil
	}
	switch {
	case level == DefaultLevel || level == -1:
		return flate.DefaultCompression, nil
	case level >= BestSpeed && level <= BestCompression:
		return level, nil
	}
	return 0, ErrInvalidLevel
}

// dictLevel clamps a flate level into the range where the encoder
// actually primes its window from a preset dictionary. The fast-encoder
// levels (default through 6) never emit back-references into the
// dictionary, which would silently waste it.
func dictLevel(level int) int {
	if level < 7 && level != flate.HuffmanOnly {
		return 7
	}
	return level
}

// flushWriter is the shared surface of the flate, zlib and gzip writers.
type flushWriter interface {
	io.WriteCloser
	Flush() error
}

// deflateEngine compresses into an internal pending buffer and drains it
// into the caller's output slice one Transform call at a time. The
// underlying writer is created lazily so that a dictionary or gzip header
// attached before the first transform can be folded into construction.
type deflateEngine struct {
	format WindowFormat
	level  int

	dict []byte
	hdr  *Header

	w       flushWriter
	pending bytes.Buffer

	started  bool // stream has begun; dictionary/header window closed
	finished bool // Finish flush applied
	closed   bool
	lastErr  error
}

func (e *deflateEngine) errDetail() string {
	if e.lastErr == nil {
		return ""
	}
	return e.lastErr.Error()
}

func (e *deflateEngine) ensureWriter() Status {
	if e.w != nil {
		return StatusOK
	}
	var err error
	switch e.format.Kind {
	case FormatRaw:
		if e.dict != nil {
			e.w, err = flate.NewWriterDict(&e.pending, dictLevel(e.level), e.dict)
		} else {
			e.w, err = flate.NewWriter(&e.pending, e.level)
		}
	case FormatZlib:
		if e.dict != nil {
			e.w, err = zlib.NewWriterLevelDict(&e.pending, dictLevel(e.level), e.dict)
		} else {
			e.w, err = zlib.NewWriterLevel(&e.pending, e.level)
		}
	case FormatGzip:
		if e.dict != nil {
			// The gzip framing has no dictionary id field, so the
			// engine cannot honor a preset dictionary here. The set
			// call is accepted; the stream itself cannot start.
			e.lastErr = errGzipDictionary
			return StatusMisuse
		}
		var zw *gzip.Writer
		zw, err = gzip.NewWriterLevel(&e.pending, e.level)
		if err == nil && e.hdr != nil {
			zw.Name = e.hdr.Name
			zw.Comment = e.hdr.Comment
			zw.Extra = e.hdr.Extra
			zw.ModTime = e.hdr.ModTime
			if e.hdr.OS != 0 {
				zw.OS = e.hdr.OS
			}
		}
		e.w = zw
	}
	if err != nil {
		e.lastErr = err
		e.w = nil
		return StatusMisuse
	}
	return StatusOK
}

func (e *deflateEngine) Transform(in, out []byte, flush FlushMode) (int, int, Status) {
	if e.closed {
		return 0, 0, StatusMisuse
	}
	if e.finished {
		n := e.drain(out)
		if e.pending.Len() > 0 {
			return 0, n, StatusBufferFull
		}
		return 0, n, StatusStreamEnd
	}
	if len(in) == 0 && (flush == NoFlush || flush == Block) {
		// Legal no-op; drain leftovers from an earlier saturated call.
		n := e.drain(out)
		if e.pending.Len() > 0 {
			return 0, n, StatusBufferFull
		}
		return 0, n, StatusOK
	}
	if st := e.ensureWriter(); st != StatusOK {
		return 0, 0, st
	}

	consumed := 0
	if len(in) > 0 {
		if _, err := e.w.Write(in); err != nil {
			e.lastErr = err
			return 0, 0, StatusDataError
		}
		consumed = len(in)
		e.started = true
	}

	switch flush {
	case PartialFlush, SyncFlush, FullFlush:
		if err := e.w.Flush(); err != nil {
			e.lastErr = err
			return consumed, 0, StatusDataError
		}
		e.started = true
	case Finish:
		if err := e.w.Close(); err != nil {
			e.lastErr = err
			return consumed, 0, StatusDataError
		}
		e.started = true
		e.finished = true
	}

	n := e.drain(out)
	switch {
	case e.finished && e.pending.Len() == 0:
		return consumed, n, StatusStreamEnd
	case e.pending.Len() > 0:
		return consumed, n, StatusBufferFull
	}
	return consumed, n, StatusOK
}

func (e *deflateEngine) drain(out []byte) int {
	if e.pending.Len() == 0 || len(out) == 0 {
		return 0
	}
	n, _ := e.pending.Read(out)
	return n
}

func (e *deflateEngine) SetDictionary(dict []byte) Status {
	if e.closed || e.started {
		return StatusMisuse
	}
	// The caller's slice is borrowed only for this call.
	e.dict = append([]byte(nil), dict...)
	return StatusOK
}

func (e *deflateEngine) setHeader(h *Header) Status {
	if e.closed || e.started {
		return StatusMisuse
	}
	if e.format.Kind != FormatGzip {
		return StatusMisuse
	}
	e.hdr = h
	return StatusOK
}

// Reset restarts the stream with the same parameters and dictionary.
// Attached container metadata is not carried over; a reset gzip stream
// gets a default header.
func (e *deflateEngine) Reset() Status {
	if e.closed {
		return StatusMisuse
	}
	e.pending.Reset()
	e.w = nil
	e.hdr = nil
	e.started = false
	e.finished = false
	e.lastErr = nil
	return StatusOK
}

func (e *deflateEngine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if e.w != nil && !e.finished {
		e.w.Close()
	}
	e.w = nil
	e.pending.Reset()
	return nil
}
