package zstream

import (
	"encoding/binary"
	"errors"
	"hash/adler32"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// The flate family in Go exposes pull-based readers, while Transform is a
// push-based buffer exchange. inflateEngine bridges the two by running the
// reader on a dedicated goroutine and exchanging buffers over rendezvous
// channels. The goroutine is always in exactly one of two places: blocked
// sending a message to the session side, or blocked waiting for input after
// having announced that it needs some. That invariant is what makes the
// synchronous Transform protocol deadlock-free.
//
// Container headers are sniffed on the session side before the reader
// goroutine exists, so a zlib FDICT flag can surface StatusNeedDict before
// any inflate state has consumed the stream, and the sniffed prefix can be
// replayed to a reader constructed with the dictionary.

const inflateChunkSize = 32 * 1024

var errEngineClosed = errors.New("engine closed")

type msgKind int

const (
	msgNeedInput msgKind = iota
	msgOutput
	msgHeader
	msgDone
	msgError
)

type inflateMsg struct {
	kind msgKind
	data []byte
	hdr  *Header
	err  error
}

type inflateEngine struct {
	format WindowFormat
	kind   FormatKind // concrete kind once Auto is resolved

	dict    []byte
	dictSet bool

	// Header sniff state, before the reader goroutine starts.
	sniff    []byte
	sniffLen int // bytes still required before the stream can start
	resolved bool
	needDict bool
	dictID   uint32
	started  bool

	feed chan []byte
	msgs chan inflateMsg
	quit chan struct{}

	awaitingFeed bool
	inClosed     bool
	pending      []byte
	finished     bool
	failed       Status
	hdr          *Header

	closed  bool
	lastErr error
}

func newInflateEngine(format WindowFormat) *inflateEngine {
	e := &inflateEngine{format: format, kind: format.Kind, failed: StatusOK}
	switch format.Kind {
	case FormatRaw, FormatGzip:
		e.resolved = true
	case FormatZlib:
		e.sniffLen = 2
	case FormatAuto:
		e.sniffLen = 2
	}
	return e
}

func (e *inflateEngine) errDetail() string {
	if e.lastErr == nil {
		return ""
	}
	return e.lastErr.Error()
}

func (e *inflateEngine) header() *Header { return e.hdr }

// absorb buffers stream prefix bytes until the container kind and its
// dictionary requirement are known. It returns how many bytes of in it
// consumed and a status: StatusOK with ready=false means more prefix bytes
// are needed.
func (e *inflateEngine) absorb(in []byte) (consumed int, ready bool, status Status) {
	for {
		if len(e.sniff) < e.sniffLen {
			take := e.sniffLen - len(e.sniff)
			if take > len(in)-consumed {
				take = len(in) - consumed
			}
			e.sniff = append(e.sniff, in[consumed:consumed+take]...)
			consumed += take
			if len(e.sniff) < e.sniffLen {
				return consumed, false, StatusOK
			}
		}
		if !e.resolved {
			switch {
			case e.format.Kind == FormatAuto && e.sniff[0] == 0x1f && e.sniff[1] == 0x8b:
				e.kind = FormatGzip
			case zlibHeaderValid(e.sniff[0], e.sniff[1]):
				e.kind = FormatZlib
			default:
				e.failed = StatusFormatError
				return consumed, false, StatusFormatError
			}
			e.resolved = true
		}
		if e.kind == FormatZlib && e.sniff[1]&0x20 != 0 {
			// FDICT: the 4-byte dictionary id follows the header.
			if e.sniffLen < 6 {
				e.sniffLen = 6
				continue
			}
			e.dictID = binary.BigEndian.Uint32(e.sniff[2:6])
			if !e.dictSet {
				e.needDict = true
				return consumed, false, StatusNeedDict
			}
			if adler32.Checksum(e.dict) != e.dictID {
				return consumed, false, StatusDataError
			}
		}
		return consumed, true, StatusOK
	}
}

func zlibHeaderValid(cmf, flg byte) bool {
	if cmf&0x0f != 8 {
		return false
	}
	return (uint16(cmf)<<8|uint16(flg))%31 == 0
}

func (e *inflateEngine) start() {
	e.feed = make(chan []byte)
	e.msgs = make(chan inflateMsg)
	e.quit = make(chan struct{})
	src := &feedSource{feed: e.feed, quit: e.quit, cur: e.sniff, notify: e.msgs}
	e.sniff = nil
	e.started = true
	go e.run(src)
}

func (e *inflateEngine) run(src *feedSource) {
	rd, hdr, err := e.makeReader(src)
	if err != nil {
		e.send(inflateMsg{kind: msgError, err: err})
		return
	}
	if hdr != nil {
		if !e.send(inflateMsg{kind: msgHeader, hdr: hdr}) {
			return
		}
	}
	buf := make([]byte, inflateChunkSize)
	for {
		n, rerr := rd.Read(buf)
		if n > 0 {
			out := make([]byte, n)
			copy(out, buf[:n])
			if !e.send(inflateMsg{kind: msgOutput, data: out}) {
				return
			}
		}
		if rerr == io.EOF {
			e.send(inflateMsg{kind: msgDone})
			return
		}
		if rerr != nil {
			e.send(inflateMsg{kind: msgError, err: rerr})
			return
		}
	}
}

func (e *inflateEngine) send(m inflateMsg) bool {
	select {
	case e.msgs <- m:
		return true
	case <-e.quit:
		return false
	}
}

func (e *inflateEngine) makeReader(src *feedSource) (io.Reader, *Header, error) {
	switch e.kind {
	case FormatRaw:
		if e.dictSet {
			return flate.NewReaderDict(src, e.dict), nil, nil
		}
		return flate.NewReader(src), nil, nil
	case FormatZlib:
		if e.dictSet {
			zr, err := zlib.NewReaderDict(src, e.dict)
			return zr, nil, err
		}
		zr, err := zlib.NewReader(src)
		return zr, nil, err
	case FormatGzip:
		gr, err := gzip.NewReader(src)
		if err != nil {
			return nil, nil, err
		}
		// One logical stream per session; trailing bytes are the
		// caller's business.
		gr.Multistream(false)
		hdr := &Header{
			Name:    gr.Name,
			Comment: gr.Comment,
			Extra:   append([]byte(nil), gr.Extra...),
			ModTime: gr.ModTime,
			OS:      gr.OS,
		}
		return gr, hdr, nil
	}
	return nil, nil, errors.New("unresolved container kind")
}

func (e *inflateEngine) Transform(in, out []byte, flush FlushMode) (int, int, Status) {
	if e.closed {
		return 0, 0, StatusMisuse
	}
	if e.failed != StatusOK {
		return 0, 0, e.failed
	}

	consumed := 0
	if !e.started {
		n, ready, st := e.absorb(in)
		consumed += n
		if st != StatusOK {
			if st.fatal() {
				e.failed = st
			}
			return consumed, 0, st
		}
		if !ready {
			// Not enough prefix yet. With Finish and nothing more to
			// give, the stream is truncated.
			if flush == Finish && consumed == len(in) {
				e.failed = StatusDataError
				e.lastErr = io.ErrUnexpectedEOF
				return consumed, 0, StatusDataError
			}
			return consumed, 0, StatusOK
		}
		e.start()
	}

	produced := 0
	for {
		if len(e.pending) > 0 {
			n := copy(out[produced:], e.pending)
			produced += n
			e.pending = e.pending[n:]
			if len(e.pending) > 0 {
				return consumed, produced, StatusBufferFull
			}
		}
		if e.finished {
			return consumed, produced, StatusStreamEnd
		}
		if produced == len(out) && len(out) > 0 {
			// The slice filled exactly. More may follow; keep the
			// call-again signal so drain loops do not stop early.
			return consumed, produced, StatusBufferFull
		}
		if e.awaitingFeed {
			switch {
			case consumed < len(in):
				chunk := make([]byte, len(in)-consumed)
				copy(chunk, in[consumed:])
				e.feed <- chunk
				consumed = len(in)
				e.awaitingFeed = false
			case flush == Finish && !e.inClosed:
				close(e.feed)
				e.inClosed = true
				e.awaitingFeed = false
			default:
				// Nothing to give; the reader stays parked until the
				// next call.
				return consumed, produced, StatusOK
			}
		}
		msg := <-e.msgs
		switch msg.kind {
		case msgNeedInput:
			if !e.inClosed {
				e.awaitingFeed = true
			}
		case msgOutput:
			e.pending = msg.data
		case msgHeader:
			e.hdr = msg.hdr
		case msgDone:
			e.finished = true
		case msgError:
			st := statusFromReadError(msg.err)
			e.failed = st
			e.lastErr = msg.err
			return consumed, produced, st
		}
	}
}

func statusFromReadError(err error) Status {
	switch {
	case errors.Is(err, zlib.ErrHeader), errors.Is(err, gzip.ErrHeader):
		return StatusFormatError
	case errors.Is(err, zlib.ErrDictionary):
		return StatusDataError
	}
	var corrupt flate.CorruptInputError
	if errors.As(err, &corrupt) {
		return StatusDataError
	}
	// Checksum mismatches and truncation are data errors too.
	return StatusDataError
}

func (e *inflateEngine) SetDictionary(dict []byte) Status {
	if e.closed || e.started {
		return StatusMisuse
	}
	e.dict = append([]byte(nil), dict...)
	e.dictSet = true
	if e.needDict {
		if adler32.Checksum(e.dict) != e.dictID {
			return StatusDataError
		}
		e.needDict = false
	}
	return StatusOK
}

func (e *inflateEngine) Reset() Status {
	if e.closed {
		return StatusMisuse
	}
	e.stop()
	e.kind = e.format.Kind
	e.sniff = nil
	e.sniffLen = 0
	e.resolved = false
	e.needDict = false
	e.started = false
	e.awaitingFeed = false
	e.inClosed = false
	e.pending = nil
	e.finished = false
	e.failed = StatusOK
	e.hdr = nil
	e.lastErr = nil
	switch e.format.Kind {
	case FormatRaw, FormatGzip:
		e.resolved = true
	case FormatZlib, FormatAuto:
		e.sniffLen = 2
	}
	return StatusOK
}

func (e *inflateEngine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.stop()
	e.pending = nil
	return nil
}

// stop terminates the reader goroutine, if one is running.
func (e *inflateEngine) stop() {
	if e.quit != nil {
		close(e.quit)
		e.quit = nil
		e.feed = nil
		e.msgs = nil
	}
}

// feedSource adapts the rendezvous channels to the io.Reader plus
// io.ByteReader pair the flate family wants. Implementing ReadByte keeps
// the readers from layering their own buffering on top, so they never
// consume bytes beyond the end of the stream.
type feedSource struct {
	feed   chan []byte
	notify chan inflateMsg
	quit   chan struct{}
	cur    []byte
}

func (s *feedSource) Read(p []byte) (int, error) {
	for len(s.cur) == 0 {
		if err := s.refill(); err != nil {
			return 0, err
		}
	}
	n := copy(p, s.cur)
	s.cur = s.cur[n:]
	return n, nil
}

func (s *feedSource) ReadByte() (byte, error) {
	for len(s.cur) == 0 {
		if err := s.refill(); err != nil {
			return 0, err
		}
	}
	b := s.cur[0]
	s.cur = s.cur[1:]
	return b, nil
}

func (s *feedSource) refill() error {
	select {
	case s.notify <- inflateMsg{kind: msgNeedInput}:
	case <-s.quit:
		return errEngineClosed
	}
	select {
	case b, ok := <-s.feed:
		if !ok {
			return io.EOF
		}
		s.cur = b
		return nil
	case <-s.quit:
		return errEngineClosed
	}
}
