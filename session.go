package zstream

import (
	"go.uber.org/zap"
)

// State is the lifecycle position of a session.
type State int

const (
	// StateIdle: created but not initialized.
	StateIdle State = iota
	// StateActive: initialized; transform calls are accepted.
	StateActive
	// StateFinished: the stream ended; only Reset and Close are useful.
	StateFinished
	// StateClosed: engine resources released.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Session owns one codec engine instance, its lifecycle and its byte
// counters. A session is exclusively owned by the caller that created it;
// concurrent calls into the same session are not synchronized here and are
// the caller's responsibility to serialize.
type Session struct {
	mode   Mode
	state  State
	format WindowFormat
	logger *zap.Logger

	engine  Engine
	scratch []byte

	dict      []byte
	dictTried bool
	arena     *headerArena

	// wroteOutput closes the dictionary/header attachment window: once a
	// transform call has moved bytes, neither may change.
	wroteOutput bool

	totalIn  uint64
	totalOut uint64
}

// NewSession returns an uninitialized session for the given mode.
func NewSession(mode Mode) *Session {
	return &Session{mode: mode, state: StateIdle, logger: zap.NewNop()}
}

// NewCompressor creates and initializes a compression session.
func NewCompressor(format WindowFormat, params *Params) (*Session, error) {
	s := NewSession(ModeCompress)
	if err := s.Init(format, params); err != nil {
		return nil, err
	}
	return s, nil
}

// NewDecompressor creates and initializes a decompression session.
func NewDecompressor(format WindowFormat, params *Params) (*Session, error) {
	s := NewSession(ModeDecompress)
	if err := s.Init(format, params); err != nil {
		return nil, err
	}
	return s, nil
}

// Init allocates engine state. It may be called once per session; a second
// call fails with ErrAlreadyInitialized.
func (s *Session) Init(format WindowFormat, params *Params) error {
	switch s.state {
	case StateClosed:
		return ErrClosed
	case StateActive, StateFinished:
		return ErrAlreadyInitialized
	}
	if params == nil {
		params = DefaultParams()
	}
	engine, err := newEngine(s.mode, format, params)
	if err != nil {
		return err
	}
	s.engine = engine
	s.format = format

	size := params.ScratchSize
	if size <= 0 {
		size = defaultScratchSize
	}
	s.scratch = make([]byte, size)
	if params.Logger != nil {
		s.logger = params.Logger
	}
	s.state = StateActive

	if params.Dictionary != nil {
		dict := append([]byte(nil), params.Dictionary...)
		s.dict = dict
		if s.mode == ModeCompress || format.Kind == FormatRaw {
			// Compress-side dictionaries take effect up front, as do
			// decode dictionaries for the raw format, which has no way
			// to ask for one. The zlib decode side holds the dictionary
			// until the stream's FDICT flag asks for it.
			if st := s.engine.SetDictionary(dict); st != StatusOK {
				s.engine.Close()
				s.state = StateClosed
				return s.errorFromStatus(st)
			}
			s.dictTried = true
		}
	}
	s.logger.Debug("session initialized",
		zap.Stringer("mode", s.mode),
		zap.Stringer("format", format.Kind),
		zap.Int("scratch", size))
	return nil
}

// Mode returns the session direction.
func (s *Session) Mode() Mode { return s.mode }

// State returns the lifecycle position.
func (s *Session) State() State { return s.state }

// Format returns the window format the session was initialized with.
func (s *Session) Format() WindowFormat { return s.format }

// TotalIn is the cumulative count of input bytes consumed.
func (s *Session) TotalIn() uint64 { return s.totalIn }

// TotalOut is the cumulative count of output bytes produced.
func (s *Session) TotalOut() uint64 { return s.totalOut }

// SetDictionary attaches a preset dictionary. On the compress side this is
// only legal between initialization and the first transform call that moves
// bytes; on the decompress side, before the stream has started decoding
// (typically in response to ErrDictionaryRequired). The engine copies the
// bytes; the caller's slice is borrowed only for this call.
func (s *Session) SetDictionary(dict []byte) error {
	switch s.state {
	case StateIdle:
		return ErrNotInitialized
	case StateClosed:
		return ErrClosed
	case StateFinished:
		return ErrFinished
	}
	if s.wroteOutput {
		return ErrDictionaryTiming
	}
	if st := s.engine.SetDictionary(dict); st != StatusOK {
		if st == StatusMisuse {
			return ErrDictionaryTiming
		}
		return s.errorFromStatus(st)
	}
	s.dict = append([]byte(nil), dict...)
	s.dictTried = true
	return nil
}

// AttachHeader stores gzip container metadata for the stream. The session's
// arena clones every field, so the caller's header value may be mutated or
// discarded immediately after this call. Exactly one attachment is
// permitted per session; the engine has no notion of replacing a header
// that is already registered.
func (s *Session) AttachHeader(h *Header) error {
	switch s.state {
	case StateIdle:
		return ErrNotInitialized
	case StateClosed:
		return ErrClosed
	case StateFinished:
		return ErrFinished
	}
	if s.mode != ModeCompress || s.format.Kind != FormatGzip {
		return ErrHeaderFormat
	}
	if s.arena != nil {
		return ErrHeaderAttached
	}
	if s.wroteOutput {
		return ErrHeaderTiming
	}
	ha, ok := s.engine.(headerAttacher)
	if !ok {
		return ErrHeaderFormat
	}
	arena := newHeaderArena(h)
	if st := ha.setHeader(arena.header()); st != StatusOK {
		return ErrHeaderTiming
	}
	s.arena = arena
	return nil
}

// Header returns the container metadata recovered while decompressing a
// gzip stream, or nil if none has been decoded yet.
func (s *Session) Header() *Header {
	if hp, ok := s.engine.(headerProvider); ok {
		return hp.header()
	}
	return nil
}

// TransformOnce performs a single engine call. It never loops: the caller
// sees exactly one buffer exchange, including StatusBufferFull when out was
// exhausted with output still pending. Most callers want Process instead.
func (s *Session) TransformOnce(in, out []byte, flush FlushMode) (consumed, produced int, status Status) {
	switch s.state {
	case StateIdle, StateClosed:
		return 0, 0, StatusMisuse
	case StateFinished:
		if flush == Finish && len(in) == 0 {
			return 0, 0, StatusStreamEnd
		}
		return 0, 0, StatusMisuse
	}
	consumed, produced, status = s.engine.Transform(in, out, flush)
	s.totalIn += uint64(consumed)
	s.totalOut += uint64(produced)
	// A NeedDictionary signal must leave the attachment window open even
	// though sniffing the zlib header consumed bytes: supplying the
	// dictionary afterwards is the documented recovery path.
	if (consumed > 0 || produced > 0) && status != StatusNeedDict {
		s.wroteOutput = true
	}
	if status == StatusStreamEnd {
		s.state = StateFinished
	}
	return consumed, produced, status
}

// Reset returns the session to Active with cleared buffers but the same
// parameters and dictionary. The next stream is framed from scratch, but
// container metadata attached via AttachHeader is not re-applied; attach a
// new header if the next stream needs one. Not equivalent to creating a
// fresh session when an unrelated logical stream is wanted.
func (s *Session) Reset() error {
	switch s.state {
	case StateIdle:
		return ErrNotInitialized
	case StateClosed:
		return ErrClosed
	}
	if st := s.engine.Reset(); st != StatusOK {
		return s.errorFromStatus(st)
	}
	s.state = StateActive
	s.wroteOutput = false
	s.dictTried = false
	if s.dict != nil && s.mode == ModeCompress {
		if st := s.engine.SetDictionary(s.dict); st != StatusOK {
			return s.errorFromStatus(st)
		}
		s.dictTried = true
	}
	return nil
}

// Close releases engine resources. It is idempotent and a no-op for a
// session that was never initialized. The metadata arena is released here
// and never earlier: the engine may hold references to the attached header
// until the very end of the session's life.
func (s *Session) Close() error {
	if s.state == StateClosed || s.state == StateIdle {
		s.state = StateClosed
		return nil
	}
	err := s.engine.Close()
	if s.arena != nil {
		s.arena.release()
	}
	s.state = StateClosed
	s.logger.Debug("session closed",
		zap.Uint64("total_in", s.totalIn),
		zap.Uint64("total_out", s.totalOut))
	return err
}

// errorFromStatus maps a terminal engine status to the public error
// taxonomy. Statuses are never nested inside one another: the engine's
// original code is preserved on EngineError.
func (s *Session) errorFromStatus(st Status) error {
	switch st {
	case StatusNeedDict:
		return ErrDictionaryRequired
	case StatusMisuse:
		switch s.state {
		case StateIdle:
			return ErrNotInitialized
		case StateClosed:
			return ErrClosed
		case StateFinished:
			return ErrFinished
		}
		return &EngineError{Status: StatusMisuse, Detail: s.engineDetail()}
	default:
		return &EngineError{Status: st, Detail: s.engineDetail()}
	}
}

func (s *Session) engineDetail() string {
	if ed, ok := s.engine.(errDetailer); ok {
		return ed.errDetail()
	}
	return ""
}
