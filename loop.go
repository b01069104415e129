package zstream

import "go.uber.org/zap"

// Process pushes one input chunk through the engine and returns every byte
// it produced. The fixed scratch buffer is never grown; unbounded output is
// handled by looping, which keeps peak memory constant regardless of how
// much data the stream expands to.
//
// The loop runs until the input is exhausted and the scratch buffer came
// back with room to spare (the engine has nothing more to emit right now),
// until the engine reports the end of the stream, or until an error. A
// NeedDictionary signal is resolved from the session's configured
// dictionary and the same call is retried exactly once.
//
// Empty input with NoFlush is a legal no-op producing zero bytes.
func (s *Session) Process(in []byte, flush FlushMode) ([]byte, error) {
	switch s.state {
	case StateIdle:
		return nil, ErrNotInitialized
	case StateClosed:
		return nil, ErrClosed
	case StateFinished:
		if len(in) == 0 && flush == Finish {
			return nil, nil
		}
		return nil, ErrFinished
	}
	if len(in) == 0 && (flush == NoFlush || flush == Block) {
		return nil, nil
	}

	var result []byte
	for {
		consumed, produced, status := s.TransformOnce(in, s.scratch, flush)
		in = in[consumed:]
		outputWasFull := produced == len(s.scratch)
		if produced > 0 {
			result = append(result, s.scratch[:produced]...)
		}

		switch status {
		case StatusOK, StatusBufferFull:
			// Progress; fall through to the continuation test.
		case StatusStreamEnd:
			s.logger.Debug("stream end",
				zap.Uint64("total_in", s.totalIn),
				zap.Uint64("total_out", s.totalOut))
			return result, nil
		case StatusNeedDict:
			if s.dict != nil && !s.dictTried {
				s.dictTried = true
				if st := s.engine.SetDictionary(s.dict); st != StatusOK {
					return result, s.errorFromStatus(st)
				}
				// Retry the same transform, not the next one.
				continue
			}
			return result, ErrDictionaryRequired
		default:
			return result, s.errorFromStatus(status)
		}

		if len(in) > 0 || outputWasFull || flush == Finish {
			continue
		}
		return result, nil
	}
}

// Finish drives the engine with empty input and the Finish flush until the
// stream ends. A single finishing call may not drain all pending output
// when the scratch buffer is smaller than what remains, hence the loop.
// Finishing an already finished stream is a no-op.
func (s *Session) Finish() ([]byte, error) {
	return s.Process(nil, Finish)
}
