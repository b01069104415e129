package zstream

import "io"

// InputFunc supplies the next input chunk to a push-style run. It returns
// io.EOF (with or without a final chunk) when the input is exhausted. The
// returned slice is only read before the next InputFunc call.
type InputFunc func() ([]byte, error)

// OutputFunc receives produced bytes during a push-style run. Returning
// false stops the run cleanly; this sentinel-return convention is the
// bridge's cancellation mechanism and is deliberately cheaper than a
// context. The slice is only valid for the duration of the call.
type OutputFunc func([]byte) bool

// ProcessBack runs the transform with inverted control: the loop itself
// pulls input through in and pushes output through out, which suits
// pull-from-arbitrary-source and zero-copy callers. Both callbacks are
// retained only for the duration of this call.
//
// A stop requested by out surfaces as ErrCancelled; genuine failures keep
// their own error identity. Cancellation is observed at iteration
// boundaries and does not interrupt a transform already in flight.
func (s *Session) ProcessBack(in InputFunc, out OutputFunc) error {
	switch s.state {
	case StateIdle:
		return ErrNotInitialized
	case StateClosed:
		return ErrClosed
	case StateFinished:
		return ErrFinished
	}
	for {
		chunk, err := in()
		eof := err == io.EOF
		if err != nil && !eof {
			return err
		}
		if len(chunk) > 0 {
			produced, perr := s.Process(chunk, NoFlush)
			if perr != nil {
				return perr
			}
			if len(produced) > 0 && !out(produced) {
				return ErrCancelled
			}
		}
		if s.state == StateFinished {
			return nil
		}
		if eof {
			tail, perr := s.Finish()
			if perr != nil {
				return perr
			}
			if len(tail) > 0 && !out(tail) {
				return ErrCancelled
			}
			return nil
		}
	}
}
