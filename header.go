package zstream

import "time"

// Header holds the optional descriptive metadata of a gzip container:
// original file name, free-form comment, raw extra field, modification
// time and originating OS. The zero value attaches an empty header.
//
// OS zero means "let the engine pick its default"; pass OSUnknown (255)
// explicitly to mark the field as unset in the output stream.
type Header struct {
	Name    string
	Comment string
	Extra   []byte
	ModTime time.Time
	OS      byte
}

// OSUnknown is the gzip OS byte for "unknown".
const OSUnknown byte = 255

// clone deep-copies the header so the arena owns every backing buffer.
func (h *Header) clone() *Header {
	if h == nil {
		return nil
	}
	c := *h
	if h.Extra != nil {
		c.Extra = append([]byte(nil), h.Extra...)
	}
	return &c
}

// headerArena co-owns the attached header's backing buffers for the whole
// session lifetime. The engine keeps referring to these bytes until the
// container header has been serialized, so they must outlive any value the
// caller constructed the header from, and they are released exactly once,
// at session close.
type headerArena struct {
	hdr      *Header
	released bool
}

func newHeaderArena(h *Header) *headerArena {
	return &headerArena{hdr: h.clone()}
}

func (a *headerArena) header() *Header { return a.hdr }

func (a *headerArena) release() {
	if a.released {
		return
	}
	a.released = true
	a.hdr = nil
}
