package zstream

// Compress compresses data in a single call. It is a thin pass-through to
// the streaming loop: a session is created, fed once and finished. Use a
// Session directly when data arrives incrementally.
func Compress(data []byte, format WindowFormat, params *Params) ([]byte, error) {
	s, err := NewCompressor(format, params)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Process(data, Finish)
}

// Decompress decompresses data in a single call. Bytes following the end
// of the stream are ignored.
func Decompress(data []byte, format WindowFormat, params *Params) ([]byte, error) {
	s, err := NewDecompressor(format, params)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Process(data, Finish)
}

// CompressBound returns an upper bound on the compressed size of n input
// bytes at any level, including zlib framing. DEFLATE stored blocks add at
// most 5 bytes per 16 KiB plus a small constant; gzip framing needs up to
// 18 additional bytes over the raw bound when no metadata is attached.
func CompressBound(n int) int {
	return n + (n >> 12) + (n >> 14) + (n >> 25) + 13
}
