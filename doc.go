// Package zstream provides a chunked streaming transform engine over the
// deflate family of formats (raw DEFLATE, zlib, gzip).
//
// The core abstraction is the Session: a stateful codec driven one
// buffer exchange at a time. Callers push input chunks and drain output
// chunks; the session never grows its scratch buffer, so peak memory is
// constant no matter how large the stream is.
//
// # Quick Start
//
//	// One-shot
//	compressed, _ := zstream.Compress(data, zstream.Gzip(), nil)
//	restored, _ := zstream.Decompress(compressed, zstream.AutoDetect(), nil)
//
//	// Streaming
//	s, _ := zstream.NewCompressor(zstream.Zlib(), nil)
//	defer s.Close()
//	for _, chunk := range chunks {
//	    out, _ := s.Process(chunk, zstream.NoFlush)
//	    sink.Write(out)
//	}
//	tail, _ := s.Finish()
//	sink.Write(tail)
//
// # Container Formats
//
// A WindowFormat selects the framing:
//
//   - Raw() - bare DEFLATE, no header, no checksum
//   - Zlib() - RFC 1950 framing with an Adler-32 trailer
//   - Gzip() - RFC 1952 framing with optional metadata (see AttachHeader)
//   - AutoDetect() - decompression only, sniffs gzip vs zlib
//
// # Preset Dictionaries
//
// SetDictionary seeds the sliding window before data flows. On
// decompression of a zlib stream whose header demands a dictionary, the
// session reports the need via ErrDictionaryRequired, or resolves it
// automatically when the dictionary was supplied in Params.
//
// # File Pipelines
//
// Pipeline drives the chunked loop from file to file with bounded
// memory, progress callbacks and context cancellation. It runs over any
// FileSystem implementation; NewOSFS and NewMemFS are provided.
//
// # One-Shot Registry
//
// CompressBytes and DecompressBytes cover whole-buffer use across a
// wider codec set (gzip, zlib, deflate, zstd, lz4, brotli, snappy) with
// magic-byte detection for AlgorithmAuto.
package zstream
