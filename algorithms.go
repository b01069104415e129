package zstream

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Algorithm names a whole-buffer codec in the one-shot registry. The
// deflate family shares its wire formats with the streaming sessions; the
// rest are standalone codecs for callers that do not need deflate
// interoperability.
type Algorithm string

const (
	AlgorithmGzip    Algorithm = "gzip"
	AlgorithmZlib    Algorithm = "zlib"
	AlgorithmDeflate Algorithm = "deflate"
	AlgorithmZstd    Algorithm = "zstd"
	AlgorithmLZ4     Algorithm = "lz4"
	AlgorithmBrotli  Algorithm = "brotli"
	AlgorithmSnappy  Algorithm = "snappy"
	AlgorithmAuto    Algorithm = "auto"
)

// createCompressor creates a compressor for the specified algorithm.
//
// Levels are algorithm-specific and zero selects each codec's default:
// gzip/zlib/deflate 1..9, zstd 1..22, lz4 1..9, brotli 0..11. Snappy has
// no levels.
func createCompressor(algo Algorithm, w io.Writer, level int) (io.WriteCloser, error) {
	switch algo {
	case AlgorithmGzip:
		if level == 0 {
			level = gzip.DefaultCompression
		}
		return gzip.NewWriterLevel(w, level)
	case AlgorithmZlib:
		if level == 0 {
			level = zlib.DefaultCompression
		}
		return zlib.NewWriterLevel(w, level)
	case AlgorithmDeflate:
		if level == 0 {
			level = flate.DefaultCompression
		}
		return flate.NewWriter(w, level)
	case AlgorithmZstd:
		if level == 0 {
			level = 3
		}
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	case AlgorithmLZ4:
		lw := lz4.NewWriter(w)
		if level > 0 {
			if err := lw.Apply(lz4.CompressionLevelOption(lz4Level(level))); err != nil {
				return nil, err
			}
		}
		return lw, nil
	case AlgorithmBrotli:
		if level == 0 {
			level = brotli.DefaultCompression
		}
		return brotli.NewWriterLevel(w, level), nil
	case AlgorithmSnappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// createDecompressor creates a decompressor for the specified algorithm.
func createDecompressor(algo Algorithm, r io.Reader) (io.ReadCloser, error) {
	switch algo {
	case AlgorithmGzip:
		return gzip.NewReader(r)
	case AlgorithmZlib:
		return zlib.NewReader(r)
	case AlgorithmDeflate:
		return flate.NewReader(r), nil
	case AlgorithmZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	case AlgorithmLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case AlgorithmBrotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	case AlgorithmSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// createCompressorDict creates a compressor seeded with a preset
// dictionary. Only the zlib, deflate and zstd codecs carry dictionaries.
func createCompressorDict(algo Algorithm, w io.Writer, level int, dict []byte) (io.WriteCloser, error) {
	switch algo {
	case AlgorithmZlib:
		return zlib.NewWriterLevelDict(w, dictLevel(level), dict)
	case AlgorithmDeflate:
		return flate.NewWriterDict(w, dictLevel(level), dict)
	case AlgorithmZstd:
		if level == 0 {
			level = 3
		}
		return zstd.NewWriter(w,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
			zstd.WithEncoderDict(dict))
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// createDecompressorDict creates a decompressor seeded with a preset
// dictionary.
func createDecompressorDict(algo Algorithm, r io.Reader, dict []byte) (io.ReadCloser, error) {
	switch algo {
	case AlgorithmZlib:
		return zlib.NewReaderDict(r, dict)
	case AlgorithmDeflate:
		return flate.NewReaderDict(r, dict), nil
	case AlgorithmZstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderDicts(dict))
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

func lz4Level(level int) lz4.CompressionLevel {
	switch {
	case level <= 0:
		return lz4.Fast
	case level >= 9:
		return lz4.Level9
	}
	return [...]lz4.CompressionLevel{
		lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
		lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8,
	}[level-1]
}

// CompressBytes compresses a byte slice with the specified algorithm and
// level.
func CompressBytes(data []byte, algo Algorithm, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := createCompressor(algo, &buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressBytes decompresses a byte slice. AlgorithmAuto detects the
// codec from the data's magic bytes.
func DecompressBytes(data []byte, algo Algorithm) ([]byte, error) {
	if algo == AlgorithmAuto {
		detected, ok := IsCompressed(data)
		if !ok {
			return nil, ErrUnsupportedAlgorithm
		}
		algo = detected
	}
	r, err := createDecompressor(algo, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// CompressBytesDict is CompressBytes with a preset dictionary.
func CompressBytesDict(data []byte, algo Algorithm, level int, dict []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := createCompressorDict(algo, &buf, level, dict)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecompressBytesDict is DecompressBytes with a preset dictionary.
func DecompressBytesDict(data []byte, algo Algorithm, dict []byte) ([]byte, error) {
	r, err := createDecompressorDict(algo, bytes.NewReader(data), dict)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
