package zstream

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

var extensionMap = map[Algorithm]string{
	AlgorithmGzip:    ".gz",
	AlgorithmZlib:    ".zz",
	AlgorithmDeflate: ".deflate",
	AlgorithmZstd:    ".zst",
	AlgorithmLZ4:     ".lz4",
	AlgorithmBrotli:  ".br",
	AlgorithmSnappy:  ".sz",
}

var reverseExtensionMap = map[string]Algorithm{
	".gz":      AlgorithmGzip,
	".gzip":    AlgorithmGzip,
	".zz":      AlgorithmZlib,
	".zlib":    AlgorithmZlib,
	".deflate": AlgorithmDeflate,
	".zst":     AlgorithmZstd,
	".zstd":    AlgorithmZstd,
	".lz4":     AlgorithmLZ4,
	".br":      AlgorithmBrotli,
	".sz":      AlgorithmSnappy,
	".snappy":  AlgorithmSnappy,
}

// Magic byte prefixes, checked longest first so the snappy framing header
// cannot be shadowed by a shorter prefix. Zlib and raw deflate carry no
// magic; zlib is matched by its header checksum instead.
var magicPrefixes = []struct {
	algo  Algorithm
	magic []byte
}{
	{AlgorithmSnappy, []byte{0xff, 0x06, 0x00, 0x00, 0x73, 0x4e, 0x61, 0x50}},
	{AlgorithmZstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{AlgorithmLZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
	{AlgorithmGzip, []byte{0x1f, 0x8b}},
}

// GetExtension returns the canonical file extension for an algorithm.
func GetExtension(algo Algorithm) string {
	return extensionMap[algo]
}

// DetectAlgorithmFromExtension detects the algorithm from a file name's
// extension.
func DetectAlgorithmFromExtension(name string) (Algorithm, bool) {
	algo, ok := reverseExtensionMap[strings.ToLower(filepath.Ext(name))]
	return algo, ok
}

// DetectAlgorithm reads up to 8 bytes from r and detects the compression
// algorithm from its magic bytes. It returns an empty algorithm when no
// known format matches; the consumed bytes are not pushed back.
func DetectAlgorithm(r io.Reader) (Algorithm, error) {
	buf := make([]byte, 8)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	algo, _ := IsCompressed(buf[:n])
	return algo, nil
}

// IsCompressed checks whether data begins with a known compressed-stream
// header and reports which algorithm produced it.
func IsCompressed(data []byte) (Algorithm, bool) {
	for _, p := range magicPrefixes {
		if len(data) >= len(p.magic) && bytes.Equal(data[:len(p.magic)], p.magic) {
			return p.algo, true
		}
	}
	if len(data) >= 2 && zlibHeaderValid(data[0], data[1]) {
		return AlgorithmZlib, true
	}
	return "", false
}

// AddExtension appends the algorithm's extension to a file name. When
// preserveOriginal is false the original extension is replaced instead.
func AddExtension(name string, algo Algorithm, preserveOriginal bool) string {
	ext := GetExtension(algo)
	if ext == "" {
		return name
	}
	if preserveOriginal {
		return name + ext
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// StripExtension removes a compression extension from a file name and
// reports which algorithm it implied.
func StripExtension(name string) (string, Algorithm, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if algo, ok := reverseExtensionMap[ext]; ok {
		return name[:len(name)-len(ext)], algo, true
	}
	return name, "", false
}

// HasCompressionExtension checks whether a file name carries a known
// compression extension.
func HasCompressionExtension(name string) bool {
	_, ok := reverseExtensionMap[strings.ToLower(filepath.Ext(name))]
	return ok
}
