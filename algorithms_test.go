package zstream

import (
	"bytes"
	"errors"
	"testing"
)

var oneShotAlgorithms = []Algorithm{
	AlgorithmGzip,
	AlgorithmZlib,
	AlgorithmDeflate,
	AlgorithmZstd,
	AlgorithmLZ4,
	AlgorithmBrotli,
	AlgorithmSnappy,
}

func TestAlgorithmRoundTrips(t *testing.T) {
	payload := bytes.Repeat([]byte("one-shot registry payload "), 2048)
	for _, algo := range oneShotAlgorithms {
		t.Run(string(algo), func(t *testing.T) {
			compressed, err := CompressBytes(payload, algo, 0)
			if err != nil {
				t.Fatalf("compress: %v", err)
			}
			if len(compressed) >= len(payload) {
				t.Errorf("repetitive payload grew from %d to %d bytes", len(payload), len(compressed))
			}
			restored, err := DecompressBytes(compressed, algo)
			if err != nil {
				t.Fatalf("decompress: %v", err)
			}
			if !bytes.Equal(restored, payload) {
				t.Fatal("round trip mismatch")
			}
		})
	}
}

func TestAlgorithmLevels(t *testing.T) {
	payload := bytes.Repeat([]byte("level sweep "), 4096)
	cases := map[Algorithm][]int{
		AlgorithmGzip:   {1, 6, 9},
		AlgorithmZstd:   {1, 3, 19},
		AlgorithmLZ4:    {1, 9},
		AlgorithmBrotli: {1, 6, 11},
	}
	for algo, levels := range cases {
		for _, level := range levels {
			compressed, err := CompressBytes(payload, algo, level)
			if err != nil {
				t.Fatalf("%s level %d: %v", algo, level, err)
			}
			restored, err := DecompressBytes(compressed, algo)
			if err != nil {
				t.Fatalf("%s level %d: %v", algo, level, err)
			}
			if !bytes.Equal(restored, payload) {
				t.Fatalf("%s level %d: round trip mismatch", algo, level)
			}
		}
	}
}

func TestDecompressBytesAuto(t *testing.T) {
	payload := []byte("which codec was that again")
	for _, algo := range []Algorithm{AlgorithmGzip, AlgorithmZlib, AlgorithmZstd, AlgorithmLZ4, AlgorithmSnappy} {
		compressed, err := CompressBytes(payload, algo, 0)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		restored, err := DecompressBytes(compressed, AlgorithmAuto)
		if err != nil {
			t.Fatalf("%s via auto: %v", algo, err)
		}
		if !bytes.Equal(restored, payload) {
			t.Fatalf("%s via auto: round trip mismatch", algo)
		}
	}

	if _, err := DecompressBytes([]byte("plainly not compressed"), AlgorithmAuto); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("auto on plain text = %v, want ErrUnsupportedAlgorithm", err)
	}
}

func TestDictRegistry(t *testing.T) {
	dict := []byte("shared dictionary content for small messages")
	payload := []byte("shared dictionary content, small message")

	for _, algo := range []Algorithm{AlgorithmZlib, AlgorithmDeflate} {
		compressed, err := CompressBytesDict(payload, algo, 0, dict)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		restored, err := DecompressBytesDict(compressed, algo, dict)
		if err != nil {
			t.Fatalf("%s: %v", algo, err)
		}
		if !bytes.Equal(restored, payload) {
			t.Fatalf("%s: round trip mismatch", algo)
		}
	}

	// Codecs without dictionary support refuse up front.
	if _, err := CompressBytesDict(payload, AlgorithmLZ4, 0, dict); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("lz4 dict compress = %v, want ErrUnsupportedAlgorithm", err)
	}
	if _, err := DecompressBytesDict(nil, AlgorithmSnappy, dict); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("snappy dict decompress = %v, want ErrUnsupportedAlgorithm", err)
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	if _, err := CompressBytes([]byte("x"), Algorithm("lzma"), 0); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("compress = %v, want ErrUnsupportedAlgorithm", err)
	}
	if _, err := DecompressBytes([]byte("x"), Algorithm("lzma")); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Errorf("decompress = %v, want ErrUnsupportedAlgorithm", err)
	}
}
