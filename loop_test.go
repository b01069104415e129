package zstream

import (
	"bytes"
	"math/rand"
	"testing"
)

// testPattern returns n bytes of seeded pseudo-random data, effectively
// incompressible.
func testPattern(n int) []byte {
	rng := rand.New(rand.NewSource(1))
	buf := make([]byte, n)
	rng.Read(buf)
	return buf
}

func roundTrip(t *testing.T, format WindowFormat, payload []byte) {
	t.Helper()
	compressed, err := Compress(payload, format, nil)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	restored, err := Decompress(compressed, format, nil)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(restored), len(payload))
	}
}

func TestRoundTripFormats(t *testing.T) {
	payloads := map[string][]byte{
		"empty":      {},
		"one byte":   {0x42},
		"text":       []byte("Hello, World!"),
		"repetitive": bytes.Repeat([]byte("za zlib stream walks into a bar "), 4096),
		"random":     testPattern(256 * 1024),
	}
	formats := map[string]WindowFormat{
		"raw":  Raw(),
		"zlib": Zlib(),
		"gzip": Gzip(),
	}
	for fname, format := range formats {
		for pname, payload := range payloads {
			t.Run(fname+"/"+pname, func(t *testing.T) {
				roundTrip(t, format, payload)
			})
		}
	}
}

func TestAutoDetect(t *testing.T) {
	payload := []byte("sniff me")
	for name, format := range map[string]WindowFormat{"zlib": Zlib(), "gzip": Gzip()} {
		t.Run(name, func(t *testing.T) {
			compressed, err := Compress(payload, format, nil)
			if err != nil {
				t.Fatal(err)
			}
			restored, err := Decompress(compressed, AutoDetect(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(restored, payload) {
				t.Fatal("round trip mismatch")
			}
		})
	}
}

func TestAutoDetectRejectsGarbage(t *testing.T) {
	_, err := Decompress([]byte{0x00, 0x01, 0x02, 0x03}, AutoDetect(), nil)
	ee, ok := AsEngineError(err)
	if !ok {
		t.Fatalf("error = %v, want EngineError", err)
	}
	if ee.Status != StatusFormatError {
		t.Fatalf("status = %v, want format-error", ee.Status)
	}
}

func TestCorruptStream(t *testing.T) {
	compressed, err := Compress(bytes.Repeat([]byte("solid data "), 1000), Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	// Damage the deflate body, past the header.
	compressed[len(compressed)/2] ^= 0xff

	_, err = Decompress(compressed, Zlib(), nil)
	ee, ok := AsEngineError(err)
	if !ok {
		t.Fatalf("error = %v, want EngineError", err)
	}
	if ee.Status != StatusDataError {
		t.Fatalf("status = %v, want data-error", ee.Status)
	}
}

func TestTruncatedStream(t *testing.T) {
	compressed, err := Compress(testPattern(4096), Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decompress(compressed[:len(compressed)/2], Zlib(), nil)
	if err == nil {
		t.Fatal("truncated stream decompressed without error")
	}
}

func TestChunkSizeInvariance(t *testing.T) {
	payload := bytes.Repeat([]byte("the same bytes in different chunkings "), 2048)

	oneShot, err := Compress(payload, Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, chunkSize := range []int{1, 7, 4096} {
		s, err := NewCompressor(Zlib(), nil)
		if err != nil {
			t.Fatal(err)
		}
		var chunked []byte
		for off := 0; off < len(payload); off += chunkSize {
			end := off + chunkSize
			if end > len(payload) {
				end = len(payload)
			}
			out, err := s.Process(payload[off:end], NoFlush)
			if err != nil {
				t.Fatal(err)
			}
			chunked = append(chunked, out...)
		}
		out, err := s.Finish()
		if err != nil {
			t.Fatal(err)
		}
		chunked = append(chunked, out...)
		s.Close()

		if !bytes.Equal(chunked, oneShot) {
			t.Errorf("chunk size %d: output differs from one-shot", chunkSize)
		}
	}
}

func TestTinyScratchBuffer(t *testing.T) {
	payload := testPattern(64 * 1024)
	params := &Params{ScratchSize: 16}

	compressed, err := Compress(payload, Gzip(), params)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := Decompress(compressed, Gzip(), params)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("round trip mismatch with 16-byte scratch")
	}
}

func TestSyncFlushMakesDataAvailable(t *testing.T) {
	c, err := NewCompressor(Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	first := []byte("flushed ahead of the stream end")
	prefix, err := c.Process(first, SyncFlush)
	if err != nil {
		t.Fatal(err)
	}
	if len(prefix) == 0 {
		t.Fatal("sync flush produced no output")
	}

	// The flushed prefix alone must decode to the first chunk.
	d, err := NewDecompressor(Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	restored, err := d.Process(prefix, NoFlush)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, first) {
		t.Fatalf("flushed prefix decoded to %q, want %q", restored, first)
	}

	// And the stream still terminates cleanly.
	tail, err := c.Finish()
	if err != nil {
		t.Fatal(err)
	}
	rest, err := d.Process(tail, Finish)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 0 {
		t.Fatalf("tail decoded %d unexpected bytes", len(rest))
	}
}

func TestEmptyInputNoFlushIsNoop(t *testing.T) {
	s, err := NewCompressor(Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	out, err := s.Process(nil, NoFlush)
	if err != nil || len(out) != 0 {
		t.Fatalf("empty NoFlush = (%d bytes, %v), want (0, nil)", len(out), err)
	}
	if s.TotalIn() != 0 || s.TotalOut() != 0 {
		t.Error("no-op call moved the counters")
	}
}

func TestCompressionRatios(t *testing.T) {
	zeros := make([]byte, 1<<20)
	compressed, err := Compress(zeros, Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if ratio := GetCompressionRatio(int64(len(zeros)), int64(len(compressed))); ratio > 0.01 {
		t.Errorf("all-zero ratio = %f, want under 0.01", ratio)
	}

	random := testPattern(1 << 20)
	compressed, err = Compress(random, Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	ratio := GetCompressionRatio(int64(len(random)), int64(len(compressed)))
	if ratio < 0.99 || ratio > 1.01 {
		t.Errorf("random ratio = %f, want within 1%% of 1.0", ratio)
	}
}

func TestDeterministicOutput(t *testing.T) {
	payload := []byte("Hello, World!")
	a, err := Compress(payload, Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compress(payload, Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical input and parameters produced different streams")
	}
}

func TestLevels(t *testing.T) {
	payload := bytes.Repeat([]byte("level test payload with some repetition "), 4096)
	for _, level := range []int{DefaultLevel, BestSpeed, 5, BestCompression} {
		compressed, err := Compress(payload, Zlib(), &Params{Level: level})
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		restored, err := Decompress(compressed, Zlib(), nil)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if !bytes.Equal(restored, payload) {
			t.Fatalf("level %d: round trip mismatch", level)
		}
	}
}

func TestHuffmanOnlyStrategy(t *testing.T) {
	payload := bytes.Repeat([]byte{1, 1, 2, 1, 1, 3}, 10000)
	compressed, err := Compress(payload, Zlib(), HuffmanOnlyParams())
	if err != nil {
		t.Fatal(err)
	}
	restored, err := Decompress(compressed, Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("round trip mismatch")
	}
	if len(compressed) >= len(payload) {
		t.Error("huffman-only failed to shrink a frequency-skewed payload")
	}
}

func TestTrailingGarbageIgnored(t *testing.T) {
	payload := []byte("stream then junk")
	compressed, err := Compress(payload, Gzip(), nil)
	if err != nil {
		t.Fatal(err)
	}
	withJunk := append(append([]byte(nil), compressed...), "trailing garbage"...)

	d, err := NewDecompressor(Gzip(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	restored, err := d.Process(withJunk, NoFlush)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("round trip mismatch")
	}
	if d.State() != StateFinished {
		t.Errorf("state = %v, want finished at stream end", d.State())
	}
}
