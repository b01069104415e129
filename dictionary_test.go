package zstream

import (
	"bytes"
	"errors"
	"testing"
)

var testDict = []byte("the quick brown fox jumps over the lazy dog")

func TestRawDictionaryRoundTrip(t *testing.T) {
	payload := []byte("the quick brown fox jumps over the lazy dog, twice over")
	params := &Params{Dictionary: testDict}

	compressed, err := Compress(payload, Raw(), params)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := Decompress(compressed, Raw(), params)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("round trip mismatch")
	}

	// A raw stream compressed with a dictionary is gibberish without it.
	if restored, err := Decompress(compressed, Raw(), nil); err == nil && bytes.Equal(restored, payload) {
		t.Error("stream decoded correctly without the dictionary it was built with")
	}
}

func TestZlibDictionaryResolvedFromParams(t *testing.T) {
	payload := append(append([]byte(nil), testDict...), " and then some more text"...)
	compressed, err := Compress(payload, Zlib(), &Params{Dictionary: testDict})
	if err != nil {
		t.Fatal(err)
	}

	// The configured dictionary satisfies the stream's FDICT demand
	// without caller involvement.
	restored, err := Decompress(compressed, Zlib(), &Params{Dictionary: testDict})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("round trip mismatch")
	}
}

func TestZlibDictionaryRequired(t *testing.T) {
	payload := append(append([]byte(nil), testDict...), " trailing"...)
	compressed, err := Compress(payload, Zlib(), &Params{Dictionary: testDict})
	if err != nil {
		t.Fatal(err)
	}

	d, err := NewDecompressor(Zlib(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	_, err = d.Process(compressed, Finish)
	if !errors.Is(err, ErrDictionaryRequired) {
		t.Fatalf("error = %v, want ErrDictionaryRequired", err)
	}

	// Supply the dictionary and resume past the bytes already consumed.
	if err := d.SetDictionary(testDict); err != nil {
		t.Fatalf("SetDictionary: %v", err)
	}
	restored, err := d.Process(compressed[d.TotalIn():], Finish)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(restored, payload) {
		t.Fatal("round trip mismatch after supplying dictionary")
	}
}

func TestZlibWrongDictionary(t *testing.T) {
	payload := append(append([]byte(nil), testDict...), " tail"...)
	compressed, err := Compress(payload, Zlib(), &Params{Dictionary: testDict})
	if err != nil {
		t.Fatal(err)
	}

	_, err = Decompress(compressed, Zlib(), &Params{Dictionary: []byte("not that dictionary")})
	ee, ok := AsEngineError(err)
	if !ok {
		t.Fatalf("error = %v, want EngineError", err)
	}
	if ee.Status != StatusDataError {
		t.Fatalf("status = %v, want data-error", ee.Status)
	}
}

func TestGzipDictionaryRejected(t *testing.T) {
	s, err := NewCompressor(Gzip(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// The framing has no dictionary id field; the set call is accepted
	// but the stream cannot start.
	if err := s.SetDictionary(testDict); err != nil {
		t.Fatalf("SetDictionary: %v", err)
	}
	if _, err := s.Process([]byte("data"), Finish); err == nil {
		t.Fatal("gzip stream started with a preset dictionary")
	}
}

func TestDictionaryEffectiveAtEveryLevel(t *testing.T) {
	payload := append(append([]byte(nil), testDict...), '!')
	for _, level := range []int{DefaultLevel, BestSpeed, 3, 5, 6, 7, BestCompression} {
		params := &Params{Level: level, Dictionary: testDict}
		primed, err := Compress(payload, Raw(), params)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		plain, err := Compress(payload, Raw(), &Params{Level: level})
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if len(primed) >= len(plain) {
			t.Errorf("level %d: primed stream is %d bytes, plain %d; dictionary had no effect", level, len(primed), len(plain))
		}
		// A stream that truly references the dictionary cannot decode
		// cleanly without it.
		if restored, err := Decompress(primed, Raw(), nil); err == nil && bytes.Equal(restored, payload) {
			t.Errorf("level %d: stream decoded without the dictionary", level)
		}
		restored, err := Decompress(primed, Raw(), params)
		if err != nil {
			t.Fatalf("level %d: %v", level, err)
		}
		if !bytes.Equal(restored, payload) {
			t.Fatalf("level %d: round trip mismatch", level)
		}
	}
}

func TestDictionaryImprovesRatio(t *testing.T) {
	payload := append(append([]byte(nil), testDict...), '!')

	plain, err := Compress(payload, Raw(), nil)
	if err != nil {
		t.Fatal(err)
	}
	primed, err := Compress(payload, Raw(), &Params{Dictionary: testDict})
	if err != nil {
		t.Fatal(err)
	}
	if len(primed) >= len(plain) {
		t.Errorf("primed stream is %d bytes, plain %d; dictionary should shrink it", len(primed), len(plain))
	}
}
