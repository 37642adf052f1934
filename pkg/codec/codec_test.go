package codec

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"crypto/rand"
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	c := New(DefaultLevel)

	random := make([]byte, 4096)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("rand: %v", err)
	}

	cases := map[string][]byte{
		"single byte": {0x01},
		"text":        []byte("glTF binary model payload glTF binary model payload"),
		"repetitive":  bytes.Repeat([]byte("abc"), 10_000),
		"random":      random,
		"magic only":  {magic},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			enc, err := c.Compress(input)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if enc[0] != magic {
				t.Fatalf("expected envelope magic, got %#x", enc[0])
			}
			dec, err := c.Decompress(enc)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(dec, input) {
				t.Fatalf("round trip mismatch: got %d bytes, want %d", len(dec), len(input))
			}
		})
	}
}

func TestCompressShrinksRepetitiveData(t *testing.T) {
	c := New(DefaultLevel)
	input := bytes.Repeat([]byte("hdri"), 4096)
	enc, err := c.Compress(input)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if f, _ := Inspect(enc); f != FormatZlib {
		t.Fatalf("expected zlib format, got %s", f)
	}
	if len(enc) >= len(input) {
		t.Fatalf("expected compressed payload smaller than %d, got %d", len(input), len(enc))
	}
}

func TestIncompressibleDataStoredRaw(t *testing.T) {
	c := New(DefaultLevel)
	input := make([]byte, 512)
	if _, err := rand.Read(input); err != nil {
		t.Fatalf("rand: %v", err)
	}
	enc, err := c.Compress(input)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if f, _ := Inspect(enc); f != FormatRaw {
		t.Fatalf("expected raw format, got %s", f)
	}
}

func TestEmptyPassesThrough(t *testing.T) {
	c := New(DefaultLevel)
	enc, err := c.Compress(nil)
	if err != nil || len(enc) != 0 {
		t.Fatalf("Compress(nil) = %v, %v", enc, err)
	}
	dec, err := c.Decompress([]byte{})
	if err != nil || len(dec) != 0 {
		t.Fatalf("Decompress(empty) = %v, %v", dec, err)
	}
}

func TestLegacyUncompressedPassesThrough(t *testing.T) {
	c := New(DefaultLevel)
	inputs := [][]byte{
		[]byte("plain text that was never compressed"),
		{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
		{'g', 'l', 'T', 'F', 2, 0, 0, 0},
		{0x78, 0x9c, 0xde, 0xad, 0xbe, 0xef},
		{0x1f, 0x8b, 0x00},
		{magic, 'x', 1, 2, 3},
	}
	for _, input := range inputs {
		dec, err := c.Decompress(input)
		if err != nil {
			t.Fatalf("Decompress(%x) returned error: %v", input, err)
		}
		if !bytes.Equal(dec, input) {
			t.Fatalf("Decompress(%x) = %x, want passthrough", input, dec)
		}
	}
}

func TestLegacyCompressedRowsStillDecode(t *testing.T) {
	c := New(DefaultLevel)
	want := []byte("legacy banner bytes")

	t.Run("zlib", func(t *testing.T) {
		var buf bytes.Buffer
		w, _ := zlib.NewWriterLevel(&buf, 6)
		_, _ = w.Write(want)
		_ = w.Close()
		got, err := c.Decompress(buf.Bytes())
		if err != nil || !bytes.Equal(got, want) {
			t.Fatalf("got %q, %v", got, err)
		}
	})

	t.Run("gzip", func(t *testing.T) {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		_, _ = w.Write(want)
		_ = w.Close()
		got, err := c.Decompress(buf.Bytes())
		if err != nil || !bytes.Equal(got, want) {
			t.Fatalf("got %q, %v", got, err)
		}
	})
}

func TestCorruptEnvelopeIsAnError(t *testing.T) {
	c := New(DefaultLevel)
	enc, err := c.Compress(bytes.Repeat([]byte("model"), 1000))
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	enc = enc[:len(enc)/2]
	if _, err := c.Decompress(enc); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestObjectReference(t *testing.T) {
	c := New(DefaultLevel)
	ref := Reference("assets/1234")
	key, ok := ObjectKey(ref)
	if !ok || key != "assets/1234" {
		t.Fatalf("ObjectKey = %q, %v", key, ok)
	}
	if _, err := c.Decompress(ref); !errors.Is(err, ErrObjectReference) {
		t.Fatalf("expected ErrObjectReference, got %v", err)
	}
	if _, ok := ObjectKey([]byte("not a reference")); ok {
		t.Fatal("expected plain bytes not to be a reference")
	}
}

func TestNewClampsLevel(t *testing.T) {
	if New(0).Level() != DefaultLevel || New(42).Level() != DefaultLevel {
		t.Fatal("expected out of range levels to fall back to default")
	}
	if New(9).Level() != 9 {
		t.Fatal("expected level 9 to be kept")
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		0:               "0.00 B",
		1536:            "1.50 KB",
		5 * 1024 * 1024: "5.00 MB",
	}
	for in, want := range cases {
		if got := FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", in, got, want)
		}
	}
	if Ratio(0, 10) != 0 || Ratio(200, 50) != 25 {
		t.Error("unexpected Ratio result")
	}
}

func TestLegacyRowsStartingWithMagicReadAsEnvelope(t *testing.T) {
	c := New(DefaultLevel)

	out, err := c.Decompress([]byte{magic, 'r', 'x', 'y'})
	if err != nil || !bytes.Equal(out, []byte("xy")) {
		t.Fatalf("raw tag: got %q, %v", out, err)
	}
	if _, err := c.Decompress([]byte{magic, 'z', 1, 2, 3}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("zlib tag: expected ErrCorrupt, got %v", err)
	}
	if _, err := c.Decompress([]byte{magic, 'o', 'k'}); !errors.Is(err, ErrObjectReference) {
		t.Fatalf("object tag: expected ErrObjectReference, got %v", err)
	}

	// Any other second byte keeps the legacy passthrough.
	legacy := []byte{magic, 'q', 'x'}
	out, err = c.Decompress(legacy)
	if err != nil || !bytes.Equal(out, legacy) {
		t.Fatalf("unknown tag: got %q, %v", out, err)
	}
}
