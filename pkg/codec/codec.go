// Package codec implements the payload envelope used for binary columns.
//
// An enveloped payload starts with a magic byte followed by a format tag:
//
//	0xA5 'z' <zlib stream>     compressed payload
//	0xA5 'r' <bytes>           stored as-is (compression did not help)
//	0xA5 'o' <object key>      payload lives in object storage
//
// Payloads without the magic byte predate the envelope. They are decoded by
// trying zlib and gzip in turn and are returned unchanged when neither applies.
// A legacy payload whose first two bytes happen to form a known envelope
// header is read as enveloped; `showcasectl assets recompress` rewrites every
// legacy row so none remain afterwards.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

const (
	magic = 0xA5

	// DefaultLevel balances speed and ratio.
	DefaultLevel = 6
)

// Format identifies how an enveloped payload is encoded.
type Format byte

const (
	FormatLegacy Format = 0
	FormatRaw    Format = 'r'
	FormatZlib   Format = 'z'
	FormatObject Format = 'o'
)

func (f Format) String() string {
	switch f {
	case FormatRaw:
		return "raw"
	case FormatZlib:
		return "zlib"
	case FormatObject:
		return "object"
	default:
		return "legacy"
	}
}

var (
	// ErrCorrupt is returned when an enveloped compressed payload cannot be inflated.
	ErrCorrupt = errors.New("codec: corrupt payload")
	// ErrObjectReference is returned by Decompress for payloads stored in object storage.
	ErrObjectReference = errors.New("codec: payload is an object reference")
)

// Codec compresses payloads at a fixed level.
type Codec struct {
	level int
}

// New creates a codec. Levels outside 1..9 fall back to DefaultLevel.
func New(level int) *Codec {
	if level < zlib.BestSpeed || level > zlib.BestCompression {
		level = DefaultLevel
	}
	return &Codec{level: level}
}

// Level returns the compression level in use.
func (c *Codec) Level() int { return c.level }

// Compress wraps data in an envelope. Empty input yields empty output.
func (c *Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 2)
	buf.WriteByte(magic)
	buf.WriteByte(byte(FormatZlib))

	w, err := zlib.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("zlib writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}

	if buf.Len() >= len(data)+2 {
		return wrap(FormatRaw, data), nil
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress. Legacy payloads that are not compressed are
// returned unchanged.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	format, body := Inspect(data)
	switch format {
	case FormatRaw:
		return body, nil
	case FormatZlib:
		out, err := inflateZlib(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return out, nil
	case FormatObject:
		return nil, ErrObjectReference
	default:
		return decodeLegacy(data), nil
	}
}

// Inspect reports the envelope format of data and returns the body.
func Inspect(data []byte) (Format, []byte) {
	if len(data) < 2 || data[0] != magic {
		return FormatLegacy, data
	}
	switch f := Format(data[1]); f {
	case FormatRaw, FormatZlib, FormatObject:
		return f, data[2:]
	default:
		return FormatLegacy, data
	}
}

// Reference builds an envelope pointing at an object storage key.
func Reference(key string) []byte {
	return wrap(FormatObject, []byte(key))
}

// ObjectKey extracts the storage key from a reference envelope.
func ObjectKey(data []byte) (string, bool) {
	format, body := Inspect(data)
	if format != FormatObject || len(body) == 0 {
		return "", false
	}
	return string(body), true
}

func wrap(f Format, body []byte) []byte {
	out := make([]byte, 0, len(body)+2)
	out = append(out, magic, byte(f))
	return append(out, body...)
}

func inflateZlib(body []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func inflateGzip(body []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func decodeLegacy(data []byte) []byte {
	if looksLikeZlib(data) {
		if out, err := inflateZlib(data); err == nil {
			return out
		}
	}
	if len(data) > 2 && data[0] == 0x1f && data[1] == 0x8b {
		if out, err := inflateGzip(data); err == nil {
			return out
		}
	}
	return data
}

// looksLikeZlib checks the RFC 1950 header: deflate method and a valid FCHECK.
func looksLikeZlib(data []byte) bool {
	if len(data) < 2 {
		return false
	}
	cmf, flg := data[0], data[1]
	return cmf&0x0f == 8 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// Ratio returns compressed size as a percentage of the original size.
func Ratio(original, compressed int) float64 {
	if original == 0 {
		return 0
	}
	return float64(compressed) / float64(original) * 100
}

// FormatSize renders a byte count for humans, e.g. "1.50 MB".
func FormatSize(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.2f TB", size)
}
