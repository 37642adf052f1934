// Package assetstore turns uploaded payloads into model.Slot values and back.
//
// A slot is Inline (enveloped bytes in the row, or a reference to an object
// offloaded to storage), External (a URL) or Absent.
package assetstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/codec"
	"github.com/yi-nology/showcase/pkg/constants"
	"github.com/yi-nology/showcase/pkg/fetcher"
	"github.com/yi-nology/showcase/pkg/storage"
)

const objectPrefix = constants.ObjectKeyPrefix

var (
	// ErrMissingContent means the slot has neither data nor URL.
	ErrMissingContent = errors.New("asset content missing")
	// ErrInvalidURL rejects URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("asset url must be an absolute http or https url")
)

// ExternalMode decides how External slots are served.
type ExternalMode int

const (
	// Redirect sends the client to the URL.
	Redirect ExternalMode = iota
	// Proxy fetches the URL server side.
	Proxy
)

// Policy controls Resolve.
type Policy struct {
	External     ExternalMode
	FallbackMime string
}

// Resolved is either a redirect target or a payload.
type Resolved struct {
	Redirect string
	Data     []byte
	MimeType string
}

// Fetcher downloads External slots under the Proxy policy.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, mimeType string) (*fetcher.Result, error)
}

// Store encodes and resolves asset slots.
type Store struct {
	codec     *codec.Codec
	objects   storage.Storage
	fetcher   Fetcher
	threshold int64
}

// New builds a Store. objects may be nil, in which case nothing is offloaded.
// threshold is the encoded size above which payloads are offloaded; zero
// disables offloading.
func New(c *codec.Codec, objects storage.Storage, f Fetcher, threshold int64) *Store {
	if c == nil {
		c = codec.New(codec.DefaultLevel)
	}
	return &Store{codec: c, objects: objects, fetcher: f, threshold: threshold}
}

// Codec exposes the codec in use.
func (s *Store) Codec() *codec.Codec { return s.codec }

// Encode builds a slot. A non-empty rawURL produces an External slot and data
// is ignored; otherwise data produces an Inline slot, and no data an Absent one.
func (s *Store) Encode(ctx context.Context, data []byte, mimeType, rawURL string) (model.Slot, error) {
	if rawURL = strings.TrimSpace(rawURL); rawURL != "" {
		if err := ValidateURL(rawURL); err != nil {
			return model.Slot{}, err
		}
		return model.Slot{URL: rawURL, MimeType: mimeType}, nil
	}
	if len(data) == 0 {
		return model.Slot{}, nil
	}

	encoded, err := s.codec.Compress(data)
	if err != nil {
		return model.Slot{}, fmt.Errorf("compress payload: %w", err)
	}
	if s.objects == nil || s.threshold <= 0 || int64(len(encoded)) <= s.threshold {
		return model.Slot{Data: encoded, MimeType: mimeType}, nil
	}

	key := objectPrefix + uuid.NewString()
	if err := s.objects.PutObject(ctx, key, bytes.NewReader(encoded), mimeType, int64(len(encoded))); err != nil {
		return model.Slot{}, fmt.Errorf("offload payload: %w", err)
	}
	return model.Slot{Data: codec.Reference(key), MimeType: mimeType}, nil
}

// Decode returns the original bytes of an Inline slot payload, following
// object references.
func (s *Store) Decode(ctx context.Context, data []byte) ([]byte, error) {
	key, ok := codec.ObjectKey(data)
	if !ok {
		return s.codec.Decompress(data)
	}
	if s.objects == nil {
		return nil, fmt.Errorf("object %s referenced but no storage configured", key)
	}
	r, err := s.objects.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: object %s", ErrMissingContent, key)
		}
		return nil, err
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return s.codec.Decompress(raw)
}

// Resolve serves a slot according to the policy.
func (s *Store) Resolve(ctx context.Context, slot model.Slot, p Policy) (*Resolved, error) {
	content := slot.Content()
	switch content.Kind {
	case model.ContentExternal:
		if p.External == Redirect || s.fetcher == nil {
			return &Resolved{Redirect: content.URL}, nil
		}
		mimeType := content.MimeType
		if mimeType == "" {
			mimeType = p.FallbackMime
		}
		res, err := s.fetcher.Fetch(ctx, content.URL, mimeType)
		if err != nil {
			return nil, err
		}
		return &Resolved{Data: res.Data, MimeType: res.MimeType}, nil

	case model.ContentInline:
		data, err := s.Decode(ctx, content.Data)
		if err != nil {
			return nil, err
		}
		mimeType := content.MimeType
		if mimeType == "" {
			mimeType = p.FallbackMime
		}
		return &Resolved{Data: data, MimeType: mimeType}, nil

	default:
		return nil, ErrMissingContent
	}
}

// Release deletes offloaded objects referenced by the slots. Failures are
// logged and otherwise ignored.
func (s *Store) Release(ctx context.Context, slots ...model.Slot) {
	if s.objects == nil {
		return
	}
	for _, slot := range slots {
		key, ok := codec.ObjectKey(slot.Data)
		if !ok {
			continue
		}
		if err := s.objects.DeleteObject(ctx, key); err != nil {
			hlog.CtxWarnf(ctx, "release object %s: %v", key, err)
		}
	}
}

// Reencode rewrites a legacy Inline payload into the current envelope. It
// reports false when the slot needed no change.
func (s *Store) Reencode(ctx context.Context, slot model.Slot) (model.Slot, bool, error) {
	if slot.Content().Kind != model.ContentInline {
		return slot, false, nil
	}
	if format, _ := codec.Inspect(slot.Data); format != codec.FormatLegacy {
		return slot, false, nil
	}
	raw, err := s.codec.Decompress(slot.Data)
	if err != nil {
		return slot, false, err
	}
	out, err := s.Encode(ctx, raw, slot.MimeType, "")
	if err != nil {
		return slot, false, err
	}
	return out, true, nil
}

// ValidateURL accepts absolute http and https URLs only.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}
