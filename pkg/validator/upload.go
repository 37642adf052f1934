package validator

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
)

// Allowed upload extensions per asset kind.
var (
	ModelExtensions   = []string{".glb"}
	ImageExtensions   = []string{".png", ".jpg", ".jpeg"}
	ArchiveExtensions = []string{".zip"}
	HDRIExtensions    = []string{".hdr", ".exr"}
)

// Mimetypes served for asset kinds whose upload does not declare one.
const (
	MimeGLB     = "model/gltf-binary"
	MimeZip     = "application/zip"
	MimeHDR     = "image/vnd.radiance"
	MimeEXR     = "image/x-exr"
	MimeJPEG    = "image/jpeg"
	MimeOctet   = "application/octet-stream"
	DefaultMime = MimeOctet
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// AllowedFile reports whether name has one of the extensions (case-insensitive).
func AllowedFile(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	if ext == "" {
		return false
	}
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// UploadConfig defines constraints for file uploads.
type UploadConfig struct {
	MaxFileSize int64
}

// ValidateFile checks size and extension of an uploaded file.
func (c *UploadConfig) ValidateFile(name string, size int64, extensions []string) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if c.MaxFileSize > 0 && size > c.MaxFileSize {
		return ErrFileTooLarge
	}
	if !AllowedFile(name, extensions) {
		return ErrUnsupportedType
	}
	return nil
}

// ImageMime returns the mimetype of an image upload, preferring the declared
// type and falling back to content sniffing.
func ImageMime(declared string, data []byte) string {
	if mt := normalizeMime(declared); strings.HasPrefix(mt, "image/") {
		return mt
	}
	if mt := normalizeMime(http.DetectContentType(data)); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return MimeJPEG
}

// HDRIMime maps an environment map file name to its mimetype.
func HDRIMime(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".exr") {
		return MimeEXR
	}
	return MimeHDR
}

func normalizeMime(mt string) string {
	mt = strings.ToLower(strings.TrimSpace(mt))
	if idx := strings.Index(mt, ";"); idx > 0 {
		mt = strings.TrimSpace(mt[:idx])
	}
	return mt
}
