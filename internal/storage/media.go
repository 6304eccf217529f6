package storage

import (
	"alcyxob/boxing-app/internal/domain"
	"bytes"
	"errors"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register decoder
)

var (
	ErrEmptyMedia       = errors.New("media file is empty")
	ErrMediaTooLarge    = errors.New("media file is too large")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrCorruptImage     = errors.New("image could not be decoded")
)

// allowedMedia maps the accepted sniffed content types to the kind stored on documents.
var allowedMedia = map[string]domain.ContentType{
	"image/jpeg":      domain.ContentImage,
	"image/png":       domain.ContentImage,
	"image/webp":      domain.ContentImage,
	"image/gif":       domain.ContentImage,
	"video/mp4":       domain.ContentVideo,
	"video/webm":      domain.ContentVideo,
	"video/quicktime": domain.ContentVideo,
	"video/mov":       domain.ContentVideo,
}

// MediaInfo describes a validated upload.
type MediaInfo struct {
	ContentType string
	Kind        domain.ContentType
	Extension   string
	Width       int // images only
	Height      int
}

// ValidateMedia sniffs the content type of data, ignoring whatever the client claimed,
// and makes sure images actually decode.
func ValidateMedia(data []byte, maxBytes int64) (MediaInfo, error) {
	if len(data) == 0 {
		return MediaInfo{}, ErrEmptyMedia
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return MediaInfo{}, ErrMediaTooLarge
	}

	mtype := mimetype.Detect(data)
	info := MediaInfo{Extension: mtype.Extension()}
	for ct, kind := range allowedMedia {
		if mtype.Is(ct) {
			info.ContentType = ct
			info.Kind = kind
			break
		}
	}
	if info.Kind == "" {
		return MediaInfo{}, ErrUnsupportedMedia
	}

	if info.Kind == domain.ContentImage {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return MediaInfo{}, ErrCorruptImage
		}
		info.Width, info.Height = cfg.Width, cfg.Height
	}
	return info, nil
}

// ObjectKey builds a unique storage key under prefix, keeping the sniffed extension.
func ObjectKey(prefix string, info MediaInfo) string {
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+info.Extension)
}
