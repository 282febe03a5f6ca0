package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
	"wa-gateway/errors"
)

const MiB int64 = 1024 * 1024

type Category string

const (
	CategoryImage Category = "image"
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
	CategoryOther Category = "other"
)

var ceilings = map[Category]int64{
	CategoryImage: 16 * MiB,
	CategoryVideo: 64 * MiB,
	CategoryAudio: 64 * MiB,
	CategoryOther: 100 * MiB,
}

// CategoryOf classifies a content type by its top level prefix.
func CategoryOf(contentType string) Category {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return CategoryImage
	case strings.HasPrefix(contentType, "video/"):
		return CategoryVideo
	case strings.HasPrefix(contentType, "audio/"):
		return CategoryAudio
	default:
		return CategoryOther
	}
}

func (c Category) Ceiling() int64 {
	if limit, ok := ceilings[c]; ok {
		return limit
	}
	return ceilings[CategoryOther]
}

// CheckSize fails when size is strictly above the category ceiling.
func (c Category) CheckSize(size int64) error {
	if size > c.Ceiling() {
		return &errors.PayloadTooLargeError{Category: string(c), Limit: c.Ceiling()}
	}
	return nil
}

// CheckUploadSize applies the ceiling of the content type category. The error
// names the top level media type the caller sent.
func CheckUploadSize(contentType string, size int64) error {
	category := CategoryOf(contentType)
	if size <= category.Ceiling() {
		return nil
	}
	label, _, _ := strings.Cut(contentType, "/")
	if label == "" {
		label = string(category)
	}
	return &errors.PayloadTooLargeError{Category: label, Limit: category.Ceiling()}
}

// Upload is what the transport layer hands over for a media send.
// Data wins over TempFilePath when both are set.
type Upload struct {
	Data         []byte
	TempFilePath string
	ContentType  string
	Filename     string
	DeclaredSize int64
}

// MediaEnvelope is a verified payload ready for the engine.
type MediaEnvelope struct {
	contentType string
	data        string
	filename    string
	size        int64
	category    Category
}

func NewMediaEnvelope(contentType string, raw []byte, filename string) (MediaEnvelope, error) {
	if len(raw) == 0 {
		return MediaEnvelope{}, errors.ErrEmptyUpload
	}
	if err := CheckUploadSize(contentType, int64(len(raw))); err != nil {
		return MediaEnvelope{}, err
	}
	encoded := base64.StdEncoding.EncodeToString(raw)
	if encoded == "" {
		return MediaEnvelope{}, fmt.Errorf("%w: %s", errors.ErrEncodingFailed, filename)
	}
	return MediaEnvelope{
		contentType: contentType,
		data:        encoded,
		filename:    filename,
		size:        int64(len(raw)),
		category:    CategoryOf(contentType),
	}, nil
}

func (m MediaEnvelope) ContentType() string { return m.contentType }
func (m MediaEnvelope) Data() string        { return m.data }
func (m MediaEnvelope) Filename() string    { return m.filename }
func (m MediaEnvelope) SizeBytes() int64    { return m.size }
func (m MediaEnvelope) Category() Category  { return m.category }
func (m MediaEnvelope) IsZero() bool        { return m.data == "" }

// Decode returns the raw bytes the engine uploads.
func (m MediaEnvelope) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.data)
}
