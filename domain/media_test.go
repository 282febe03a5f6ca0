package domain

import (
	"encoding/base64"
	"testing"
	"wa-gateway/errors"

	"github.com/stretchr/testify/require"
)

func TestCategoryOf(t *testing.T) {
	req := require.New(t)
	req.Equal(CategoryImage, CategoryOf("image/jpeg"))
	req.Equal(CategoryVideo, CategoryOf("video/mp4"))
	req.Equal(CategoryAudio, CategoryOf("audio/ogg; codecs=opus"))
	req.Equal(CategoryOther, CategoryOf("application/pdf"))
	req.Equal(CategoryOther, CategoryOf(""))
}

func TestCategory_Ceilings(t *testing.T) {
	tests := []struct {
		category Category
		ceiling  int64
	}{
		{CategoryImage, 16 * MiB},
		{CategoryVideo, 64 * MiB},
		{CategoryAudio, 64 * MiB},
		{CategoryOther, 100 * MiB},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			req := require.New(t)
			req.Equal(tt.ceiling, tt.category.Ceiling())

			// Exactly at the ceiling is accepted
			req.NoError(tt.category.CheckSize(tt.ceiling))

			// One byte above is rejected with the category limit
			err := tt.category.CheckSize(tt.ceiling + 1)
			req.ErrorIs(err, errors.ErrPayloadTooLarge)
			var tooLarge *errors.PayloadTooLargeError
			req.ErrorAs(err, &tooLarge)
			req.Equal(tt.ceiling, tooLarge.Limit)
		})
	}
}

func TestCategory_CheckSize_Message(t *testing.T) {
	req := require.New(t)
	err := CategoryImage.CheckSize(16*MiB + 1)
	req.EqualError(err, "File size too large. Maximum size for image files is 16MB.")
}

func TestNewMediaEnvelope(t *testing.T) {
	req := require.New(t)
	raw := []byte("%PDF-1.7 fake")

	// When a small document is wrapped
	envelope, err := NewMediaEnvelope("application/pdf", raw, "doc.pdf")

	// Then the envelope holds base64 data and the original size
	req.NoError(err)
	req.Equal(base64.StdEncoding.EncodeToString(raw), envelope.Data())
	req.Equal(int64(len(raw)), envelope.SizeBytes())
	req.Equal(CategoryOther, envelope.Category())
	req.Equal("doc.pdf", envelope.Filename())

	decoded, err := envelope.Decode()
	req.NoError(err)
	req.Equal(raw, decoded)
}

func TestNewMediaEnvelope_Empty(t *testing.T) {
	req := require.New(t)
	envelope, err := NewMediaEnvelope("image/png", nil, "a.png")
	req.ErrorIs(err, errors.ErrEmptyUpload)
	req.True(envelope.IsZero())
}

func TestNewMediaEnvelope_ImageAboveCeiling(t *testing.T) {
	req := require.New(t)
	_, err := NewMediaEnvelope("image/png", make([]byte, 16*MiB+1), "big.png")
	req.ErrorIs(err, errors.ErrPayloadTooLarge)
}

func TestCheckUploadSize_Names_The_Media_Type(t *testing.T) {
	req := require.New(t)

	req.NoError(CheckUploadSize("application/pdf", 100*MiB))
	req.EqualError(CheckUploadSize("application/pdf", 100*MiB+1),
		"File size too large. Maximum size for application files is 100MB.")
	req.EqualError(CheckUploadSize("video/mp4", 64*MiB+1),
		"File size too large. Maximum size for video files is 64MB.")
	req.EqualError(CheckUploadSize("", 100*MiB+1),
		"File size too large. Maximum size for other files is 100MB.")
}
