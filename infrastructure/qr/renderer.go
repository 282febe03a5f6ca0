package qr

import (
	"encoding/base64"
	"fmt"

	"rsc.io/qr"
)

const pngDataURLPrefix = "data:image/png;base64,"

// Renderer encodes a pairing challenge as a PNG data URL that a browser can
// put straight into an img tag.
type Renderer struct {
	level qr.Level
	scale int
}

func NewRenderer(scale int) *Renderer {
	if scale <= 0 {
		scale = 8
	}
	return &Renderer{level: qr.M, scale: scale}
}

func (r *Renderer) Render(challenge string) (string, error) {
	if challenge == "" {
		return "", fmt.Errorf("empty challenge")
	}
	code, err := qr.Encode(challenge, r.level)
	if err != nil {
		return "", fmt.Errorf("qr encoding failed: %w", err)
	}
	code.Scale = r.scale
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(code.PNG()), nil
}
