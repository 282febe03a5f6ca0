package mimetypes

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type MIME string

const (
	Unknown     MIME = "unknown"
	OctetStream MIME = "application/octet-stream"
	TextPlain   MIME = "text/plain"

	ApplicationPDF  MIME = "application/pdf"
	ApplicationJSON MIME = "application/json"

	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"
	VideoMP4  MIME = "video/mp4"
	AudioOgg  MIME = "audio/ogg"

	SpreadsheetXLSX MIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SpreadsheetXLS  MIME = "application/vnd.ms-excel"
)

func Matches(detected string, expected MIME) (MIME, bool) {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return Unknown, false
	}
	return expected, mt == string(expected)
}

// IsUndeclared reports a content type that says nothing about the payload.
func IsUndeclared(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	_, ok := Matches(contentType, OctetStream)
	return ok
}

// Sniff detects the content type from the leading bytes of the payload.
func Sniff(data []byte) string {
	mt, _, err := mime.ParseMediaType(mimetype.Detect(data).String())
	if err != nil {
		return string(OctetStream)
	}
	return mt
}

// Repair fixes the content type some clients send for spreadsheets.
// Browsers often post .xlsx as application/zip or octet-stream, which the
// recipient then cannot open.
func Repair(filename, contentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		if !strings.Contains(contentType, "spreadsheetml") {
			return string(SpreadsheetXLSX)
		}
	case ".xls":
		if !strings.Contains(contentType, "excel") {
			return string(SpreadsheetXLS)
		}
	}
	return contentType
}
