package mimetypes

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		detected string
		expected MIME
		want     bool
	}{
		{"Plain text with charset", "text/plain; charset=utf-8", TextPlain, true},
		{"JSON", "application/json", ApplicationJSON, true},
		{"PDF", "application/pdf", ApplicationPDF, true},
		{"PNG", "image/png", ImagePNG, true},
		{"Mismatch", "text/plain; charset=utf-8", ApplicationJSON, false},
		{"Unknown type", "application/octet-stream", TextPlain, false},
		{"Invalid MIME", "not a mime", TextPlain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := Matches(tt.detected, tt.expected)
			require.Equal(t, tt.want, ok)
		})
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        string
	}{
		{"xlsx posted as zip", "report.xlsx", "application/zip", string(SpreadsheetXLSX)},
		{"xlsx posted as octet-stream", "REPORT.XLSX", "application/octet-stream", string(SpreadsheetXLSX)},
		{"xlsx already correct", "report.xlsx", string(SpreadsheetXLSX), string(SpreadsheetXLSX)},
		{"xls posted as octet-stream", "legacy.xls", "application/octet-stream", string(SpreadsheetXLS)},
		{"xls already excel", "legacy.xls", "application/excel", "application/excel"},
		{"other extension untouched", "photo.png", "image/png", "image/png"},
		{"no extension untouched", "blob", "application/zip", "application/zip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Repair(tt.filename, tt.contentType))
		})
	}
}

func TestIsUndeclared(t *testing.T) {
	req := require.New(t)
	req.True(IsUndeclared(""))
	req.True(IsUndeclared("application/octet-stream"))
	req.False(IsUndeclared("image/png"))
}

func TestSniff(t *testing.T) {
	req := require.New(t)
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}
	req.Equal("image/png", Sniff(png))
	req.Equal("text/plain", Sniff([]byte("hello world")))
}
