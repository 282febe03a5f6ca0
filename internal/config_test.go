package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    int
		wantErr bool
	}{
		{"default", map[string]string{}, DefaultPort, false},
		{"generic", map[string]string{"APP_PORT": "9000"}, 9000, false},
		{"app specific wins", map[string]string{"APP_PORT": "9000", "WA-API-APP_PORT": "9100"}, 9100, false},
		{"blank is ignored", map[string]string{"WA-API-APP_PORT": " ", "APP_PORT": "9000"}, 9000, false},
		{"invalid", map[string]string{"APP_PORT": "eighty"}, 0, true},
		{"out of range", map[string]string{"APP_PORT": "70000"}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			port, err := ResolvePort("WA-API", lookupFrom(tt.env))
			if tt.wantErr {
				req.Error(err)
				return
			}
			req.NoError(err)
			req.Equal(tt.want, port)
		})
	}
}

func TestNewLogger_Pretty(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer

	log := NewLogger("WARN", LogFormatPretty, &buf)
	log.Info("hidden")
	log.Warn("shown", "component", "test")

	req.NotContains(buf.String(), "hidden")
	req.Contains(buf.String(), "shown")
}
