package commands

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"wa-gateway/auth"

	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	t.Setenv("WACTL_SERVER_URL", srv.URL)
	t.Setenv("WACTL_COLOURS", "false")
	out := &bytes.Buffer{}
	root := newRootCmd(out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestGroupsCmd(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/groups", r.URL.Path)
		req.Equal("Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"status":true,"response":[{"id":"1203@g.us","name":"Family"}]}`)
	}))
	defer srv.Close()

	// When
	out, err := runCmd(t, srv, "--token", "tok", "groups")

	// Then
	req.NoError(err)
	req.Contains(out, "1203@g.us")
	req.Contains(out, "Family")
}

func TestStatusCmd_NotReady(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"client_ready":false,"message":"WhatsApp client is not ready yet"}`)
	}))
	defer srv.Close()

	out, err := runCmd(t, srv, "status")

	req.NoError(err)
	req.Contains(out, "not ready yet")
}

func TestSendCmd_JoinsWords(t *testing.T) {
	req := require.New(t)
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		_, _ = io.WriteString(w, `{"status":true,"response":{"id":"3EB0","to":"628123456789@c.us"}}`)
	}))
	defer srv.Close()

	out, err := runCmd(t, srv, "send", "0812", "hello", "there")

	req.NoError(err)
	req.JSONEq(`{"number":"0812","message":"hello there"}`, string(body))
	req.Contains(out, "sent 3EB0 to 628123456789@c.us")
}

func TestSendCmd_GatewayFailure(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"status":false,"message":"The number is not registered"}`)
	}))
	defer srv.Close()

	_, err := runCmd(t, srv, "send", "0812", "hi")

	req.ErrorContains(err, "The number is not registered")
}

func TestHashKeyCmd(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	key := "k3y-with-enough-entropy-2024"

	out, err := runCmd(t, srv, "hash-key", key)

	req.NoError(err)
	ok, err := auth.CompareKey(key, string(bytes.TrimSpace([]byte(out))))
	req.NoError(err)
	req.True(ok)
}

func TestHashKeyCmd_WeakKey(t *testing.T) {
	req := require.New(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := runCmd(t, srv, "hash-key", "short")

	req.Error(err)
}

func TestSaveQR(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "qr.png")

	req.NoError(saveQR(pngDataURLPrefix+"iVBORw0KGgo=", path))
	data, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, data)

	req.Error(saveQR("not a data url", path))
}
