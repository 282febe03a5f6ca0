package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
	"wa-gateway/client"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseGatewaySuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration and skips the suite when
// no gateway is reachable.
func (s *BaseGatewaySuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.GatewayURL == "" {
		s.T().Skip("E2E_GATEWAY_URL is not set")
	}
}

// Client builds a gateway client that logs every round trip.
func (s *BaseGatewaySuite) Client(t *testing.T, name string) *client.Client {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)

	httpClient := &http.Client{Transport: &loggingTransport{t: t, debug: s.Config.DebugJSON, next: http.DefaultTransport}}
	c := client.New(s.Config.GatewayURL, client.WithHTTPClient(httpClient), client.WithToken(s.Config.Token))
	if s.Config.Token == "" && s.Config.APIKey != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, err := c.Login(ctx, s.Config.APIKey, "e2e")
		s.Require().NoError(err, "Failed to exchange E2E_API_KEY for a token")
	}
	return c
}

// WithGateway provides a client within a contextual test step.
func (s *BaseGatewaySuite) WithGateway(name string, fn func(ctx context.Context, c *client.Client)) {
	c := s.Client(s.T(), name)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Second)
	defer cancel()

	fn(ctx, c)
}

type loggingTransport struct {
	t     *testing.T
	debug bool
	next  http.RoundTripper
}

func (l *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	var reqBody []byte
	if l.debug && r.Body != nil && !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		reqBody, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	start := time.Now()
	resp, err := l.next.RoundTrip(r)

	logBuilder := strings.Builder{}
	if err != nil {
		fmt.Fprintf(&logBuilder, "HTTP %s %s failed in %v: %v", r.Method, r.URL.Path, time.Since(start), err)
		l.t.Log(logBuilder.String())
		return resp, err
	}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", r.Method, r.URL.Path, resp.StatusCode, time.Since(start))

	// Log full JSON request/response bodies if E2E_DEBUG_JSON is enabled
	if l.debug {
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(respBody))
		fmt.Fprintln(&logBuilder, "\nREQUEST:")
		fmt.Fprintln(&logBuilder, string(reqBody))
		fmt.Fprintln(&logBuilder, "RESPONSE:")
		fmt.Fprintln(&logBuilder, string(respBody))
	}
	l.t.Log(logBuilder.String())
	return resp, nil
}
