package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
	"wa-gateway/auth"
	"wa-gateway/domain"
	"wa-gateway/domain/event"
	"wa-gateway/observability"

	"github.com/gabriel-vasile/mimetype"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Client talks to a running gateway over its HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 3 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Status struct {
	Status      bool   `json:"status"`
	ClientReady bool   `json:"client_ready"`
	Message     string `json:"message"`
}

type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type messageBody struct {
	Status  bool            `json:"status"`
	Message json.RawMessage `json:"message"`
}

type responseBody[T any] struct {
	Status   bool `json:"status"`
	Response T    `json:"response"`
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	err := c.do(ctx, http.MethodGet, "/status", nil, &out)
	return out, err
}

func (c *Client) Health(ctx context.Context) (observability.MonitoringStats, error) {
	var out observability.MonitoringStats
	err := c.do(ctx, http.MethodGet, "/healthz", nil, &out)
	return out, err
}

func (c *Client) IsRegistered(ctx context.Context, number string) (string, error) {
	return c.message(ctx, "/is-registered", map[string]string{"number": number})
}

func (c *Client) SendMessage(ctx context.Context, number, message string) (domain.SentMessage, error) {
	var out responseBody[domain.SentMessage]
	err := c.do(ctx, http.MethodPost, "/send-message", map[string]string{"number": number, "message": message}, &out)
	return out.Response, err
}

func (c *Client) SendGroupMessage(ctx context.Context, id, name, message string) (domain.SentMessage, error) {
	var out responseBody[domain.SentMessage]
	err := c.do(ctx, http.MethodPost, "/send-group-message", map[string]string{"id": id, "name": name, "message": message}, &out)
	return out.Response, err
}

func (c *Client) AddToGroup(ctx context.Context, number, groupID string) (string, error) {
	return c.message(ctx, "/add-to-group", map[string]string{"number": number, "groupid": groupID})
}

func (c *Client) ClearMessage(ctx context.Context, number string) (bool, error) {
	var out responseBody[bool]
	err := c.do(ctx, http.MethodPost, "/clear-message", map[string]string{"number": number}, &out)
	return out.Response, err
}

func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var out responseBody[[]Group]
	err := c.do(ctx, http.MethodGet, "/groups", nil, &out)
	return out.Response, err
}

// Login exchanges the API key for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, apiKey, name string) (auth.Grant, error) {
	var grant auth.Grant
	err := c.do(ctx, http.MethodPost, "/auth/token", map[string]string{"api_key": apiKey, "client": name}, &grant)
	if err == nil {
		c.token = grant.Token
	}
	return grant, err
}

// SendMedia uploads the file at path. The part content type is sniffed
// locally so the gateway receives a declared type.
func (c *Client) SendMedia(ctx context.Context, number, path, caption string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("number", number)
	if caption != "" {
		_ = mw.WriteField("caption", caption)
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path)))
	h.Set("Content-Type", mimetype.Detect(data).String())
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/send-media", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out messageBody
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return decodeMessage(out.Message), nil
}

// Watch streams lifecycle frames to fn until ctx ends, the gateway closes the
// channel or fn fails.
func (c *Client) Watch(ctx context.Context, fn func(event.Frame) error) error {
	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return fmt.Errorf("opening realtime channel: %w", err)
	}
	defer conn.CloseNow()

	for {
		var frame event.Frame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := fn(frame); err != nil {
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return err
		}
	}
}

func (c *Client) message(ctx context.Context, path string, body any) (string, error) {
	var out messageBody
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	return decodeMessage(out.Message), nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var failure messageBody
		_ = json.Unmarshal(raw, &failure)
		return &APIError{StatusCode: resp.StatusCode, Message: decodeMessage(failure.Message)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// decodeMessage flattens a message that is either a string or a field map.
func decodeMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var fields map[string]string
	if err := json.Unmarshal(raw, &fields); err == nil {
		parts := make([]string, 0, len(fields))
		for k, v := range fields {
			parts = append(parts, k+": "+v)
		}
		return strings.Join(parts, "; ")
	}
	return string(raw)
}
