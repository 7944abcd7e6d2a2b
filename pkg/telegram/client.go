package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the public Bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"

	maxResponseBytes = 10 << 20 // 10 MiB
	tracerName       = "github.com/flemzord/tgbot/pkg/telegram"
)

// Client is a thin HTTP wrapper around the Telegram Bot API.
// It holds no state besides its configuration and is safe for concurrent use.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
	tracer  trace.Tracer

	// uploads is http without its whole-request Timeout. Multipart
	// uploads are bounded by the caller's context only.
	uploads *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host (tests, local Bot API servers).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTracer sets the tracer used for per-call spans. Defaults to the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// NewClient creates a new Telegram Bot API client.
// It fails with ErrMissingToken when token is empty.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	c := &Client{
		token:   token,
		baseURL: DefaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	uploads := *c.http
	uploads.Timeout = 0
	c.uploads = &uploads
	return c, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// Get calls method with URL-encoded query parameters and returns the raw
// "result" field of the response envelope.
func (c *Client) Get(ctx context.Context, method string, params Params) (json.RawMessage, error) {
	u := c.methodURL(method)
	if len(params) > 0 {
		q, err := params.query()
		if err != nil {
			return nil, fmt.Errorf("telegram: encode %s query: %w", method, err)
		}
		u += "?" + q.Encode()
	}
	return c.send(ctx, http.MethodGet, method, u, nil, "")
}

// Post calls method with a multipart/form-data body. InputFile values are
// written as file parts, everything else as form fields. The HTTP client's
// Timeout does not apply; ctx bounds the upload.
func (c *Client) Post(ctx context.Context, method string, params Params) (json.RawMessage, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := params.writeMultipart(w); err != nil {
		return nil, fmt.Errorf("telegram: encode %s body: %w", method, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("telegram: encode %s body: %w", method, err)
	}
	return c.send(ctx, http.MethodPost, method, c.methodURL(method), &buf, w.FormDataContentType())
}

func (c *Client) send(ctx context.Context, verb, method, u string, body io.Reader, contentType string) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "telegram."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("telegram.method", method),
			attribute.String("http.request.method", verb),
		),
	)
	defer span.End()

	result, err := c.roundTrip(ctx, verb, method, u, body, contentType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			span.SetAttributes(attribute.Int("telegram.error_code", apiErr.Code))
		}
		return nil, err
	}
	return result, nil
}

func (c *Client) roundTrip(ctx context.Context, verb, method, u string, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, verb, u, body)
	if err != nil {
		return nil, fmt.Errorf("telegram: create %s request: %w", method, stripURL(err))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	hc := c.http
	if verb == http.MethodPost {
		hc = c.uploads
	}
	resp, err := hc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Method: method, Err: stripURL(err)}
		}
		return nil, fmt.Errorf("telegram: %s request failed: %w", method, stripURL(err))
	}

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Method: method, Err: stripURL(err)}
		}
		return nil, fmt.Errorf("telegram: read %s response: %w", method, err)
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("telegram: decode %s response (status %d): %w", method, resp.StatusCode, err)
	}
	if !env.OK {
		apiErr := &APIError{
			Method:      method,
			Code:        env.ErrorCode,
			Description: env.Description,
		}
		if env.Parameters != nil {
			apiErr.RetryAfter = env.Parameters.RetryAfter
		}
		return nil, apiErr
	}
	return env.Result, nil
}

// call issues a GET and decodes the result into T.
func call[T any](ctx context.Context, c *Client, method string, params Params) (*T, error) {
	raw, err := c.Get(ctx, method, params)
	if err != nil {
		return nil, err
	}
	return decodeResult[T](method, raw)
}

// upload picks the transport for a media-carrying request: remote references
// go through GET, raw content through multipart POST.
func upload[T any](ctx context.Context, c *Client, method string, file InputFile, build func(Transport) Params) (*T, error) {
	var (
		raw json.RawMessage
		err error
	)
	if file.IsRemote() {
		raw, err = c.Get(ctx, method, build(TransportGet))
	} else {
		raw, err = c.Post(ctx, method, build(TransportPost))
	}
	if err != nil {
		return nil, err
	}
	return decodeResult[T](method, raw)
}

func decodeResult[T any](method string, raw json.RawMessage) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("telegram: decode %s result: %w", method, err)
	}
	return &v, nil
}

// stripURL drops the token-bearing URL from *url.Error values.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

// FileURL returns the download URL for a file path returned by GetFile.
func (c *Client) FileURL(filePath string) string {
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, filePath)
}
