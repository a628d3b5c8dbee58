package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	chunkPrefix = "data:"

	// sessionHeader carries the runtime session id on every request.
	sessionHeader = "X-Amzn-Bedrock-AgentCore-Runtime-Session-Id"

	defaultEndpoint = "DEFAULT"
)

var errEmptyBody = errors.New("empty response body")

// Client invokes an agent runtime endpoint and exposes its response as a
// lazy stream of decoded line values.
type Client struct {
	invokeURL string
	endpoint  string
	tokens    TokenSource
	http      *http.Client
}

type ClientOption func(*Client)

// WithTokenSource sets the bearer token supplier. Without one every
// invocation fails fast with ErrMissingAuth.
func WithTokenSource(tokens TokenSource) ClientOption {
	return func(c *Client) { c.tokens = tokens }
}

// WithEndpoint selects the runtime endpoint qualifier.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient replaces the underlying HTTP client. The default client
// is instrumented with otelhttp.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.http = httpClient }
}

func NewClient(invokeURL string, opts ...ClientOption) *Client {
	c := &Client{
		invokeURL: invokeURL,
		endpoint:  defaultEndpoint,
		http: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// bearerToken resolves the current token, failing fast when none is
// available. No network call is made on this path.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", ErrMissingAuth
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to resolve bearer token: %w", err)
	}
	if token == "" {
		return "", ErrMissingAuth
	}
	return token, nil
}

// Invoke posts a payload to the runtime and returns the response stream.
// The body is left open; the caller drains it through Stream.Events.
func (c *Client) Invoke(ctx context.Context, sessionID string, payload any) (*Stream, error) {
	ctx, span := tracer.Start(ctx, "invoke agent runtime")
	span.SetAttributes(attribute.String("request.session_id", sessionID))

	token, err := c.bearerToken(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.invokeURL, bytes.NewBuffer(body))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	query := req.URL.Query()
	query.Set("qualifier", c.endpoint)
	req.URL.RawQuery = query.Encode()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(sessionHeader, sessionID)

	span.SetAttributes(attribute.String("request.url", req.URL.String()))
	resp, err := c.http.Do(req)
	if err != nil {
		wrapped := &Error{Op: "invoke", Err: err}
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		span.End()
		return nil, wrapped
	}

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		errorBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		if readErr == nil && len(errorBody) > 0 {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		wrapped := &Error{Op: "invoke", Status: resp.StatusCode, Err: fmt.Errorf("non-OK HTTP status: %s", resp.Status)}
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		span.End()
		return nil, wrapped
	}
	if resp.Body == nil {
		wrapped := &Error{Op: "invoke", Err: errEmptyBody}
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		span.End()
		return nil, wrapped
	}

	return &Stream{body: resp.Body, span: span}, nil
}

// Stream is one turn's response body, consumed as decoded line values.
// The invocation span stays open until the stream is closed.
type Stream struct {
	body io.ReadCloser
	span trace.Span
}

// Events iterates the decoded values of the stream, one per logical line.
// Lines split across chunk boundaries are reassembled before decoding;
// lines that are not valid JSON are dropped. The iterator yields a
// terminal *Error for broken bodies and stops silently on context
// cancellation or end of stream.
func (s *Stream) Events(ctx context.Context) func(func(any, error) bool) {
	return func(yield func(any, error) bool) {
		defer s.Close()

		splitter := lineSplitter{}
		buf := make([]byte, 4096)
		sawData := false

		for {
			if ctx.Err() != nil {
				return
			}

			n, readErr := s.body.Read(buf)
			if n > 0 {
				sawData = true
				for _, line := range splitter.feed(buf[:n]) {
					value, ok := decodeLine(line)
					if !ok {
						continue
					}
					if !yield(value, nil) {
						return
					}
				}
			}

			if readErr == io.EOF {
				if line := splitter.flush(); line != nil {
					if value, ok := decodeLine(line); ok {
						if !yield(value, nil) {
							return
						}
					}
				}
				if !sawData {
					yield(nil, &Error{Op: "stream", Err: errEmptyBody})
				}
				return
			}
			if readErr != nil {
				if ctx.Err() != nil {
					return
				}
				yield(nil, &Error{Op: "stream", Err: readErr})
				return
			}
		}
	}
}

// Close releases the response body and ends the invocation span. Safe to
// call more than once.
func (s *Stream) Close() error {
	if s.span != nil {
		s.span.End()
		s.span = nil
	}
	if s.body == nil {
		return nil
	}
	err := s.body.Close()
	s.body = nil
	return err
}

// decodeLine strips the SSE data prefix and decodes the remainder. Empty
// and non-JSON lines report false.
func decodeLine(line []byte) (any, bool) {
	text := strings.TrimSpace(string(line))
	text = strings.TrimSpace(strings.TrimPrefix(text, chunkPrefix))
	if text == "" {
		return nil, false
	}

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		logger.Debug("dropping non-JSON stream line", "line", text)
		return nil, false
	}
	return value, true
}
