package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func collectEvents(t *testing.T, stream *Stream) ([]any, error) {
	t.Helper()
	var values []any
	var streamErr error
	for value, err := range stream.Events(context.Background()) {
		if err != nil {
			streamErr = err
			break
		}
		values = append(values, value)
	}
	return values, streamErr
}

func TestInvokeStreamsDecodedLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		if got := r.Header.Get(sessionHeader); got != "session-1" {
			t.Errorf("unexpected session header: %q", got)
		}
		if got := r.URL.Query().Get("qualifier"); got != "DEFAULT" {
			t.Errorf("unexpected qualifier: %q", got)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"delta\":{\"text\":\"hello\"}}\n"))
		w.Write([]byte("not json at all\n"))
		w.Write([]byte("{\"stop_reason\":\"end_turn\"}\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokenSource(StaticTokenSource("token-1")))
	stream, err := client.Invoke(context.Background(), "session-1", map[string]any{"prompt": "hi"})
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}

	values, streamErr := collectEvents(t, stream)
	if streamErr != nil {
		t.Fatalf("unexpected stream error: %v", streamErr)
	}
	if len(values) != 2 {
		t.Fatalf("expected two decoded values (non-JSON line dropped), got %d: %#v", len(values), values)
	}
}

func TestInvokeFailsFastWithoutToken(t *testing.T) {
	requests := atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	testCases := []struct {
		name   string
		client *Client
	}{
		{name: "no token source", client: NewClient(server.URL)},
		{name: "empty token", client: NewClient(server.URL, WithTokenSource(StaticTokenSource("")))},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := testCase.client.Invoke(context.Background(), "session-1", nil)
			if !errors.Is(err, ErrMissingAuth) {
				t.Fatalf("expected ErrMissingAuth, got %v", err)
			}
		})
	}

	if got := requests.Load(); got != 0 {
		t.Fatalf("expected no network calls, got %d", got)
	}
}

func TestInvokeReportsBadStatusAsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokenSource(StaticTokenSource("token-1")))
	_, err := client.Invoke(context.Background(), "session-1", nil)

	var transportErr *Error
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *transport.Error, got %v", err)
	}
	if transportErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", transportErr.Status)
	}
}

func TestInvokeReportsEmptyBodyAsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewClient(server.URL, WithTokenSource(StaticTokenSource("token-1")))
	stream, err := client.Invoke(context.Background(), "session-1", nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}

	_, streamErr := collectEvents(t, stream)
	var transportErr *Error
	if !errors.As(streamErr, &transportErr) {
		t.Fatalf("expected *transport.Error for empty body, got %v", streamErr)
	}
}

func TestEventsStopsOnContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"delta\":{\"text\":\"first\"}}\n"))
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, WithTokenSource(StaticTokenSource("token-1")))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream, err := client.Invoke(ctx, "session-1", nil)
	if err != nil {
		t.Fatalf("invoke failed: %v", err)
	}

	var values []any
	for value, err := range stream.Events(ctx) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		values = append(values, value)
		cancel()
	}

	if len(values) != 1 {
		t.Fatalf("expected exactly one value before cancellation, got %d", len(values))
	}
}

func TestFetchAgentCard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/agent-card.json" {
			t.Errorf("unexpected path: %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected authorization header: %q", got)
		}
		w.Write([]byte(`{"name":"websearch","description":"searches the web","url":"https://agents.example/websearch","protocolVersion":"0.3.0","capabilities":{"streaming":true}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokenSource(StaticTokenSource("token-1")))
	card, err := client.FetchAgentCard(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if card.Name != "websearch" || card.Endpoint != "https://agents.example/websearch" {
		t.Fatalf("unexpected card: %#v", card)
	}
	if card.ProtocolVersion != "0.3.0" {
		t.Fatalf("unexpected protocol version: %q", card.ProtocolVersion)
	}
}

func TestFetchAgentCardWithoutTokenFailsFast(t *testing.T) {
	client := NewClient("http://localhost:0")
	if _, err := client.FetchAgentCard(context.Background(), "session-1"); !errors.Is(err, ErrMissingAuth) {
		t.Fatalf("expected ErrMissingAuth, got %v", err)
	}
}
