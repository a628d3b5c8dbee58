package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agentwire/agentwire/core/wire"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// agentCardPath is the well-known discovery location relative to the
// invocation URL.
const agentCardPath = "/.well-known/agent-card.json"

// FetchAgentCard retrieves the runtime's discovery descriptor. Like
// Invoke, it fails fast with ErrMissingAuth when no token is available.
func (c *Client) FetchAgentCard(ctx context.Context, sessionID string) (*wire.AgentCard, error) {
	ctx, span := tracer.Start(ctx, "fetch agent card")
	defer span.End()

	token, err := c.bearerToken(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	url := strings.TrimSuffix(c.invokeURL, "/") + agentCardPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	req.Header.Set("Accept", "*/*")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(sessionHeader, sessionID)

	span.SetAttributes(attribute.String("request.url", url))
	resp, err := c.http.Do(req)
	if err != nil {
		wrapped := &Error{Op: "agent card", Err: err}
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		return nil, wrapped
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		wrapped := &Error{Op: "agent card", Status: resp.StatusCode, Err: fmt.Errorf("non-OK HTTP status: %s", resp.Status)}
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		return nil, wrapped
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		wrapped := &Error{Op: "agent card", Err: err}
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		return nil, wrapped
	}

	var raw struct {
		Name            string         `json:"name"`
		Description     string         `json:"description"`
		URL             string         `json:"url"`
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		wrapped := &Error{Op: "agent card", Err: fmt.Errorf("error unmarshalling JSON: %w", err)}
		span.RecordError(wrapped)
		span.SetStatus(codes.Error, wrapped.Error())
		return nil, wrapped
	}

	return &wire.AgentCard{
		Name:            raw.Name,
		Description:     raw.Description,
		Endpoint:        raw.URL,
		ProtocolVersion: raw.ProtocolVersion,
		Capabilities:    raw.Capabilities,
	}, nil
}
