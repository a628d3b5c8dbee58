package transcript

import (
	"context"

	"github.com/agentwire/agentwire/core/events"
	"github.com/agentwire/agentwire/core/transport"
	"github.com/agentwire/agentwire/core/wire"
)

type SessionOption func(*Session)

// WithTransport sets the transport used to invoke the agent runtime.
func WithTransport(t Transport) SessionOption {
	return func(s *Session) { s.transport = t }
}

// WithClient wires a runtime transport client into the session.
func WithClient(client *transport.Client) SessionOption {
	return func(s *Session) { s.transport = clientTransport{client: client} }
}

// clientTransport lifts the client's concrete stream type onto the
// EventStream interface.
type clientTransport struct{ client *transport.Client }

func (t clientTransport) Invoke(ctx context.Context, sessionID string, payload any) (EventStream, error) {
	stream, err := t.client.Invoke(ctx, sessionID, payload)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// WithToolSpecs registers tool descriptors. Registered specs annotate
// tool events with their descriptions and let callers decode invocation
// inputs into typed structs.
func WithToolSpecs(specs ...ToolSpec) SessionOption {
	return func(s *Session) {
		for _, spec := range specs {
			s.toolSpecs[spec.Name] = spec
		}
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) SessionOption {
	return func(s *Session) { s.id = id }
}

type SendOptions struct {
	onSnapshot    func(snapshot Snapshot)
	onTextSegment func(segment string)
	onToolCall    func(event events.Event)
	onTransfer    func(agent string)
	onMetadata    func(delta wire.MetadataDelta)
	onCompletion  func(turn *Turn)
	onEvent       func(event events.Event)
}

type SendOption func(*SendOptions)

// WithSnapshotCallback registers a callback invoked with a fresh
// snapshot after every applied stream event, and once more when the turn
// seals.
//
// Snapshots are deep copies; retaining one across events is safe. No
// snapshot is delivered after cancellation.
func WithSnapshotCallback(callback func(snapshot Snapshot)) SendOption {
	return func(o *SendOptions) {
		o.onSnapshot = callback
	}
}

// WithTextSegmentCallback registers a callback for streamed assistant
// text pieces, in arrival order.
func WithTextSegmentCallback(callback func(segment string)) SendOption {
	return func(o *SendOptions) {
		o.onTextSegment = callback
	}
}

// WithToolCallback registers a callback for tool invocation lifecycle
// events: started, input updated, completed.
func WithToolCallback(callback func(event events.Event)) SendOption {
	return func(o *SendOptions) {
		o.onToolCall = callback
	}
}

// WithTransferCallback registers a callback for sub-agent transfer
// notices.
func WithTransferCallback(callback func(agent string)) SendOption {
	return func(o *SendOptions) {
		o.onTransfer = callback
	}
}

// WithMetadataCallback registers a callback for every metadata merge,
// including the end-of-turn metrics summary.
func WithMetadataCallback(callback func(delta wire.MetadataDelta)) SendOption {
	return func(o *SendOptions) {
		o.onMetadata = callback
	}
}

// WithCompletionCallback registers a callback invoked with the sealed
// turn after a normal stream end. It does not fire on failure or
// cancellation.
func WithCompletionCallback(callback func(turn *Turn)) SendOption {
	return func(o *SendOptions) {
		o.onCompletion = callback
	}
}

// WithEventCallback registers a callback for every typed event the turn
// emits, before the per-kind callbacks run.
func WithEventCallback(callback func(event events.Event)) SendOption {
	return func(o *SendOptions) {
		o.onEvent = callback
	}
}
