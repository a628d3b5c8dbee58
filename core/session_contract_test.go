package transcript

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/agentwire/agentwire/core/events"
	"github.com/agentwire/agentwire/core/transport"
)

type scriptedStream struct {
	values []any
	err    error
}

func (s *scriptedStream) Events(ctx context.Context) func(func(any, error) bool) {
	return func(yield func(any, error) bool) {
		for _, value := range s.values {
			if ctx.Err() != nil {
				return
			}
			if !yield(value, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

func (s *scriptedStream) Close() error { return nil }

type gatedStream struct {
	values chan any
}

func (s *gatedStream) Events(ctx context.Context) func(func(any, error) bool) {
	return func(yield func(any, error) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case value, ok := <-s.values:
				if !ok {
					return
				}
				if !yield(value, nil) {
					return
				}
			}
		}
	}
}

func (s *gatedStream) Close() error { return nil }

type scriptedTransport struct {
	stream      EventStream
	err         error
	invocations int
	sessionID   string
	payload     any
}

func (t *scriptedTransport) Invoke(ctx context.Context, sessionID string, payload any) (EventStream, error) {
	t.invocations++
	t.sessionID = sessionID
	t.payload = payload
	if t.err != nil {
		return nil, t.err
	}
	return t.stream, nil
}

func TestSendBuildsOrderedTranscript(t *testing.T) {
	trans := &scriptedTransport{stream: &scriptedStream{values: []any{
		map[string]any{"data": "A"},
		map[string]any{"event": map[string]any{"contentBlockStart": map[string]any{
			"start": map[string]any{"toolUse": map[string]any{"toolUseId": "tool-1", "name": "search"}},
		}}},
		map[string]any{"data": "B"},
		map[string]any{"event": map[string]any{"contentBlockStop": map[string]any{}}},
		map[string]any{"result": map[string]any{
			"stop_reason": "end_turn",
			"metrics": map[string]any{
				"accumulated_usage": map[string]any{"inputTokens": float64(12), "outputTokens": float64(34), "totalTokens": float64(46)},
			},
		}},
	}}}

	session := NewSession(WithTransport(trans))

	var snapshots []Snapshot
	turn, err := session.Send(context.Background(), "hello",
		WithSnapshotCallback(func(snapshot Snapshot) { snapshots = append(snapshots, snapshot) }),
	)
	if err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	kinds := []BlockKind{}
	for _, block := range turn.Snapshot.Blocks {
		kinds = append(kinds, block.Kind)
	}
	if !reflect.DeepEqual(kinds, []BlockKind{BlockText, BlockTool, BlockText}) {
		t.Fatalf("expected [text tool text] blocks, got %v", kinds)
	}
	if got := turn.Snapshot.Text(); got != "AB" {
		t.Fatalf("expected full text %q, got %q", "AB", got)
	}
	if turn.Snapshot.Blocks[1].Tool.Status != ToolStatusSuccess {
		t.Fatalf("expected the tool to be closed by the stop event")
	}
	if turn.Metadata.StopReason != "end_turn" || turn.Metadata.Usage.TotalTokens != 46 {
		t.Fatalf("unexpected metadata %+v", turn.Metadata)
	}

	if len(snapshots) == 0 {
		t.Fatalf("expected live snapshots during the stream")
	}
	if last := snapshots[len(snapshots)-1]; !last.Sealed {
		t.Fatalf("expected the final snapshot to be sealed")
	}
	if trans.sessionID != session.ID() {
		t.Fatalf("expected the session id on the request, got %q", trans.sessionID)
	}
}

func TestSendWithoutTransportFailsFast(t *testing.T) {
	session := NewSession()
	if _, err := session.Send(context.Background(), "hello"); !errors.Is(err, ErrNoTransport) {
		t.Fatalf("expected ErrNoTransport, got %v", err)
	}
}

func TestSecondSendWhileTurnOpenFails(t *testing.T) {
	stream := &gatedStream{values: make(chan any)}
	trans := &scriptedTransport{stream: stream}
	session := NewSession(WithTransport(trans))

	firstStarted := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		_, err := session.Send(context.Background(), "first",
			WithEventCallback(func(event events.Event) {
				if event.Kind() == events.KindTurnStarted {
					close(firstStarted)
				}
			}),
		)
		firstDone <- err
	}()

	select {
	case <-firstStarted:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the first turn to open")
	}

	if _, err := session.Send(context.Background(), "second"); !errors.Is(err, ErrTurnInProgress) {
		t.Fatalf("expected ErrTurnInProgress, got %v", err)
	}

	close(stream.values)
	select {
	case err := <-firstDone:
		if err != nil {
			t.Fatalf("expected the first turn to complete, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the first turn to finish")
	}
}

func TestMissingAuthFailsBeforeAnyTurnIsCreated(t *testing.T) {
	trans := &scriptedTransport{err: transport.ErrMissingAuth}
	session := NewSession(WithTransport(trans))

	started := false
	turn, err := session.Send(context.Background(), "hello",
		WithEventCallback(func(events.Event) { started = true }),
	)
	if !errors.Is(err, transport.ErrMissingAuth) {
		t.Fatalf("expected ErrMissingAuth, got %v", err)
	}
	if turn != nil {
		t.Fatalf("expected no turn, got %+v", turn)
	}
	if started {
		t.Fatalf("expected no events before the turn exists")
	}
}

func TestStreamErrorSealsTurnWithErrorBlock(t *testing.T) {
	streamErr := &transport.Error{Op: "stream", Err: errors.New("connection reset")}
	trans := &scriptedTransport{stream: &scriptedStream{
		values: []any{map[string]any{"data": "partial"}},
		err:    streamErr,
	}}
	session := NewSession(WithTransport(trans))

	failed := false
	turn, err := session.Send(context.Background(), "hello",
		WithEventCallback(func(event events.Event) {
			if event.Kind() == events.KindTurnFailed {
				failed = true
			}
		}),
	)
	if !errors.Is(err, streamErr) {
		t.Fatalf("expected the stream error, got %v", err)
	}
	if turn == nil {
		t.Fatalf("expected the partial turn alongside the error")
	}

	last := turn.Snapshot.Blocks[len(turn.Snapshot.Blocks)-1]
	if last.Kind != BlockError {
		t.Fatalf("expected a trailing error block, got %+v", last)
	}
	if got := turn.Snapshot.Text(); got != "partial" {
		t.Fatalf("expected the partial text to survive, got %q", got)
	}
	if !failed {
		t.Fatalf("expected a turn failed event")
	}
}

func TestCancelHaltsSnapshotsAndLeavesDeliveredOnesIntact(t *testing.T) {
	stream := &gatedStream{values: make(chan any, 8)}
	trans := &scriptedTransport{stream: stream}
	session := NewSession(WithTransport(trans))

	snapshotSeen := make(chan struct{}, 8)
	var snapshots []Snapshot

	done := make(chan error, 1)
	go func() {
		_, err := session.Send(context.Background(), "hello",
			WithSnapshotCallback(func(snapshot Snapshot) {
				snapshots = append(snapshots, snapshot)
				snapshotSeen <- struct{}{}
			}),
		)
		done <- err
	}()

	stream.values <- map[string]any{
		"event": map[string]any{"contentBlockStart": map[string]any{
			"start": map[string]any{"toolUse": map[string]any{"toolUseId": "tool-1", "name": "search"}},
		}},
	}
	select {
	case <-snapshotSeen:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the first snapshot")
	}

	session.Cancel()

	var err error
	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the cancelled send to return")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// A delivered snapshot must survive cancellation untouched, and no
	// snapshot is emitted for the sealed state.
	last := snapshots[len(snapshots)-1]
	if last.Sealed {
		t.Fatalf("expected no snapshot emission after cancellation")
	}
	if last.Blocks[0].Tool.Status != ToolStatusLoading {
		t.Fatalf("expected the delivered tool state to be unchanged, got %+v", last.Blocks[0].Tool)
	}
}

func TestTransferPrecedesTextFromTheSameEvent(t *testing.T) {
	trans := &scriptedTransport{stream: &scriptedStream{values: []any{
		map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": "over to you"}}},
			"actions": map[string]any{"transfer_to_agent": "websearch"},
		},
	}}}
	session := NewSession(WithTransport(trans))

	var transfers []string
	turn, err := session.Send(context.Background(), "hello",
		WithTransferCallback(func(agent string) { transfers = append(transfers, agent) }),
	)
	if err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	kinds := []BlockKind{}
	for _, block := range turn.Snapshot.Blocks {
		kinds = append(kinds, block.Kind)
	}
	if !reflect.DeepEqual(kinds, []BlockKind{BlockTransfer, BlockText}) {
		t.Fatalf("expected the transfer block before the text, got %v", kinds)
	}
	if !reflect.DeepEqual(transfers, []string{"websearch"}) {
		t.Fatalf("expected one transfer callback, got %v", transfers)
	}
}

func TestBootstrapEventPopulatesAgentCards(t *testing.T) {
	trans := &scriptedTransport{stream: &scriptedStream{values: []any{
		map[string]any{
			"websearch": map[string]any{"description": "searches the web", "url": "https://agents.example/websearch"},
		},
		map[string]any{"data": "hello"},
	}}}
	session := NewSession(WithTransport(trans))

	discovered := false
	turn, err := session.Send(context.Background(), "hello",
		WithEventCallback(func(event events.Event) {
			if event.Kind() == events.KindAgentCardsDiscovered {
				discovered = true
			}
		}),
	)
	if err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	if !discovered {
		t.Fatalf("expected an agent cards discovered event")
	}
	card, ok := session.AgentCard("websearch")
	if !ok || card.Endpoint != "https://agents.example/websearch" {
		t.Fatalf("expected the websearch card in the registry, got %+v", card)
	}
	// The bootstrap event is a side channel, never content.
	if got := turn.Snapshot.Text(); got != "hello" {
		t.Fatalf("expected only the second event as text, got %q", got)
	}
}

func TestToolCallbacksFollowTheInvocationLifecycle(t *testing.T) {
	trans := &scriptedTransport{stream: &scriptedStream{values: []any{
		map[string]any{"current_tool_use": map[string]any{"toolUseId": "tool-1", "name": "weather", "input": map[string]any{"location": "NYC"}}},
		map[string]any{"message": map[string]any{"content": []any{
			map[string]any{"toolResult": map[string]any{"toolUseId": "tool-1", "content": []any{map[string]any{"text": "sunny"}}}},
		}}},
	}}}
	session := NewSession(
		WithTransport(trans),
		WithToolSpecs(NewToolSpec("weather", "looks up the weather", nil)),
	)

	var kinds []events.Kind
	var description string
	_, err := session.Send(context.Background(), "hello",
		WithToolCallback(func(event events.Event) {
			kinds = append(kinds, event.Kind())
			if started, ok := event.(events.ToolCallStarted); ok {
				description = started.Description
			}
		}),
	)
	if err != nil {
		t.Fatalf("expected send to succeed, got %v", err)
	}

	expected := []events.Kind{events.KindToolCallStarted, events.KindToolCallInputUpdated, events.KindToolCallCompleted}
	if !reflect.DeepEqual(kinds, expected) {
		t.Fatalf("expected lifecycle %v, got %v", expected, kinds)
	}
	if description != "looks up the weather" {
		t.Fatalf("expected the registered spec description, got %q", description)
	}
}
