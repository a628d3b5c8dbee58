package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agentwire/agentwire/core/events"
	"github.com/agentwire/agentwire/core/wire"
	"github.com/agentwire/agentwire/internal/utils"
)

// Transport delivers one turn's worth of decoded stream values. Invoke
// must fail fast, before any network call, when no bearer token is
// available.
type Transport interface {
	Invoke(ctx context.Context, sessionID string, payload any) (EventStream, error)
}

// EventStream is one open response stream. Events yields decoded line
// values until the stream ends; a yielded error is turn-fatal.
type EventStream interface {
	Events(ctx context.Context) func(func(any, error) bool)
	Close() error
}

// Turn is the sealed result of one Send.
type Turn struct {
	ID       string
	Prompt   string
	Snapshot Snapshot
	Metadata TurnMetadata
}

// Session holds the state that outlives a single turn: the session id
// sent with every request, the transport, registered tool specs and the
// agent-card registry. At most one turn may be open at a time; turn
// state itself is discarded when the next send starts.
type Session struct {
	id        string
	transport Transport
	toolSpecs map[string]ToolSpec
	cards     cardRegistry

	mu     sync.Mutex
	open   bool
	cancel context.CancelFunc
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		id:        uuid.NewString(),
		toolSpecs: map[string]ToolSpec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session id sent with every request.
func (s *Session) ID() string { return s.id }

// AgentCards lists the cards received in the bootstrap event, if any.
func (s *Session) AgentCards() []wire.AgentCard { return s.cards.list() }

// AgentCard looks up a discovered sub-agent card by name.
func (s *Session) AgentCard(name string) (wire.AgentCard, bool) { return s.cards.lookup(name) }

// Cancel aborts the in-flight turn, if any. The consumer stops, the turn
// seals, and no further snapshots are emitted. Snapshots already
// delivered are never mutated.
func (s *Session) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Send dispatches one prompt and consumes its response stream in a
// single pass: decode line, classify, apply, snapshot, emit. It returns
// the sealed turn. A second Send while one is open fails with
// ErrTurnInProgress; missing auth fails before any network call.
//
// On transport failure the turn seals with a trailing error block and
// Send returns both the partial turn and the error. On cancellation Send
// returns the sealed partial turn and the context error.
func (s *Session) Send(ctx context.Context, prompt string, opts ...SendOption) (*Turn, error) {
	if s.transport == nil {
		return nil, ErrNoTransport
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.open {
		s.mu.Unlock()
		return nil, ErrTurnInProgress
	}
	s.open = true
	s.cancel = cancel
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.open = false
		s.cancel = nil
		s.mu.Unlock()
	}()

	options := SendOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	emit := newCallbackEventEmitter(options)

	ctx, span := tracer.Start(ctx, "send prompt")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", s.id))

	turn := &Turn{ID: uuid.NewString(), Prompt: prompt}
	span.SetAttributes(attribute.String("turn.id", turn.ID))

	stream, err := s.transport.Invoke(ctx, s.id, map[string]any{"prompt": prompt})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer stream.Close()

	emit(events.NewTurnStarted(turn.ID))

	classifier := wire.Classifier{}
	acc := newAccumulator()
	started := time.Now()
	var streamErr error

	for value, err := range stream.Events(ctx) {
		if err != nil {
			streamErr = err
			break
		}
		if acc.meta.TimeToFirstEvent == 0 {
			acc.meta.TimeToFirstEvent = time.Since(started)
		}

		for _, effect := range classifier.Classify(value) {
			s.applyEffect(acc, effect, emit)
		}

		if ctx.Err() != nil {
			break
		}
		if options.onSnapshot != nil {
			options.onSnapshot(acc.snapshot())
		}
	}

	acc.meta.Elapsed = time.Since(started)

	if streamErr != nil {
		acc.sealWithError(streamErr.Error())
		turn.Snapshot = acc.snapshot()
		turn.Metadata = acc.meta
		span.RecordError(streamErr)
		span.SetStatus(codes.Error, streamErr.Error())
		emit(events.NewTurnFailed(turn.ID, streamErr.Error()))
		if options.onSnapshot != nil {
			options.onSnapshot(turn.Snapshot)
		}
		return turn, streamErr
	}

	if ctx.Err() != nil {
		acc.seal()
		turn.Snapshot = acc.snapshot()
		turn.Metadata = acc.meta
		emit(events.NewTurnCancelled(turn.ID))
		return turn, ctx.Err()
	}

	acc.seal()
	turn.Snapshot = acc.snapshot()
	turn.Metadata = acc.meta
	span.SetAttributes(
		attribute.Int("turn.block_count", len(turn.Snapshot.Blocks)),
		attribute.String("turn.stop_reason", turn.Metadata.StopReason),
	)
	emit(events.NewTurnCompleted(turn.ID))
	if options.onSnapshot != nil {
		options.onSnapshot(turn.Snapshot)
	}
	if options.onCompletion != nil {
		options.onCompletion(turn)
	}
	return turn, nil
}

// applyEffect folds one effect into the accumulator and emits the
// matching typed events. Agent-card effects update the session registry
// instead of the turn.
func (s *Session) applyEffect(acc *accumulator, effect wire.Effect, emit eventEmitter) {
	switch e := effect.(type) {
	case wire.AgentCards:
		if s.cards.set(e.Cards) {
			emit(events.NewAgentCardsDiscovered(e.Cards))
		}

	case wire.TextDelta:
		acc.appendText(e.Text)
		emit(events.NewTranscriptSegment(e.Text))

	case wire.ToolStart:
		if invocation, created := acc.startTool(e.ID, e.Name, e.Input); created {
			emit(events.NewToolCallStarted(invocation.ID, invocation.Name, s.toolDescription(invocation.Name)))
		}

	case wire.ToolInput:
		seen := acc.toolKnown(e.ID)
		invocation, ok := acc.updateToolInput(e.ID, e.Name, e.Input)
		if !ok {
			return
		}
		if !seen {
			emit(events.NewToolCallStarted(invocation.ID, invocation.Name, s.toolDescription(invocation.Name)))
		}
		emit(events.NewToolCallInputUpdated(invocation.ID, invocation.Name, invocation.Input))

	case wire.ToolStop:
		for _, invocation := range acc.closeTools() {
			emit(events.NewToolCallCompleted(invocation.ID, invocation.Name, invocation.Result))
		}

	case wire.ToolResult:
		invocation, ok := acc.applyToolResult(e.ID, e.Content, e.Append)
		if !ok {
			return
		}
		if !e.Append {
			emit(events.NewToolCallCompleted(invocation.ID, invocation.Name, invocation.Result))
		}

	case wire.Transfer:
		acc.addTransfer(e.Agent)
		emit(events.NewTransferAnnounced(e.Agent))

	case wire.Metadata:
		acc.mergeMetadata(e.Delta)
		emit(events.NewMetadataUpdated(e.Delta))

	case wire.StopReason:
		delta := wire.MetadataDelta{StopReason: utils.Ptr(e.Reason)}
		acc.mergeMetadata(delta)
		emit(events.NewMetadataUpdated(delta))

	case wire.FinalResult:
		acc.mergeMetadata(e.Delta)
		emit(events.NewMetadataUpdated(e.Delta))
	}
}

func (s *Session) toolDescription(name string) string {
	if spec, ok := s.toolSpecs[name]; ok {
		return spec.Description
	}
	return ""
}
