package transcript

import (
	"encoding/json"
	"strings"

	"github.com/jinzhu/copier"

	"github.com/agentwire/agentwire/core/wire"
	"github.com/agentwire/agentwire/internal/utils"
)

// accumulator is the per-turn state machine. Invocation records live in
// an arena addressed by index; ordered blocks store arena indices so that
// in-place tool updates never reposition a block. All methods are no-ops
// once the turn is sealed.
type accumulator struct {
	arena  []ToolInvocation
	byID   map[string]int
	blocks []blockRef
	open   strings.Builder
	meta   TurnMetadata
	sealed bool
}

// blockRef is one finalized block, in arrival order of the event that
// created it. tool is an arena index, valid only for BlockTool.
type blockRef struct {
	kind  BlockKind
	text  string
	tool  int
	agent string
}

func newAccumulator() *accumulator {
	return &accumulator{byID: map[string]int{}}
}

// apply folds one classifier effect into the turn. Agent-card effects
// are session-scoped and ignored here.
func (a *accumulator) apply(effect wire.Effect) {
	switch e := effect.(type) {
	case wire.TextDelta:
		a.appendText(e.Text)
	case wire.ToolStart:
		a.startTool(e.ID, e.Name, e.Input)
	case wire.ToolInput:
		a.updateToolInput(e.ID, e.Name, e.Input)
	case wire.ToolStop:
		a.closeTools()
	case wire.ToolResult:
		a.applyToolResult(e.ID, e.Content, e.Append)
	case wire.Transfer:
		a.addTransfer(e.Agent)
	case wire.Metadata:
		a.mergeMetadata(e.Delta)
	case wire.StopReason:
		a.mergeMetadata(wire.MetadataDelta{StopReason: utils.Ptr(e.Reason)})
	case wire.FinalResult:
		a.mergeMetadata(e.Delta)
	}
}

func (a *accumulator) appendText(text string) {
	if a.sealed {
		return
	}
	a.open.WriteString(text)
}

// startTool registers a new invocation and appends its block, flushing
// the open text run first. Duplicate starts for a registered id are
// idempotent.
func (a *accumulator) startTool(id, name string, input any) (ToolInvocation, bool) {
	if a.sealed {
		return ToolInvocation{}, false
	}
	if idx, seen := a.byID[id]; id != "" && seen {
		return a.arena[idx], false
	}

	a.flushText()
	a.arena = append(a.arena, ToolInvocation{
		ID:     id,
		Name:   name,
		Input:  normalizeToolInput(input),
		Status: ToolStatusLoading,
	})
	idx := len(a.arena) - 1
	if id != "" {
		a.byID[id] = idx
	}
	a.blocks = append(a.blocks, blockRef{kind: BlockTool, tool: idx})
	return a.arena[idx], true
}

// updateToolInput merges an input payload into the registered
// invocation. Updates carrying a name double as creation events for
// invocations that were never announced with a start; nameless updates
// for unknown ids are dropped.
func (a *accumulator) updateToolInput(id, name string, input any) (ToolInvocation, bool) {
	if a.sealed {
		return ToolInvocation{}, false
	}

	idx, ok := a.resolveTool(id)
	if !ok {
		if name == "" {
			logger.Debug("dropping input update for unknown tool", "tool_id", id)
			return ToolInvocation{}, false
		}
		return a.startTool(id, name, input)
	}

	invocation := &a.arena[idx]
	if name != "" {
		// Cumulative snapshot, the latest one wins.
		invocation.Input = normalizeToolInput(input)
	} else {
		invocation.Input = appendInputFragment(invocation.Input, input)
	}
	return *invocation, true
}

// closeTools marks every loading invocation as success and returns the
// ones it closed. Stop events carry no id on the wire, so one stop
// closes all open tools; an unrelated concurrently-loading tool closes
// with them.
func (a *accumulator) closeTools() []ToolInvocation {
	if a.sealed {
		return nil
	}

	var closed []ToolInvocation
	for i := range a.arena {
		if a.arena[i].Status == ToolStatusLoading {
			a.arena[i].Status = ToolStatusSuccess
			closed = append(closed, a.arena[i])
		}
	}
	return closed
}

// applyToolResult attaches result content to a registered invocation.
// Appended partials extend the result and keep the invocation loading;
// full results replace it and mark success. Unknown ids are dropped.
func (a *accumulator) applyToolResult(id, content string, appendContent bool) (ToolInvocation, bool) {
	if a.sealed {
		return ToolInvocation{}, false
	}

	idx, ok := a.resolveTool(id)
	if !ok {
		logger.Debug("dropping result for unknown tool", "tool_id", id)
		return ToolInvocation{}, false
	}

	invocation := &a.arena[idx]
	if appendContent {
		invocation.Result += content
	} else {
		invocation.Result = content
		invocation.Status = ToolStatusSuccess
	}
	return *invocation, true
}

func (a *accumulator) addTransfer(agent string) {
	if a.sealed {
		return
	}
	a.flushText()
	a.blocks = append(a.blocks, blockRef{kind: BlockTransfer, agent: agent})
}

func (a *accumulator) mergeMetadata(delta wire.MetadataDelta) {
	if a.sealed {
		return
	}
	a.meta.merge(delta)
}

// seal flushes the open text run and freezes the turn. Every transition
// after sealing is a silent no-op.
func (a *accumulator) seal() {
	if a.sealed {
		return
	}
	a.flushText()
	a.sealed = true
}

// sealWithError seals the turn with a trailing error block so the
// failure is visible in the transcript instead of silently truncating
// it.
func (a *accumulator) sealWithError(message string) {
	if a.sealed {
		return
	}
	a.flushText()
	a.blocks = append(a.blocks, blockRef{kind: BlockError, text: message})
	a.sealed = true
}

// snapshot materializes the current block list: finalized blocks plus
// the open text run as a trailing block. Tool records are deep copied so
// delivered snapshots are immune to later in-place updates. Repeated
// calls without intervening transitions yield identical results.
func (a *accumulator) snapshot() Snapshot {
	blocks := make([]ContentBlock, 0, len(a.blocks)+1)
	for _, ref := range a.blocks {
		blocks = append(blocks, a.materialize(ref))
	}
	if !a.sealed && a.open.Len() > 0 {
		blocks = append(blocks, ContentBlock{Kind: BlockText, Text: a.open.String()})
	}
	return Snapshot{Blocks: blocks, Sealed: a.sealed}
}

func (a *accumulator) materialize(ref blockRef) ContentBlock {
	switch ref.kind {
	case BlockTool:
		invocation := &ToolInvocation{}
		if err := copier.CopyWithOption(invocation, a.arena[ref.tool], copier.Option{DeepCopy: true}); err != nil {
			*invocation = a.arena[ref.tool]
		}
		return ContentBlock{Kind: BlockTool, Tool: invocation}
	case BlockTransfer:
		return ContentBlock{Kind: BlockTransfer, Agent: ref.agent}
	default:
		return ContentBlock{Kind: ref.kind, Text: ref.text}
	}
}

func (a *accumulator) flushText() {
	if a.open.Len() == 0 {
		return
	}
	a.blocks = append(a.blocks, blockRef{kind: BlockText, text: a.open.String()})
	a.open.Reset()
}

// resolveTool maps a tool id to its arena index. An empty id targets the
// most recently started invocation that is still loading.
func (a *accumulator) resolveTool(id string) (int, bool) {
	if id != "" {
		idx, ok := a.byID[id]
		return idx, ok
	}
	for i := len(a.arena) - 1; i >= 0; i-- {
		if a.arena[i].Status == ToolStatusLoading {
			return i, true
		}
	}
	return 0, false
}

// toolKnown reports whether an update for id would resolve to an
// already registered invocation.
func (a *accumulator) toolKnown(id string) bool {
	_, ok := a.resolveTool(id)
	return ok
}

// normalizeToolInput decodes complete JSON string payloads so callers
// see structured inputs regardless of how the wire delivered them.
// Incomplete strings are kept verbatim until a later update completes
// them.
func normalizeToolInput(input any) any {
	raw, ok := input.(string)
	if !ok {
		return input
	}
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}
	return decoded
}

// appendInputFragment folds a nameless delta payload into the current
// input. String fragments concatenate until the combined text decodes as
// JSON; structured payloads replace the input outright.
func appendInputFragment(current, update any) any {
	fragment, ok := update.(string)
	if !ok {
		if update == nil {
			return current
		}
		return update
	}

	combined := fragment
	if prior, ok := current.(string); ok {
		combined = prior + fragment
	}
	return normalizeToolInput(combined)
}
