package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

type BlockKind string

const (
	BlockText     BlockKind = "text"
	BlockTool     BlockKind = "tool"
	BlockTransfer BlockKind = "transfer"
	BlockError    BlockKind = "error"
)

type ToolStatus string

const (
	ToolStatusLoading ToolStatus = "loading"
	ToolStatusSuccess ToolStatus = "success"
)

// ToolInvocation is the tracked state of one tool call, identified by id
// across its start, input, stop and result events.
type ToolInvocation struct {
	ID     string
	Name   string
	Input  any
	Status ToolStatus
	Result string
}

// DecodeInput decodes the invocation's input into out. Inputs that
// arrived as a JSON string are decoded directly; structured inputs are
// round-tripped through JSON.
func (t *ToolInvocation) DecodeInput(out any) error {
	raw, ok := t.Input.(string)
	if !ok {
		encoded, err := json.Marshal(t.Input)
		if err != nil {
			return fmt.Errorf("failed to encode tool input: %w", err)
		}
		raw = string(encoded)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to decode tool input: %w", err)
	}
	return nil
}

// ContentBlock is one ordered unit of the rendered transcript. Exactly
// one of Text, Tool or Agent is meaningful, selected by Kind. Error
// blocks carry the failure text in Text.
type ContentBlock struct {
	Kind  BlockKind
	Text  string
	Tool  *ToolInvocation
	Agent string
}

// Snapshot is an immutable view of the turn's content blocks at one
// instant. Blocks are deep copies; later stream events never mutate an
// already delivered snapshot.
type Snapshot struct {
	Blocks []ContentBlock
	Sealed bool
}

// Text returns the concatenation of all text block contents, in order.
func (s Snapshot) Text() string {
	var out strings.Builder
	for _, block := range s.Blocks {
		if block.Kind == BlockText {
			out.WriteString(block.Text)
		}
	}
	return out.String()
}
