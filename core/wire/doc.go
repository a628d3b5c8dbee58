// Package wire turns decoded stream events into ordered semantic effects.
//
// Agent runtimes speak an underspecified, multi-framework line protocol:
// a single decoded value can simultaneously match several of the recognized
// shapes (a transfer notice with trailing text, a message that carries both
// tool uses and tool results). The classifier therefore runs every shape
// matcher independently, in a fixed order, and concatenates their effects
// instead of dispatching exclusively on one tag.
//
// Recognized shapes:
//
//   - nested envelope {"event": {...}} with contentBlockStart,
//     contentBlockDelta, contentBlockStop, messageStop and metadata
//   - direct delta {"delta": {"text": ...}}
//   - simple {"data": "..."}
//   - content parts {"content": {"parts": [{"text": ...}]}} with an
//     optional {"actions": {"transfer_to_agent": ...}}
//   - bare {"actions": {"transfer_to_agent": ...}}
//   - {"message": {"content": [{"toolUse": ...} | {"toolResult": ...}]}}
//   - {"current_tool_use": {...}}
//   - {"tool_stream_event": {...}}
//   - {"result": {...}}
//   - top level {"metadata": {...}} and {"stop_reason": ...}
//
// The very first value of a turn is additionally checked against the
// bootstrap shape: a map whose every value is an agent descriptor carrying
// both a description and an endpoint. Such a value updates the agent-card
// registry and contributes no content.
package wire
