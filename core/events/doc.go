// Package events defines the typed transcript event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - turn_state.*
//   - transcript.*
//   - tool_call.*
//   - transfer.*
//   - agent_cards.*
//   - metadata.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Updated: mutable point-in-time state that can change again.
//   - Completed/Failed/Cancelled: terminal lifecycle boundaries.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a send was dispatched and the
//     response stream opened.
//   - TurnCompleted (turn_state.completed): the stream ended and the turn
//     sealed normally.
//   - TurnFailed (turn_state.failed): a transport failure sealed the turn
//     with partial content.
//   - TurnCancelled (turn_state.cancelled): the caller abandoned the turn
//     mid-stream.
//
// transcript events
//
//   - TranscriptSegment (transcript.segment): streamed assistant text
//     piece, in arrival order.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): an invocation was registered
//     and its block appended.
//   - ToolCallInputUpdated (tool_call.input_updated): the invocation's
//     input changed in place.
//   - ToolCallCompleted (tool_call.completed): the invocation left the
//     loading state.
//
// transfer events
//
//   - TransferAnnounced (transfer.announced): control moved to a named
//     sub-agent.
//
// agent_cards events
//
//   - AgentCardsDiscovered (agent_cards.discovered): the one-shot
//     bootstrap registry update.
//
// metadata events
//
//   - MetadataUpdated (metadata.updated): usage, latency or stop-reason
//     fields merged into the turn.
package events
