// Package transcript turns a live agent response stream into an ordered,
// renderable turn transcript.
//
// A [Session] owns the connection-level state: a fresh session id, the
// transport client, registered tool specs and the agent-card registry.
// Each [Session.Send] consumes one response stream in a single pass,
// classifying every decoded line into semantic effects, folding them into
// the turn's content blocks, and handing an immutable [Snapshot] to the
// caller after every applied event. The sealed [Turn] is returned when
// the stream ends.
package transcript
