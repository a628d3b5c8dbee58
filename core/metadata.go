package transcript

import (
	"time"

	"github.com/agentwire/agentwire/core/wire"
)

// TokenUsage is the accumulated token count of one turn.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// TurnMetadata collects the optional metrics reported across a turn's
// stream. Wire-reported fields merge opportunistically, last present
// value wins per field. TimeToFirstEvent and Elapsed are measured
// locally by the session.
type TurnMetadata struct {
	Usage            TokenUsage
	StopReason       string
	LatencySeconds   float64
	CycleDurations   []float64
	ToolMetrics      map[string]wire.ToolMetric
	TimeToFirstEvent time.Duration
	Elapsed          time.Duration
}

func (m *TurnMetadata) merge(delta wire.MetadataDelta) {
	if delta.InputTokens != nil {
		m.Usage.InputTokens = *delta.InputTokens
	}
	if delta.OutputTokens != nil {
		m.Usage.OutputTokens = *delta.OutputTokens
	}
	if delta.TotalTokens != nil {
		m.Usage.TotalTokens = *delta.TotalTokens
	}
	if delta.StopReason != nil {
		m.StopReason = *delta.StopReason
	}
	if delta.LatencySeconds != nil {
		m.LatencySeconds = *delta.LatencySeconds
	}
	if delta.CycleDurations != nil {
		m.CycleDurations = delta.CycleDurations
	}
	if delta.ToolMetrics != nil {
		m.ToolMetrics = delta.ToolMetrics
	}
}
