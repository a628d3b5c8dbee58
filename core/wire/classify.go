package wire

import (
	"encoding/json"
	"strings"

	"github.com/agentwire/agentwire/internal/utils"
)

// Classifier matches decoded stream values against the recognized shapes
// and emits their effects. The only state it keeps is whether the first
// value of the turn has been seen, which gates bootstrap agent-card
// detection. Use one classifier per turn.
type Classifier struct {
	seenFirst bool
}

// Classify returns the ordered effects of one decoded value. Values that
// match no shape produce no effects; classification never fails.
func (c *Classifier) Classify(value any) []Effect {
	first := !c.seenFirst
	c.seenFirst = true

	switch v := value.(type) {
	case string:
		// A line that decoded to a bare JSON string is plain text.
		return []Effect{TextDelta{Text: unescapeText(v)}}
	case map[string]any:
		if first {
			if cards := matchAgentCards(v); cards != nil {
				return []Effect{AgentCards{Cards: cards}}
			}
		}

		var effects []Effect
		effects = append(effects, matchEnvelope(v)...)
		effects = append(effects, matchDirectDelta(v)...)
		effects = append(effects, matchDataString(v)...)
		effects = append(effects, matchActions(v)...)
		effects = append(effects, matchContentParts(v)...)
		effects = append(effects, matchMessageContent(v)...)
		effects = append(effects, matchCurrentToolUse(v)...)
		effects = append(effects, matchToolStream(v)...)
		effects = append(effects, matchResult(v)...)
		effects = append(effects, matchTopLevelMetadata(v)...)
		return effects
	default:
		return nil
	}
}

// matchEnvelope handles the nested {"event": {...}} shape.
func matchEnvelope(obj map[string]any) []Effect {
	event, ok := asMap(obj["event"])
	if !ok {
		return nil
	}

	var effects []Effect

	if start, ok := asMap(event["contentBlockStart"]); ok {
		if toolUse, ok := asMap(nestedMap(start, "start")["toolUse"]); ok {
			effects = append(effects, ToolStart{
				ID:   asStringOr(toolUse["toolUseId"], ""),
				Name: asStringOr(toolUse["name"], ""),
			})
		}
	}

	if delta, ok := asMap(nestedMap(event, "contentBlockDelta")["delta"]); ok {
		if toolUse, ok := asMap(delta["toolUse"]); ok {
			effects = append(effects, ToolInput{
				ID:    asStringOr(toolUse["toolUseId"], ""),
				Input: toolUse["input"],
			})
		}
		if text, ok := delta["text"].(string); ok {
			effects = append(effects, TextDelta{Text: unescapeText(text)})
		}
	}

	if _, ok := event["contentBlockStop"]; ok {
		effects = append(effects, ToolStop{})
	}

	if stop, ok := asMap(event["messageStop"]); ok {
		if reason, ok := stop["stopReason"].(string); ok && reason != "" {
			effects = append(effects, StopReason{Reason: reason})
		}
	}

	if metadata, ok := asMap(event["metadata"]); ok {
		effects = append(effects, Metadata{Delta: parseMetadata(metadata)})
	}

	return effects
}

// matchDirectDelta handles {"delta": {"text": ...}}.
func matchDirectDelta(obj map[string]any) []Effect {
	delta, ok := asMap(obj["delta"])
	if !ok {
		return nil
	}
	text, ok := delta["text"].(string)
	if !ok {
		return nil
	}
	return []Effect{TextDelta{Text: text}}
}

// matchDataString handles {"data": "..."}.
func matchDataString(obj map[string]any) []Effect {
	text, ok := obj["data"].(string)
	if !ok {
		return nil
	}
	return []Effect{TextDelta{Text: text}}
}

// matchActions handles the {"actions": {"transfer_to_agent": ...}} shape.
// It runs before matchContentParts so that a transfer always precedes the
// text carried by the same event, regardless of JSON field order.
func matchActions(obj map[string]any) []Effect {
	actions, ok := asMap(obj["actions"])
	if !ok {
		return nil
	}
	agent, ok := actions["transfer_to_agent"].(string)
	if !ok || agent == "" {
		return nil
	}
	return []Effect{Transfer{Agent: agent}}
}

// matchContentParts handles {"content": {"parts": [{"text": ...}]}}.
func matchContentParts(obj map[string]any) []Effect {
	content, ok := asMap(obj["content"])
	if !ok {
		return nil
	}
	parts, ok := content["parts"].([]any)
	if !ok {
		return nil
	}

	var effects []Effect
	for _, part := range parts {
		partMap, ok := asMap(part)
		if !ok {
			continue
		}
		if text, ok := partMap["text"].(string); ok && text != "" {
			effects = append(effects, TextDelta{Text: unescapeText(text)})
		}
	}
	return effects
}

// matchMessageContent handles {"message": {"content": [...]}} items of the
// toolUse and toolResult kinds.
func matchMessageContent(obj map[string]any) []Effect {
	message, ok := asMap(obj["message"])
	if !ok {
		return nil
	}
	content, ok := message["content"].([]any)
	if !ok {
		return nil
	}

	var effects []Effect
	for _, item := range content {
		itemMap, ok := asMap(item)
		if !ok {
			continue
		}

		if toolUse, ok := asMap(itemMap["toolUse"]); ok {
			effects = append(effects, ToolStart{
				ID:    asStringOr(toolUse["toolUseId"], ""),
				Name:  asStringOr(toolUse["name"], ""),
				Input: toolUse["input"],
			})
		}

		if toolResult, ok := asMap(itemMap["toolResult"]); ok {
			effects = append(effects, ToolResult{
				ID:      asStringOr(toolResult["toolUseId"], ""),
				Content: toolResultText(toolResult),
			})
		}
	}
	return effects
}

// matchCurrentToolUse handles the {"current_tool_use": {...}} snapshot
// shape. The snapshot is cumulative, so it doubles as a creation event for
// invocations that were never announced with a start.
func matchCurrentToolUse(obj map[string]any) []Effect {
	toolUse, ok := asMap(obj["current_tool_use"])
	if !ok {
		return nil
	}
	return []Effect{ToolInput{
		ID:    asStringOr(toolUse["toolUseId"], ""),
		Name:  asStringOr(toolUse["name"], ""),
		Input: toolUse["input"],
	}}
}

// matchToolStream handles {"tool_stream_event": {...}} partial results.
func matchToolStream(obj map[string]any) []Effect {
	streamEvent, ok := asMap(obj["tool_stream_event"])
	if !ok {
		return nil
	}

	id := ""
	if toolUse, ok := asMap(streamEvent["tool_use"]); ok {
		id = asStringOr(toolUse["toolUseId"], "")
	}

	data, ok := streamEvent["data"]
	if !ok {
		return nil
	}
	return []Effect{ToolResult{ID: id, Content: stringify(data), Append: true}}
}

// matchResult handles the {"result": ...} end-of-turn summary.
func matchResult(obj map[string]any) []Effect {
	result, present := obj["result"]
	if !present {
		return nil
	}

	resultMap, ok := asMap(result)
	if !ok {
		// A plain-string result repeats text already streamed; it still
		// marks the summary as received.
		return []Effect{FinalResult{}}
	}

	delta := MetadataDelta{}
	if reason, ok := resultMap["stop_reason"].(string); ok && reason != "" {
		delta.StopReason = &reason
	}
	if metrics, ok := asMap(resultMap["metrics"]); ok {
		if usage, ok := asMap(metrics["accumulated_usage"]); ok {
			delta.InputTokens = asIntPtr(firstOf(usage, "inputTokens", "input_tokens"))
			delta.OutputTokens = asIntPtr(firstOf(usage, "outputTokens", "output_tokens"))
			delta.TotalTokens = asIntPtr(firstOf(usage, "totalTokens", "total_tokens"))
		}
		if accumulated, ok := asMap(metrics["accumulated_metrics"]); ok {
			if latency := asFloatPtr(firstOf(accumulated, "latencyMs", "latency_ms")); latency != nil {
				delta.LatencySeconds = utils.Ptr(*latency / 1000)
			}
		}
		if durations, ok := metrics["cycle_durations"].([]any); ok {
			for _, duration := range durations {
				if f, ok := asFloat(duration); ok {
					delta.CycleDurations = append(delta.CycleDurations, f)
				}
			}
		}
		if toolMetrics, ok := asMap(metrics["tool_metrics"]); ok {
			delta.ToolMetrics = parseToolMetrics(toolMetrics)
		}
	}
	return []Effect{FinalResult{Delta: delta}}
}

// matchTopLevelMetadata handles top level {"metadata": {...}} and
// {"stop_reason": ...}.
func matchTopLevelMetadata(obj map[string]any) []Effect {
	var effects []Effect
	if metadata, ok := asMap(obj["metadata"]); ok {
		effects = append(effects, Metadata{Delta: parseMetadata(metadata)})
	}
	if reason, ok := obj["stop_reason"].(string); ok && reason != "" {
		effects = append(effects, StopReason{Reason: reason})
	}
	return effects
}

// parseMetadata reads the converse-style metadata payload with usage and
// latency metrics.
func parseMetadata(metadata map[string]any) MetadataDelta {
	delta := MetadataDelta{}
	if usage, ok := asMap(metadata["usage"]); ok {
		delta.InputTokens = asIntPtr(firstOf(usage, "inputTokens", "input_tokens"))
		delta.OutputTokens = asIntPtr(firstOf(usage, "outputTokens", "output_tokens"))
		delta.TotalTokens = asIntPtr(firstOf(usage, "totalTokens", "total_tokens"))
	}
	if metrics, ok := asMap(metadata["metrics"]); ok {
		if latency := asFloatPtr(firstOf(metrics, "latencyMs", "latency_ms")); latency != nil {
			delta.LatencySeconds = utils.Ptr(*latency / 1000)
		}
	}
	return delta
}

func parseToolMetrics(raw map[string]any) map[string]ToolMetric {
	metrics := make(map[string]ToolMetric, len(raw))
	for name, value := range raw {
		metricMap, ok := asMap(value)
		if !ok {
			continue
		}
		metric := ToolMetric{}
		if count := asIntPtr(firstOf(metricMap, "call_count", "callCount")); count != nil {
			metric.CallCount = *count
		}
		if rate := asFloatPtr(firstOf(metricMap, "success_rate", "successRate")); rate != nil {
			metric.SuccessRate = *rate
		}
		if total := asFloatPtr(firstOf(metricMap, "total_time", "totalTime")); total != nil {
			metric.TotalTime = *total
		}
		metrics[name] = metric
	}
	if len(metrics) == 0 {
		return nil
	}
	return metrics
}

// toolResultText flattens a toolResult content list into one string.
func toolResultText(toolResult map[string]any) string {
	content, ok := toolResult["content"].([]any)
	if !ok {
		if text, ok := toolResult["content"].(string); ok {
			return text
		}
		return ""
	}

	out := ""
	for _, item := range content {
		itemMap, ok := asMap(item)
		if !ok {
			continue
		}
		if text, ok := itemMap["text"].(string); ok {
			out += text
		} else if jsonValue, ok := itemMap["json"]; ok {
			out += stringify(jsonValue)
		}
	}
	return out
}

func asMap(value any) (map[string]any, bool) {
	m, ok := value.(map[string]any)
	return m, ok
}

func nestedMap(obj map[string]any, key string) map[string]any {
	if m, ok := asMap(obj[key]); ok {
		return m
	}
	return nil
}

func asStringOr(value any, fallback string) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fallback
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asFloatPtr(value any) *float64 {
	if f, ok := asFloat(value); ok {
		return utils.Ptr(f)
	}
	return nil
}

func asIntPtr(value any) *int {
	if f, ok := asFloat(value); ok {
		return utils.Ptr(int(f))
	}
	return nil
}

func firstOf(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := obj[key]; ok {
			return value
		}
	}
	return nil
}

// unescapeText decodes literal \n sequences carried inside streamed text
// payloads into real newlines.
func unescapeText(text string) string {
	return strings.ReplaceAll(text, `\n`, "\n")
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(encoded)
}
