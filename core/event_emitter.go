package transcript

import "github.com/agentwire/agentwire/core/events"

type eventEmitter func(events.Event)

func newCallbackEventEmitter(opts SendOptions) eventEmitter {
	return func(event events.Event) {
		if opts.onEvent != nil {
			opts.onEvent(event)
		}
		switch typedEvent := event.(type) {
		case events.TranscriptSegment:
			if opts.onTextSegment != nil {
				opts.onTextSegment(typedEvent.Segment)
			}
		case events.ToolCallStarted, events.ToolCallInputUpdated, events.ToolCallCompleted:
			if opts.onToolCall != nil {
				opts.onToolCall(event)
			}
		case events.TransferAnnounced:
			if opts.onTransfer != nil {
				opts.onTransfer(typedEvent.Agent)
			}
		case events.MetadataUpdated:
			if opts.onMetadata != nil {
				opts.onMetadata(typedEvent.Delta)
			}
		}
	}
}
