package events

// KindTranscriptSegment identifies streamed assistant text pieces.
const KindTranscriptSegment Kind = "transcript.segment"

// TranscriptSegment is one streamed assistant text piece, in arrival
// order.
type TranscriptSegment struct {
	Base
	Segment string
}

// NewTranscriptSegment creates a transcript segment event.
func NewTranscriptSegment(segment string) TranscriptSegment {
	return TranscriptSegment{Base: NewBase(KindTranscriptSegment), Segment: segment}
}
