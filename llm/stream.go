package llm

// StreamAccumulator collects stream events into a complete Response. The
// consumer feeds it every event it reads; if the consumer stops early the
// accumulator simply holds whatever arrived so far and nothing is committed
// anywhere else.
type StreamAccumulator struct {
	text         []byte
	toolCalls    []ToolCall
	finishReason *FinishReason
	usage        *Usage
	response     *Response
}

// NewStreamAccumulator creates an empty StreamAccumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{}
}

// Process ingests a single stream event.
func (sa *StreamAccumulator) Process(event StreamEvent) {
	switch event.Type {
	case TextDelta:
		sa.text = append(sa.text, event.Delta...)
	case ToolCallEnd:
		if event.ToolCall != nil {
			sa.toolCalls = append(sa.toolCalls, *event.ToolCall)
		}
	case StreamFinish:
		sa.finishReason = event.FinishReason
		sa.usage = event.Usage
		sa.response = event.Response
	}
}

// Text returns the text accumulated so far.
func (sa *StreamAccumulator) Text() string {
	return string(sa.text)
}

// Finished reports whether a StreamFinish event has been processed.
func (sa *StreamAccumulator) Finished() bool {
	return sa.finishReason != nil || sa.response != nil
}

// Response returns the accumulated response. When the provider supplied a
// final Response event it is returned verbatim; otherwise one is assembled
// from the accumulated parts.
func (sa *StreamAccumulator) Response() *Response {
	if sa.response != nil {
		return sa.response
	}

	var content []ContentPart
	if len(sa.text) > 0 {
		content = append(content, TextPart(string(sa.text)))
	}
	for _, tc := range sa.toolCalls {
		content = append(content, ToolCallPart(tc.ID, tc.Name, tc.Arguments))
	}

	fr := FinishReason{Reason: "stop"}
	if sa.finishReason != nil {
		fr = *sa.finishReason
	}

	usage := Usage{}
	if sa.usage != nil {
		usage = *sa.usage
	}

	return &Response{
		Message:      Message{Role: RoleAssistant, Content: content},
		FinishReason: fr,
		Usage:        usage,
	}
}
