package llm

import (
	"encoding/json"
	"testing"
)

func TestStreamAccumulatorText(t *testing.T) {
	acc := NewStreamAccumulator()

	events := []StreamEvent{
		{Type: StreamStart},
		{Type: TextStart},
		{Type: TextDelta, Delta: "Hello "},
		{Type: TextDelta, Delta: "world"},
		{Type: TextEnd},
		{Type: StreamFinish, FinishReason: &FinishReason{Reason: "stop"}, Usage: &Usage{InputTokens: 5, OutputTokens: 10, TotalTokens: 15}},
	}

	for _, e := range events {
		acc.Process(e)
	}

	if !acc.Finished() {
		t.Error("expected accumulator to be finished")
	}
	resp := acc.Response()
	if resp.Text() != "Hello world" {
		t.Errorf("expected accumulated text %q, got %q", "Hello world", resp.Text())
	}
	if resp.FinishReason.Reason != "stop" {
		t.Errorf("expected finish reason %q, got %q", "stop", resp.FinishReason.Reason)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected total_tokens 15, got %d", resp.Usage.TotalTokens)
	}
}

func TestStreamAccumulatorToolCalls(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.Process(StreamEvent{Type: ToolCallEnd, ToolCall: &ToolCall{
		ID: "call_1", Name: "validate_ratio", Arguments: json.RawMessage(`{"code":"x"}`),
	}})
	acc.Process(StreamEvent{Type: StreamFinish, FinishReason: &FinishReason{Reason: "tool_calls"}})

	resp := acc.Response()
	calls := resp.ToolCallsFromResponse()
	if len(calls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(calls))
	}
	if calls[0].Name != "validate_ratio" {
		t.Errorf("expected tool name validate_ratio, got %q", calls[0].Name)
	}
}

func TestStreamAccumulatorPartial(t *testing.T) {
	acc := NewStreamAccumulator()
	acc.Process(StreamEvent{Type: TextDelta, Delta: "partial"})

	if acc.Finished() {
		t.Error("expected accumulator not finished without StreamFinish")
	}
	if acc.Text() != "partial" {
		t.Errorf("expected partial text, got %q", acc.Text())
	}
}
