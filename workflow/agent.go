package workflow

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/martinemde/percolate/coffee"
	"github.com/martinemde/percolate/llm"
)

// AgentConfig holds the per-role configuration for one agent.
type AgentConfig struct {
	Role        RoleID
	Prompt      string
	Model       string
	Provider    string
	Temperature *float64
	MaxTokens   int

	// ToolDefs lists the tools this role declares to the model; Tools
	// executes them. Both may be empty for prompt-only roles.
	ToolDefs []llm.ToolDefinition
	Tools    *coffee.Toolset

	// MaxToolRounds bounds tool round-trips within one turn.
	MaxToolRounds int

	// WindowSize bounds how many transcript messages are sent per call.
	WindowSize int

	Retry llm.RetryPolicy
}

// Agent pairs a fixed role prompt with the model client and, for roles that
// declare tools, the domain toolset. All four roles share this shape.
type Agent struct {
	cfg     AgentConfig
	client  *llm.Client
	emitter *Emitter
	logger  *slog.Logger
}

// TurnResult is one agent turn's output. ToolTrace holds the tool-call and
// tool-result messages produced during the turn, in order, for the
// Coordinator to append ahead of Final. Decision is set only by the user
// proxy role.
type TurnResult struct {
	Final     Message
	ToolTrace []Message
	Decision  Decision
}

// NewAgent creates an agent. Zero-value bounds fall back to 3 tool rounds
// and a 24-message window.
func NewAgent(client *llm.Client, emitter *Emitter, logger *slog.Logger, cfg AgentConfig) *Agent {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 3
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 24
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{cfg: cfg, client: client, emitter: emitter, logger: logger}
}

// Role returns the agent's role id.
func (a *Agent) Role() RoleID { return a.cfg.Role }

// Respond runs one turn: build the prompt window, stream a completion,
// execute any tool calls synchronously and re-enter with the results
// injected, then assemble the final message. Tool round-trips are bounded;
// a repeated call with identical arguments ends the tool phase early since
// validators are deterministic.
func (a *Agent) Respond(ctx context.Context, tr *Transcript) (*TurnResult, error) {
	conv := a.windowMessages(tr)
	toolDefs := a.cfg.ToolDefs

	var trace []Message
	seen := make(map[string]bool)

	for round := 0; ; round++ {
		resp, err := a.streamOnce(ctx, conv, toolDefs)
		if err != nil {
			return nil, fmt.Errorf("%s turn: %w", a.cfg.Role, err)
		}

		calls := resp.ToolCallsFromResponse()
		if len(calls) == 0 || a.cfg.Tools == nil || round >= a.cfg.MaxToolRounds {
			text := resp.Text()
			result := &TurnResult{
				Final:     newMessage(string(a.cfg.Role), KindNormal, text),
				ToolTrace: trace,
			}
			if a.cfg.Role == RoleUserProxy {
				result.Decision = ParseDecision(text)
			}
			return result, nil
		}

		assistant := llm.AssistantMessage(resp.Text())
		for _, tc := range calls {
			assistant.Content = append(assistant.Content, llm.ToolCallPart(tc.ID, tc.Name, tc.Arguments))
		}
		conv = append(conv, assistant)

		repeated := false
		for _, tc := range calls {
			sig := toolCallSignature(tc.Name, tc.Arguments)
			if seen[sig] {
				repeated = true
			}
			seen[sig] = true

			callMsg := newMessage(string(a.cfg.Role), KindToolCall,
				fmt.Sprintf("%s(%s)", tc.Name, compactArgs(tc.Arguments)))
			trace = append(trace, callMsg)
			a.emit(callMsg)

			content, execErr := a.cfg.Tools.Execute(tc.Name, tc.Arguments)
			isError := false
			if execErr != nil {
				content = execErr.Error()
				isError = true
				a.logger.Warn("tool execution failed",
					"role", string(a.cfg.Role), "tool", tc.Name, "error", execErr)
			}
			conv = append(conv, llm.ToolResultMessage(tc.ID, content, isError))

			resultMsg := newMessage(string(a.cfg.Role), KindToolResult, content)
			trace = append(trace, resultMsg)
			a.emit(resultMsg)
		}

		if repeated {
			a.logger.Info("repeated tool call cut short",
				"role", string(a.cfg.Role), "round", round)
			conv = append(conv, llm.UserMessage(
				"A validator was called again with identical arguments; its result cannot change. Write your answer now without further tool calls."))
			toolDefs = nil
			continue
		}
		if round+1 >= a.cfg.MaxToolRounds {
			// Last round: the next call must produce text.
			toolDefs = nil
		}
	}
}

// streamOnce issues one streaming completion, emitting stream chunks as
// they arrive and retrying the whole call on retryable failures. Nothing is
// committed to the transcript here, so an abandoned or failed stream leaves
// no partial message behind.
func (a *Agent) streamOnce(ctx context.Context, messages []llm.Message, toolDefs []llm.ToolDefinition) (*llm.Response, error) {
	req := llm.Request{
		Model:       a.cfg.Model,
		Provider:    a.cfg.Provider,
		Messages:    messages,
		ToolDefs:    toolDefs,
		Temperature: a.cfg.Temperature,
	}
	if a.cfg.MaxTokens > 0 {
		mt := a.cfg.MaxTokens
		req.MaxTokens = &mt
	}
	if len(toolDefs) > 0 {
		req.ToolChoice = &llm.ToolChoice{Mode: "auto"}
	}

	policy := a.cfg.Retry
	if policy.OnRetry == nil {
		policy.OnRetry = func(err error, attempt int, delay time.Duration) {
			a.logger.Warn("retrying model call",
				"role", string(a.cfg.Role), "attempt", attempt, "delay", delay, "error", err)
		}
	}

	return llm.Retry(ctx, policy, func(ctx context.Context) (*llm.Response, error) {
		events, err := a.client.Stream(ctx, req)
		if err != nil {
			return nil, err
		}

		acc := llm.NewStreamAccumulator()
		chunkID := uuid.New().String()
		seq := 0
		for ev := range events {
			if ev.Type == llm.StreamError {
				return nil, ev.Error
			}
			if ev.Type == llm.TextDelta && ev.Delta != "" {
				seq++
				a.emit(Message{
					ID:      chunkID,
					Source:  string(a.cfg.Role),
					Content: ev.Delta,
					Kind:    KindStreamChunk,
					Seq:     seq,
					Time:    time.Now(),
				})
			}
			acc.Process(ev)
		}
		if err := ctx.Err(); err != nil {
			return nil, &llm.AbortError{ClientError: llm.ClientError{Message: "stream abandoned", Cause: err}}
		}

		resp := acc.Response()
		if resp.Text() == "" && len(resp.ToolCallsFromResponse()) == 0 {
			return nil, &llm.EmptyResponseError{ClientError: llm.ClientError{Message: "model returned no content"}}
		}
		return resp, nil
	})
}

// windowMessages builds the model conversation: the role prompt as the
// system message, then the bounded transcript window with this role's own
// messages as assistant turns and everyone else's as attributed user turns.
func (a *Agent) windowMessages(tr *Transcript) []llm.Message {
	window := tr.Window(a.cfg.WindowSize)
	out := make([]llm.Message, 0, len(window)+1)
	out = append(out, llm.SystemMessage(a.cfg.Prompt))
	for _, m := range window {
		if m.Source == string(a.cfg.Role) {
			out = append(out, llm.AssistantMessage(m.Content))
			continue
		}
		out = append(out, llm.UserMessage(fmt.Sprintf("[%s] %s", m.Source, m.Content)))
	}
	return out
}

func (a *Agent) emit(msg Message) {
	if a.emitter != nil {
		a.emitter.Emit(msg)
	}
}

// toolCallSignature is a deterministic fingerprint of a tool call, name
// plus a hash of its arguments.
func toolCallSignature(name string, arguments json.RawMessage) string {
	h := sha256.Sum256(arguments)
	return fmt.Sprintf("%s:%x", name, h[:8])
}

func compactArgs(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
