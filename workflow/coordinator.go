package workflow

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/martinemde/percolate/coffee"
	"github.com/martinemde/percolate/llm"
)

// State is the coordinator's position in the workflow state machine.
type State string

const (
	StateInit             State = "INIT"
	StateGenerating       State = "GENERATING"
	StateAnalyzing        State = "ANALYZING"
	StateOptimizing       State = "OPTIMIZING"
	StateAwaitingDecision State = "AWAITING_DECISION"
	StateApproved         State = "APPROVED"
	StateRetry            State = "RETRY"
	StateAborted          State = "ABORTED"
	StateError            State = "ERROR"
)

// TerminationState is the run's final disposition. Once non-running it
// never changes.
type TerminationState string

const (
	TerminationRunning       TerminationState = "running"
	TerminationApproved      TerminationState = "approved"
	TerminationMaxIterations TerminationState = "max-iterations-exceeded"
	TerminationAborted       TerminationState = "aborted-by-user"
	TerminationFatal         TerminationState = "fatal-error"
)

// Terminal reports whether the state is final.
func (t TerminationState) Terminal() bool { return t != TerminationRunning }

// Config holds the read-only run configuration. Everything here is fixed
// before Run begins; nothing is consulted from shared mutable state mid-run.
type Config struct {
	Model       string
	Provider    string
	Temperature *float64
	MaxTokens   int

	// MaxIterations bounds generate-review-optimize-decide cycles.
	MaxIterations int
	// MaxToolRounds bounds tool round-trips within one agent turn.
	MaxToolRounds int
	// WindowSize bounds the transcript window sent per model call.
	WindowSize int

	Bounds coffee.Bounds
	Retry  llm.RetryPolicy

	// EventBuffer sizes the Events channel.
	EventBuffer int

	Logger *slog.Logger
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 3,
		MaxToolRounds: 3,
		WindowSize:    24,
		Bounds:        coffee.DefaultBounds(),
		Retry:         llm.DefaultRetryPolicy(),
		EventBuffer:   256,
	}
}

// RunResult is the final record of one workflow run. Artifact is empty only
// if no generator or optimizer message ever contained a code block; for any
// terminal state other than approved it holds the last attempted draft,
// explicitly unapproved.
type RunResult struct {
	RunID      string           `json:"run_id"`
	Artifact   string           `json:"artifact,omitempty"`
	Transcript []Message        `json:"transcript"`
	State      TerminationState `json:"state"`
	Reason     string           `json:"reason,omitempty"`
	Iterations int              `json:"iterations"`
}

// Approved reports whether the run ended with user approval.
func (r *RunResult) Approved() bool { return r.State == TerminationApproved }

// Coordinator drives one bounded round-robin conversation across the four
// role agents. It is the transcript's only writer and advances strictly
// sequentially; construct a fresh Coordinator per run. Independent runs
// share nothing mutable and may execute in parallel.
type Coordinator struct {
	id          string
	cfg         Config
	agents      map[RoleID]*Agent
	emitter     *Emitter
	logger      *slog.Logger
	state       State
	transitions int
}

// NewCoordinator wires the four role agents around the given model client.
// The client is injected as an opaque capability; the coordinator never
// reads credentials.
func NewCoordinator(client *llm.Client, cfg Config) *Coordinator {
	def := DefaultConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = def.MaxToolRounds
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = def.WindowSize
	}
	if cfg.Bounds == (coffee.Bounds{}) {
		cfg.Bounds = def.Bounds
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.BaseDelay == 0 {
		cfg.Retry = def.Retry
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	id := uuid.New().String()
	emitter := NewEmitter(cfg.EventBuffer)
	logger := cfg.Logger.With("run_id", id)
	tools := coffee.NewToolset(cfg.Bounds)

	agent := func(role RoleID, prompt string, defs []llm.ToolDefinition) *Agent {
		var toolset *coffee.Toolset
		if len(defs) > 0 {
			toolset = tools
		}
		return NewAgent(client, emitter, logger, AgentConfig{
			Role:          role,
			Prompt:        prompt,
			Model:         cfg.Model,
			Provider:      cfg.Provider,
			Temperature:   cfg.Temperature,
			MaxTokens:     cfg.MaxTokens,
			ToolDefs:      defs,
			Tools:         toolset,
			MaxToolRounds: cfg.MaxToolRounds,
			WindowSize:    cfg.WindowSize,
			Retry:         cfg.Retry,
		})
	}

	return &Coordinator{
		id:  id,
		cfg: cfg,
		agents: map[RoleID]*Agent{
			RoleGenerator: agent(RoleGenerator, generatorPrompt, tools.CalculatorDefs()),
			RoleAnalyzer:  agent(RoleAnalyzer, analyzerPrompt, tools.ValidatorDefs()),
			RoleOptimizer: agent(RoleOptimizer, optimizerPrompt, tools.ValidatorDefs()),
			RoleUserProxy: agent(RoleUserProxy, userProxyPrompt, nil),
		},
		emitter: emitter,
		logger:  logger,
		state:   StateInit,
	}
}

// ID returns the run identifier.
func (c *Coordinator) ID() string { return c.id }

// Events returns the channel of transcript messages, including stream
// chunks, as they are produced. The channel is closed when Run returns. A
// caller that stops consuming loses display events but never stalls or
// corrupts the run; cancelling the Run context is how a caller stops the
// run itself.
func (c *Coordinator) Events() <-chan Message {
	return c.emitter.Events()
}

// State returns the coordinator's current machine state.
func (c *Coordinator) State() State { return c.state }

// Transitions returns how many state transitions have occurred.
func (c *Coordinator) Transitions() int { return c.transitions }

var stateForRole = map[RoleID]State{
	RoleGenerator: StateGenerating,
	RoleAnalyzer:  StateAnalyzing,
	RoleOptimizer: StateOptimizing,
	RoleUserProxy: StateAwaitingDecision,
}

// Run executes the workflow for one requirement and returns the final
// record. The returned error is non-nil only when the run ended through a
// fatal model error or context cancellation; decision-driven outcomes
// (approved, aborted, iteration budget exhausted) return a nil error and
// speak through RunResult.State. The transcript in the result is complete
// up to the point the run stopped.
func (c *Coordinator) Run(ctx context.Context, requirement string) (*RunResult, error) {
	defer c.emitter.Close()

	tr := NewTranscript()
	c.appendEmit(tr, newMessage(SourceUser, KindNormal, requirement))
	c.logger.Info("run started", "requirement", requirement)

	termination := TerminationRunning
	terminate := func(next TerminationState) {
		if termination == TerminationRunning {
			termination = next
		}
	}

	var reason string
	var runErr error
	iterations := 0

loop:
	for iteration := 0; iteration < c.cfg.MaxIterations; iteration++ {
		iterations = iteration + 1
		var decision Decision

		for _, role := range RoleOrder {
			c.setState(stateForRole[role])

			result, err := c.agents[role].Respond(ctx, tr)
			if err != nil {
				terminate(terminationForError(err))
				reason = err.Error()
				runErr = err
				if termination == TerminationFatal {
					c.setState(StateError)
				} else {
					c.setState(StateAborted)
				}
				c.logger.Error("agent turn failed", "role", string(role), "error", err)
				break loop
			}

			for _, m := range result.ToolTrace {
				c.appendEmit(tr, m)
			}
			c.appendEmit(tr, result.Final)
			if role == RoleUserProxy {
				decision = result.Decision
			}
		}

		switch decision {
		case DecisionApprove:
			terminate(TerminationApproved)
			c.setState(StateApproved)
			break loop
		case DecisionAbort:
			terminate(TerminationAborted)
			reason = "user proxy issued ABORT"
			c.setState(StateAborted)
			break loop
		default:
			if iteration+1 >= c.cfg.MaxIterations {
				terminate(TerminationMaxIterations)
				reason = "iteration budget exhausted"
				c.setState(StateError)
				break loop
			}
			c.setState(StateRetry)
			c.appendEmit(tr, newMessage(SourceUser, KindNormal, critiqueSeed(tr)))
			c.logger.Info("revision requested", "iteration", iteration+1)
		}
	}
	terminate(TerminationMaxIterations)

	final := newMessage(SourceUser, KindTermination, string(termination))
	c.appendEmit(tr, final)
	c.logger.Info("run finished",
		"state", string(termination), "iterations", iterations, "transitions", c.transitions)

	return &RunResult{
		RunID:      c.id,
		Artifact:   tr.Artifact(),
		Transcript: tr.Messages(),
		State:      termination,
		Reason:     reason,
		Iterations: iterations,
	}, runErr
}

func (c *Coordinator) setState(next State) {
	if c.state != next {
		c.state = next
		c.transitions++
	}
}

func (c *Coordinator) appendEmit(tr *Transcript, msg Message) {
	tr.Append(msg)
	c.emitter.Emit(msg)
}

// terminationForError distinguishes caller cancellation from exhausted
// retries and other fatal model failures.
func terminationForError(err error) TerminationState {
	var abort *llm.AbortError
	if errors.As(err, &abort) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return TerminationAborted
	}
	return TerminationFatal
}

// critiqueSeed builds the revision instruction appended before looping back
// to the generator, folding in the latest reviewer findings and user
// feedback.
func critiqueSeed(tr *Transcript) string {
	var parts []string
	if m, ok := tr.LastFrom(string(RoleAnalyzer)); ok {
		parts = append(parts, "Reviewer findings:\n"+m.Content)
	}
	if m, ok := tr.LastFrom(string(RoleUserProxy)); ok {
		parts = append(parts, "User feedback:\n"+m.Content)
	}
	seed := "Revise the code to address the critique below and return the complete corrected program."
	if len(parts) > 0 {
		seed += "\n\n" + strings.Join(parts, "\n\n")
	}
	return seed
}
