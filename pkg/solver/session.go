// Package solver runs autonomous crossword solving sessions: an oracle
// drives the fill through tools while the controller enforces the
// iteration budget, transcript compression, and the session lifecycle.
package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"solver/pkg/config"
	"solver/pkg/contextmgr"
	"solver/pkg/events"
	"solver/pkg/ledger"
	"solver/pkg/logx"
	"solver/pkg/metrics"
	"solver/pkg/oracle"
	"solver/pkg/oracle/llmerrors"
	"solver/pkg/puzzle"
	"solver/pkg/tools"
)

// Failure reasons reported in solving_failed events.
const (
	FailureMaxIterations = "max_iterations"
	FailureOracleError   = "oracle_error"
	FailureCanceled      = "canceled"
)

// Session is a single solving run over one puzzle. It owns the grid,
// the attempt ledger, and the oracle transcript; front ends observe it
// through the event bus and Snapshot.
type Session struct {
	startTime  time.Time
	grid       *puzzle.Grid
	ledger     *ledger.Ledger
	contextMgr *contextmgr.ContextManager
	client     oracle.Client
	provider   *tools.ToolProvider
	bus        *events.Bus
	recorder   metrics.Recorder
	logger     *logx.Logger
	delay      time.Duration
	id         string
	failure    string
	transitions []StateTransition
	state       State
	iterations  int
	toolCalls   int
	mu          sync.Mutex
}

// NewSession creates a session in INIT over a fresh grid. The recorder
// may be nil when metrics are disabled.
func NewSession(p *puzzle.Puzzle, client oracle.Client, bus *events.Bus, recorder metrics.Recorder) *Session {
	grid := puzzle.NewGrid(p)
	led := ledger.New()
	return &Session{
		id:         uuid.New().String(),
		grid:       grid,
		ledger:     led,
		contextMgr: contextmgr.NewContextManagerWithModel(client.GetModelName()),
		client:     client,
		provider:   tools.NewProvider(tools.SolverContext{Grid: grid, Ledger: led}, tools.AllToolNames),
		bus:        bus,
		recorder:   recorder,
		logger:     logx.NewLogger("solver"),
		delay:      config.IterationDelay,
		state:      StateInit,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Grid returns the session's grid for read-only observation.
func (s *Session) Grid() *puzzle.Grid {
	return s.grid
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot is the session status served over the API.
type Snapshot struct {
	SessionID   string  `json:"session_id"`
	Puzzle      string  `json:"puzzle"`
	State       string  `json:"state"`
	Failure     string  `json:"failure_reason,omitempty"`
	Iterations  int     `json:"iterations"`
	ToolCalls   int     `json:"tool_calls"`
	Filled      int     `json:"filled"`
	TotalClues  int     `json:"total_clues"`
	TimeElapsed float64 `json:"time_elapsed"`
}

// GetSnapshot returns the current session status.
func (s *Session) GetSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := 0.0
	if !s.startTime.IsZero() {
		elapsed = time.Since(s.startTime).Seconds()
	}
	return Snapshot{
		SessionID:   s.id,
		Puzzle:      s.grid.Puzzle().Name,
		State:       s.state.String(),
		Failure:     s.failure,
		Iterations:  s.iterations,
		ToolCalls:   s.toolCalls,
		Filled:      s.filledCount(),
		TotalClues:  len(s.grid.Puzzle().Clues),
		TimeElapsed: elapsed,
	}
}

// transitionTo validates and records a state change.
func (s *Session) transitionTo(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.state
	if !isValidTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, from, to)
	}
	s.transitions = append(s.transitions, StateTransition{
		FromState: from,
		ToState:   to,
		Timestamp: time.Now().UTC(),
	})
	s.state = to
	s.logger.Info("session %s: %s -> %s", s.id, from, to)
	return nil
}

// Transitions returns the state transition history.
func (s *Session) Transitions() []StateTransition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StateTransition{}, s.transitions...)
}

// Solve runs the session to a terminal state. It returns nil when the
// puzzle was solved; the failure reason is carried in the returned
// error and the solving_failed event otherwise. Cancellation is
// honored at iteration boundaries so the grid is never left mid-write.
func (s *Session) Solve(ctx context.Context) error {
	s.mu.Lock()
	s.startTime = time.Now()
	s.mu.Unlock()

	if err := s.transitionTo(StateIterating); err != nil {
		return err
	}

	p := s.grid.Puzzle()
	s.bus.Publish(events.TypeSolvingStarted, map[string]any{
		"puzzle":      p.Name,
		"width":       p.Width,
		"height":      p.Height,
		"total_clues": len(p.Clues),
	})

	s.contextMgr.SetSystemPrompt(buildSystemPrompt(s.provider.GenerateToolDocumentation()))
	s.contextMgr.AddUserMessage(buildPuzzleDescription(p))

	s.publishGrid()
	s.publishProgress()

	toolDefs := s.provider.Definitions()

	for iteration := 1; iteration <= config.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return s.fail(FailureCanceled, fmt.Sprintf("session canceled: %v", err))
		}

		if s.contextMgr.ShouldCompress(iteration - 1) {
			if err := s.compress(); err != nil {
				return err
			}
		}

		callCtx := context.WithValue(ctx, tools.IterationContextKey, iteration)
		req := oracle.CompletionRequest{
			Messages:    s.contextMgr.CompletionMessages(),
			Tools:       toolDefs,
			ToolChoice:  "auto",
			MaxTokens:   config.MaxOracleTokens,
			Temperature: oracle.TemperatureDefault,
		}

		callStart := time.Now()
		resp, err := s.client.Complete(callCtx, req)
		s.observeOracleCall(err, time.Since(callStart))
		if err != nil {
			s.bus.Publish(events.TypeError, map[string]any{"message": err.Error()})
			return s.fail(FailureOracleError, fmt.Sprintf("oracle call failed: %v", err))
		}

		s.mu.Lock()
		s.iterations = iteration
		s.mu.Unlock()
		if s.recorder != nil {
			s.recorder.IncIteration(p.Name)
		}

		if resp.Content != "" {
			s.contextMgr.AddAssistantMessage(resp.Content)
		}

		if len(resp.ToolCalls) > 0 {
			for i := range resp.ToolCalls {
				s.executeToolCall(callCtx, &resp.ToolCalls[i])
			}
		} else {
			// Free-text reply with no tool calls is a no-op iteration:
			// it consumes budget but changes nothing. Nudge the oracle
			// back toward the tools.
			s.logger.Debug("iteration %d: oracle replied without tool calls", iteration)
			if !s.isSolved() {
				s.contextMgr.AddUserMessage("No tools were called. The puzzle is not yet solved. Continue solving with the tools.")
			}
		}

		if s.isSolved() {
			return s.complete()
		}

		if iteration < config.MaxIterations {
			if err := s.pause(ctx); err != nil {
				return s.fail(FailureCanceled, fmt.Sprintf("session canceled: %v", err))
			}
		}
	}

	return s.fail(FailureMaxIterations,
		fmt.Sprintf("iteration cap (%d) reached with %d/%d clues filled",
			config.MaxIterations, s.filledCount(), len(p.Clues)))
}

// compress runs the COMPRESSING excursion: the transcript is replaced
// with a summary built from the grid and ledger.
func (s *Session) compress() error {
	if err := s.transitionTo(StateCompressing); err != nil {
		return err
	}
	before := s.contextMgr.CountTokens()
	s.contextMgr.Compress(buildStateSummary(s.grid, s.ledger))
	s.logger.Info("compressed transcript: %d -> %d tokens", before, s.contextMgr.CountTokens())
	return s.transitionTo(StateIterating)
}

// observeOracleCall records one completion request in the metrics.
func (s *Session) observeOracleCall(err error, duration time.Duration) {
	if s.recorder == nil {
		return
	}
	status := "success"
	errorType := ""
	if err != nil {
		status = "error"
		errorType = llmerrors.TypeOf(err).String()
	}
	s.recorder.ObserveOracleRequest(s.client.GetModelName(), status, errorType, duration)
}

// pause waits the inter-iteration delay, aborting on cancellation.
func (s *Session) pause(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// executeToolCall runs one tool and feeds the result back into the
// transcript and the event stream.
func (s *Session) executeToolCall(ctx context.Context, call *oracle.ToolCall) {
	s.mu.Lock()
	s.toolCalls++
	s.mu.Unlock()

	s.bus.Publish(events.TypeToolCalled, map[string]any{
		"name":      call.Name,
		"arguments": call.Parameters,
	})

	var result map[string]any
	tool, err := s.provider.Get(call.Name)
	if err != nil {
		result = map[string]any{
			"success": false,
			"message": fmt.Sprintf("Unknown tool: %s", call.Name),
		}
	} else {
		raw, execErr := tool.Exec(ctx, call.Parameters)
		switch {
		case execErr != nil:
			result = map[string]any{
				"success": false,
				"message": fmt.Sprintf("Tool execution error: %v", execErr),
			}
		default:
			var ok bool
			if result, ok = raw.(map[string]any); !ok {
				result = map[string]any{"success": true, "result": raw}
			}
		}
	}

	if s.recorder != nil {
		status := "error"
		if ok, _ := result["success"].(bool); ok {
			status = "success"
		}
		s.recorder.IncToolCall(call.Name, status)
	}

	resultJSON, marshalErr := json.Marshal(result)
	if marshalErr != nil {
		resultJSON = []byte(fmt.Sprintf(`{"success":false,"message":"unserializable result: %v"}`, marshalErr))
	}
	s.contextMgr.AddToolResult(call.Name, string(resultJSON))

	s.publishToolEffects(call, result)
}

// publishToolEffects emits the grid and progress events a tool's
// outcome warrants.
func (s *Session) publishToolEffects(call *oracle.ToolCall, result map[string]any) {
	switch call.Name {
	case tools.ToolSetAnswer, tools.ToolUndoLast:
		if ok, _ := result["success"].(bool); ok {
			s.publishGrid()
			s.publishProgress()
		}
	case tools.ToolValidateClue:
		if valid, _ := result["valid"].(bool); valid {
			s.publishClueSolved(call)
		}
		s.publishGrid()
		s.publishProgress()
	case tools.ToolValidateAll:
		s.publishGrid()
		s.publishProgress()
	}
}

// publishClueSolved emits a clue_solved event for a validated clue.
func (s *Session) publishClueSolved(call *oracle.ToolCall) {
	var number int
	switch v := call.Parameters["clue_number"].(type) {
	case int:
		number = v
	case float64:
		number = int(v)
	default:
		return
	}
	direction, _ := call.Parameters["direction"].(string)
	dir, err := puzzle.ParseDirection(direction)
	if err != nil {
		return
	}
	clue, err := s.grid.Puzzle().FindClue(number, dir)
	if err != nil {
		return
	}
	s.bus.Publish(events.TypeClueSolved, map[string]any{
		"clue_number": clue.Number,
		"direction":   string(clue.Direction),
		"answer":      s.grid.Pattern(clue),
		"text":        clue.Text,
	})
}

func (s *Session) publishGrid() {
	s.bus.Publish(events.TypeGridUpdated, map[string]any{
		"grid":  s.grid.Snapshot(),
		"clues": s.grid.CluesSnapshot(),
	})
}

func (s *Session) publishProgress() {
	p := s.grid.Puzzle()
	filled := s.filledCount()
	total := len(p.Clues)
	percentage := 0.0
	if total > 0 {
		percentage = float64(filled) / float64(total) * 100
	}
	s.bus.Publish(events.TypeProgressUpdated, map[string]any{
		"filled":     filled,
		"total":      total,
		"percentage": percentage,
	})
	if s.recorder != nil {
		s.recorder.SetCluesSolved(p.Name, s.grid.SolvedCount(), total)
	}
}

// filledCount counts fully answered clues. The grid carries its own
// lock so this is safe with or without s.mu held.
func (s *Session) filledCount() int {
	p := s.grid.Puzzle()
	filled := 0
	for i := range p.Clues {
		if s.grid.IsAnswered(&p.Clues[i]) {
			filled++
		}
	}
	return filled
}

// isSolved reports whether every clue matches its canonical answer.
func (s *Session) isSolved() bool {
	p := s.grid.Puzzle()
	for i := range p.Clues {
		if !s.grid.IsCorrect(&p.Clues[i]) {
			return false
		}
	}
	return len(p.Clues) > 0
}

// complete moves the session to COMPLETED and emits the final event.
func (s *Session) complete() error {
	if err := s.transitionTo(StateCompleted); err != nil {
		return err
	}

	s.mu.Lock()
	elapsed := time.Since(s.startTime)
	iterations := s.iterations
	toolCalls := s.toolCalls
	s.mu.Unlock()

	p := s.grid.Puzzle()
	s.bus.Publish(events.TypeSolvingCompleted, map[string]any{
		"puzzle":       p.Name,
		"grid":         s.grid.Snapshot(),
		"clues":        s.grid.CluesSnapshot(),
		"iterations":   iterations,
		"tool_calls":   toolCalls,
		"time_elapsed": elapsed.Seconds(),
	})
	if s.recorder != nil {
		s.recorder.ObserveSolveDuration(p.Name, "completed", elapsed)
	}
	s.logger.Info("puzzle %s solved in %d iterations (%d tool calls, %.2fs)",
		p.Name, iterations, toolCalls, elapsed.Seconds())
	return nil
}

// fail moves the session to FAILED, preserving the partial grid, and
// returns an error carrying the reason.
func (s *Session) fail(reason, message string) error {
	if err := s.transitionTo(StateFailed); err != nil {
		s.logger.Error("failed to enter FAILED state: %v", err)
	}

	s.mu.Lock()
	s.failure = reason
	elapsed := time.Since(s.startTime)
	iterations := s.iterations
	toolCalls := s.toolCalls
	s.mu.Unlock()

	p := s.grid.Puzzle()
	s.bus.Publish(events.TypeSolvingFailed, map[string]any{
		"puzzle":       p.Name,
		"reason":       reason,
		"message":      message,
		"grid":         s.grid.Snapshot(),
		"clues":        s.grid.CluesSnapshot(),
		"iterations":   iterations,
		"tool_calls":   toolCalls,
		"filled":       s.filledCount(),
		"total":        len(p.Clues),
		"time_elapsed": elapsed.Seconds(),
	})
	if s.recorder != nil {
		s.recorder.ObserveSolveDuration(p.Name, "failed", elapsed)
	}
	s.logger.Warn("session %s failed (%s): %s", s.id, reason, message)
	return fmt.Errorf("solving failed (%s): %s", reason, message)
}
