package solver

import (
	"context"
	"errors"
	"sync"

	"solver/pkg/eventlog"
	"solver/pkg/events"
	"solver/pkg/logx"
	"solver/pkg/metrics"
	"solver/pkg/oracle"
	"solver/pkg/puzzle"
)

// ErrSessionActive is returned when a session is requested while one is
// still running. Only one puzzle is solved at a time.
var ErrSessionActive = errors.New("a solving session is already active")

// ClientFunc constructs an oracle client for a model name.
type ClientFunc func(model string) (oracle.Client, error)

// Manager owns the lifecycle of solving sessions: one at a time, each
// with its own event bus, with events mirrored to the event log.
type Manager struct {
	newClient ClientFunc
	recorder  metrics.Recorder
	logWriter *eventlog.Writer
	logger    *logx.Logger

	mu      sync.Mutex
	session *Session
	bus     *events.Bus
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewManager creates a session manager. logWriter and recorder may be
// nil to disable event persistence and metrics.
func NewManager(newClient ClientFunc, logWriter *eventlog.Writer, recorder metrics.Recorder) *Manager {
	return &Manager{
		newClient: newClient,
		recorder:  recorder,
		logWriter: logWriter,
		logger:    logx.NewLogger("manager"),
	}
}

// StartSession loads a puzzle and launches a session in the background.
// It fails with ErrSessionActive while a previous session is still
// running; a finished session is replaced.
func (m *Manager) StartSession(ctx context.Context, puzzlePath, model string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && !m.session.State().IsTerminal() {
		return nil, ErrSessionActive
	}

	p, err := puzzle.Load(puzzlePath)
	if err != nil {
		return nil, err
	}

	client, err := m.newClient(model)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus()
	session := NewSession(p, client, bus, m.recorder)

	if m.logWriter != nil {
		ch, _ := bus.Subscribe(false)
		go m.persistEvents(ch)
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		defer bus.Close()
		if solveErr := session.Solve(runCtx); solveErr != nil {
			m.logger.Warn("session %s ended: %v", session.ID(), solveErr)
		}
	}()

	m.session = session
	m.bus = bus
	m.cancel = cancel
	m.done = done
	m.logger.Info("started session %s: puzzle=%s model=%s", session.ID(), p.Name, model)
	return session, nil
}

// persistEvents mirrors a session's event stream into the event log.
func (m *Manager) persistEvents(ch <-chan events.Event) {
	for event := range ch {
		if err := m.logWriter.WriteEvent(&event); err != nil {
			m.logger.Warn("failed to persist event %d: %v", event.Sequence, err)
		}
	}
}

// ActiveSession returns the current session, which may be terminal, or
// nil if none was ever started.
func (m *Manager) ActiveSession() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Bus returns the current session's event bus, or nil.
func (m *Manager) Bus() *events.Bus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bus
}

// Wait blocks until the current session finishes. Returns immediately
// when no session is running.
func (m *Manager) Wait() {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Stop cancels the running session, if any, and waits for it to reach a
// terminal state.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}
