package solver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solver/pkg/oracle"
)

const miniPuzzleJSON = `{
  "name": "mini",
  "width": 3,
  "height": 3,
  "clues": [
    {"number": 1, "direction": "across", "text": "Feline pet", "row": 0, "col": 0, "length": 3, "answer": "CAT"},
    {"number": 1, "direction": "down", "text": "Farm animal that moos", "row": 0, "col": 0, "length": 3, "answer": "COW"},
    {"number": 2, "direction": "down", "text": "Spinning toy", "row": 0, "col": 2, "length": 3, "answer": "TOP"}
  ]
}`

func writeMiniPuzzle(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mini.json")
	require.NoError(t, os.WriteFile(path, []byte(miniPuzzleJSON), 0o644))
	return path
}

func solvingClientFunc(t *testing.T) ClientFunc {
	t.Helper()
	return func(model string) (oracle.Client, error) {
		return oracle.NewMockClient([]oracle.CompletionResponse{
			{
				StopReason: "tool_use",
				ToolCalls: []oracle.ToolCall{
					setAnswerCall(1, "across", "CAT"),
					setAnswerCall(1, "down", "COW"),
					setAnswerCall(2, "down", "TOP"),
				},
			},
		}, nil), nil
	}
}

// blockingClient parks in Complete until released, so tests can observe
// an in-flight session.
type blockingClient struct {
	release chan struct{}
}

func (c *blockingClient) Complete(ctx context.Context, _ oracle.CompletionRequest) (oracle.CompletionResponse, error) {
	select {
	case <-ctx.Done():
		return oracle.CompletionResponse{}, ctx.Err()
	case <-c.release:
		return oracle.CompletionResponse{Content: "done", StopReason: "end_turn"}, nil
	}
}

func (c *blockingClient) Stream(ctx context.Context, req oracle.CompletionRequest) (<-chan oracle.StreamChunk, error) {
	return nil, context.Canceled
}

func (c *blockingClient) GetModelName() string { return "blocking" }

func TestManagerRunsSessionToCompletion(t *testing.T) {
	mgr := NewManager(solvingClientFunc(t), nil, nil)

	session, err := mgr.StartSession(context.Background(), writeMiniPuzzle(t), "claude-sonnet-4-5")
	require.NoError(t, err)
	require.NotNil(t, mgr.Bus())

	mgr.Wait()
	assert.Equal(t, StateCompleted, session.State())
	assert.Same(t, session, mgr.ActiveSession())
}

func TestManagerRejectsBadPuzzlePath(t *testing.T) {
	mgr := NewManager(solvingClientFunc(t), nil, nil)
	_, err := mgr.StartSession(context.Background(), filepath.Join(t.TempDir(), "absent.json"), "claude-sonnet-4-5")
	assert.Error(t, err)
	assert.Nil(t, mgr.ActiveSession())
}

func TestManagerPropagatesClientError(t *testing.T) {
	mgr := NewManager(func(string) (oracle.Client, error) {
		return nil, assert.AnError
	}, nil, nil)

	_, err := mgr.StartSession(context.Background(), writeMiniPuzzle(t), "claude-sonnet-4-5")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestManagerSingleActiveSession(t *testing.T) {
	client := &blockingClient{release: make(chan struct{})}
	mgr := NewManager(func(string) (oracle.Client, error) { return client, nil }, nil, nil)

	path := writeMiniPuzzle(t)
	_, err := mgr.StartSession(context.Background(), path, "claude-sonnet-4-5")
	require.NoError(t, err)

	_, err = mgr.StartSession(context.Background(), path, "claude-sonnet-4-5")
	assert.ErrorIs(t, err, ErrSessionActive)

	mgr.Stop()

	// A terminal session is replaced.
	_, err = mgr.StartSession(context.Background(), path, "claude-sonnet-4-5")
	require.NoError(t, err)
	mgr.Stop()
}

func TestManagerStopTerminatesSession(t *testing.T) {
	client := &blockingClient{release: make(chan struct{})}
	mgr := NewManager(func(string) (oracle.Client, error) { return client, nil }, nil, nil)

	session, err := mgr.StartSession(context.Background(), writeMiniPuzzle(t), "claude-sonnet-4-5")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		mgr.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.True(t, session.State().IsTerminal())
}

func TestManagerWaitWithoutSession(t *testing.T) {
	mgr := NewManager(solvingClientFunc(t), nil, nil)
	mgr.Wait() // must not block
	assert.Nil(t, mgr.Bus())
}
