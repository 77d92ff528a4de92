package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lilBchii/tide/internal/logging"
)

func TestRunner_DeliversCompletion(t *testing.T) {
	runner := NewRunner(4, logging.Discard())
	defer runner.Close()

	id := runner.Go(context.Background(), "compile", func(ctx context.Context) (interface{}, error) {
		return 42, nil
	})
	require.NotEmpty(t, id)

	select {
	case c := <-runner.Completions():
		assert.Equal(t, id, c.ID)
		assert.Equal(t, "compile", c.Name)
		assert.Equal(t, 42, c.Value)
		assert.NoError(t, c.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no completion delivered")
	}
}

func TestRunner_CompletionsArriveInFinishOrder(t *testing.T) {
	runner := NewRunner(4, logging.Discard())
	defer runner.Close()

	slowStarted := make(chan struct{})
	release := make(chan struct{})

	runner.Go(context.Background(), "slow", func(ctx context.Context) (interface{}, error) {
		close(slowStarted)
		<-release
		return "slow", nil
	})

	<-slowStarted
	runner.Go(context.Background(), "fast", func(ctx context.Context) (interface{}, error) {
		return "fast", nil
	})

	first := <-runner.Completions()
	assert.Equal(t, "fast", first.Name)

	close(release)
	second := <-runner.Completions()
	assert.Equal(t, "slow", second.Name)
}

func TestRunner_TaskErrorIsReported(t *testing.T) {
	runner := NewRunner(4, logging.Discard())
	defer runner.Close()

	runner.Go(context.Background(), "boom", func(ctx context.Context) (interface{}, error) {
		return nil, fmt.Errorf("task exploded")
	})

	c := <-runner.Completions()
	assert.ErrorContains(t, c.Err, "task exploded")
}

func TestRunner_Pending(t *testing.T) {
	runner := NewRunner(4, logging.Discard())

	release := make(chan struct{})
	runner.Go(context.Background(), "held", func(ctx context.Context) (interface{}, error) {
		<-release
		return nil, nil
	})

	assert.Equal(t, 1, runner.Pending())
	close(release)
	<-runner.Completions()
	assert.Equal(t, 0, runner.Pending())
	runner.Close()
}

func TestRunner_CloseRejectsNewWork(t *testing.T) {
	runner := NewRunner(4, logging.Discard())
	runner.Close()

	id := runner.Go(context.Background(), "late", func(ctx context.Context) (interface{}, error) {
		return nil, nil
	})
	assert.Empty(t, id)

	// The channel is closed after Close.
	_, open := <-runner.Completions()
	assert.False(t, open)
}
