package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunNow(t *testing.T) {
	var calls atomic.Int32
	s := NewScheduler(context.Background(), func(context.Context) error {
		calls.Add(1)
		return nil
	})
	assert.True(t, s.RunNow())
	assert.True(t, s.RunNow())
	assert.Equal(t, int32(2), calls.Load())
}

func TestRunNow_TaskErrorIsLogged(t *testing.T) {
	s := NewScheduler(context.Background(), func(context.Context) error { return errors.New("boom") })
	assert.True(t, s.RunNow())
}

func TestRunNow_SkipsOverlap(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	s := NewScheduler(context.Background(), func(context.Context) error {
		calls.Add(1)
		close(entered)
		<-release
		return nil
	})

	done := make(chan bool)
	go func() { done <- s.RunNow() }()
	<-entered

	assert.False(t, s.RunNow(), "second trigger overlaps the first")
	close(release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunNow_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewScheduler(ctx, func(context.Context) error {
		t.Fatal("task must not run")
		return nil
	})
	assert.False(t, s.RunNow())
}

func TestRegister(t *testing.T) {
	s := NewScheduler(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, s.Register("0 0 6 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 1)

	assert.Error(t, s.Register("not a cron"))
	assert.Error(t, s.Register("0 6 * * 1-5"), "five-field specs lack seconds")

	s.Start()
	s.Stop()
}
