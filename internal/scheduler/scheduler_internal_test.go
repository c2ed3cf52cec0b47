package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"newsposter/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockingCycler struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingCycler() *blockingCycler {
	return &blockingCycler{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (c *blockingCycler) Run(ctx context.Context) domain.CycleResult {
	c.runs.Add(1)
	c.once.Do(func() { close(c.started) })

	select {
	case <-c.release:
	case <-ctx.Done():
		return domain.CycleResult{Interrupted: true}
	}

	return domain.CycleResult{Posted: 1}
}

type panickingCycler struct{}

func (panickingCycler) Run(context.Context) domain.CycleResult {
	panic("boom")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStartRunsCycleImmediately(t *testing.T) {
	cycler := newBlockingCycler()
	s := New(context.Background(), cycler, time.Hour, discardLogger())

	require.NoError(t, s.Start())

	select {
	case <-cycler.started:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle did not start")
	}

	close(cycler.release)
	s.Stop()

	assert.Equal(t, int32(1), cycler.runs.Load())
}

func TestOverlappingCycleIsSkipped(t *testing.T) {
	cycler := newBlockingCycler()
	s := New(context.Background(), cycler, time.Hour, discardLogger())

	require.NoError(t, s.Start())
	<-cycler.started

	require.NoError(t, s.RunNow())
	require.NoError(t, s.RunNow())

	close(cycler.release)
	s.Stop()

	assert.Equal(t, int32(1), cycler.runs.Load())
}

func TestStopCancelsThroughContext(t *testing.T) {
	cycler := newBlockingCycler()
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, cycler, time.Hour, discardLogger())

	require.NoError(t, s.Start())
	<-cycler.started

	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestCancelledContextSkipsCycle(t *testing.T) {
	cycler := newBlockingCycler()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(ctx, cycler, time.Hour, discardLogger())
	require.NoError(t, s.Start())
	s.Stop()

	assert.Zero(t, cycler.runs.Load())
}

func TestPanicIsReportedAsFatal(t *testing.T) {
	s := New(context.Background(), panickingCycler{}, time.Hour, discardLogger())

	require.NoError(t, s.Start())

	select {
	case err := <-s.Fatal():
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	case <-time.After(5 * time.Second):
		t.Fatal("panic was not reported")
	}

	s.Stop()
}

func TestStartRejectsShortInterval(t *testing.T) {
	s := New(context.Background(), newBlockingCycler(), 10*time.Millisecond, discardLogger())

	require.Error(t, s.Start())
}

func TestRunNowBeforeStart(t *testing.T) {
	s := New(context.Background(), newBlockingCycler(), time.Hour, discardLogger())

	require.ErrorIs(t, s.RunNow(), ErrNotStarted)
}
