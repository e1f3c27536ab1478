package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingWorker struct {
	runs    atomic.Int32
	failFor int32
	mode    string // "panic", "error" or "finish"
}

func (w *countingWorker) Run(ctx context.Context) error {
	n := w.runs.Add(1)
	if n <= w.failFor {
		switch w.mode {
		case "panic":
			panic("worker blew up")
		case "error":
			return fmt.Errorf("run %d failed", n)
		}
	}
	<-ctx.Done()
	return nil
}

func waitFor(req *require.Assertions, cond func() bool) {
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			req.FailNow("condition never became true")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSupervisor_RestartsPanickingWorker(t *testing.T) {
	req := require.New(t)
	worker := &countingWorker{failFor: 2, mode: "panic"}

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)
	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// Two panics then a clean run that blocks until Stop.
	waitFor(req, func() bool { return worker.runs.Load() == 3 })

	sup.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.FailNow("supervisor did not shut down")
	}
	req.Equal(int32(3), worker.runs.Load())
}

func TestSupervisor_RestartsErroringWorker(t *testing.T) {
	req := require.New(t)
	worker := &countingWorker{failFor: 1, mode: "error"}

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)
	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	waitFor(req, func() bool { return worker.runs.Load() == 2 })
	sup.Stop()
	<-done
}

func TestSupervisor_CleanFinishIsNotRestarted(t *testing.T) {
	req := require.New(t)

	var runs atomic.Int32
	worker := workerFunc(func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)
	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.FailNow("supervisor did not return after worker finished")
	}
	req.Equal(int32(1), runs.Load())
}

func TestSupervisor_OneCrashingWorkerDoesNotStopAnother(t *testing.T) {
	req := require.New(t)
	crasher := &countingWorker{failFor: 1 << 30, mode: "panic"}
	steady := &countingWorker{}

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(crasher, steady)
	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	waitFor(req, func() bool { return crasher.runs.Load() >= 3 })
	req.Equal(int32(1), steady.runs.Load())

	sup.Stop()
	<-done
}

func TestSupervisor_ParentCancellationStopsWorkers(t *testing.T) {
	req := require.New(t)
	worker := &countingWorker{}

	ctx, cancel := context.WithCancel(context.Background())
	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)
	done := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(done)
	}()

	waitFor(req, func() bool { return worker.runs.Load() == 1 })
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.FailNow("supervisor ignored parent cancellation")
	}
}

func TestSupervisor_StopUnblocksRunBeforeSharedTeardown(t *testing.T) {
	req := require.New(t)
	worker := &countingWorker{}

	sup := NewSupervisor(slog.Default(), time.Millisecond)
	sup.Add(worker)
	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	waitFor(req, func() bool { return worker.runs.Load() == 1 })

	// Callers close shared resources (stores, index writers) right after
	// this returns, so Run must have fully drained by then.
	sup.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.FailNow("Run did not return after Stop")
	}
}

type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }
