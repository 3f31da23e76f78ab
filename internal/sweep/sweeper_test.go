package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type stubCloser struct {
	calls int
	err   error
}

func (s *stubCloser) CloseExpired(context.Context) (int, error) {
	s.calls++
	return 2, s.err
}

type stubLock struct {
	ok       bool
	err      error
	acquired int
	released int
}

func (l *stubLock) Acquire(context.Context) (bool, error) {
	l.acquired++
	return l.ok, l.err
}

func (l *stubLock) Release(context.Context) error {
	l.released++
	return nil
}

func TestSweepRunsWhenLeader(t *testing.T) {
	closer := &stubCloser{}
	lock := &stubLock{ok: true}
	s := NewSweeper(closer, lock, time.Minute, zap.NewNop())

	s.Sweep(context.Background())

	if closer.calls != 1 {
		t.Errorf("CloseExpired calls = %d, want 1", closer.calls)
	}
	if lock.released != 1 {
		t.Errorf("lock released %d times, want 1", lock.released)
	}
}

func TestSweepSkipsWhenNotLeader(t *testing.T) {
	closer := &stubCloser{}
	lock := &stubLock{ok: false}
	s := NewSweeper(closer, lock, time.Minute, zap.NewNop())

	s.Sweep(context.Background())

	if closer.calls != 0 {
		t.Errorf("CloseExpired calls = %d, want 0", closer.calls)
	}
	if lock.released != 0 {
		t.Errorf("lock released %d times, want 0", lock.released)
	}
}

func TestSweepReleasesLockOnFailure(t *testing.T) {
	closer := &stubCloser{err: errors.New("db down")}
	lock := &stubLock{ok: true}
	s := NewSweeper(closer, lock, time.Minute, zap.NewNop())

	s.Sweep(context.Background())

	if lock.released != 1 {
		t.Errorf("lock released %d times, want 1", lock.released)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	closer := &stubCloser{}
	lock := &stubLock{ok: true}
	s := NewSweeper(closer, lock, time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if closer.calls == 0 {
		t.Error("sweeper never swept")
	}
}
