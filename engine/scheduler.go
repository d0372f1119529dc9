package engine

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/glog"
)

// Scheduler runs periodic tasks that can be stopped individually.
type Scheduler struct {
	clock clock.Clock
	wg    sync.WaitGroup
}

func NewScheduler(clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{clock: clk}
}

// Task is a handle of a running periodic task.
type Task struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Every calls fn every period until ctx is done or the task is stopped.
// Ticks of one task never overlap: a tick that comes due while fn is still
// running is dropped by the ticker.
func (s *Scheduler) Every(ctx context.Context, name string, period time.Duration, fn func(ctx context.Context)) *Task {
	ctx2, cancel := context.WithCancel(ctx)
	t := &Task{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	ticker := s.clock.Ticker(period)

	s.wg.Add(1)
	go func() {
		glog.V(5).Infof("scheduler: task `%s` started, period: %s", name, period)
		defer func() {
			ticker.Stop()
			close(t.done)
			s.wg.Done()
			glog.V(5).Infof("scheduler: task `%s` exited", name)
		}()

		for {
			select {
			case <-ctx2.Done():
				return
			case <-ticker.C:
				if ctx2.Err() != nil {
					return
				}
				fn(ctx2)
			}
		}
	}()
	return t
}

// Stop cancels the task. It does not wait, so it is safe to call from the
// task's own callback; use Done to wait.
func (t *Task) Stop() {
	if t != nil {
		t.cancel()
	}
}

func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until every task started by s has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
