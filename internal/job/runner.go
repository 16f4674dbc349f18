package job

import (
	"context"
	"errors"
	"log"
	"sync"
)

var ErrTaskRunning = errors.New("a task is already running")

// ProgressSink is told when a user's task starts and ends.
type ProgressSink interface {
	Begin(uid string)
	Logf(uid, format string, args ...any)
	Finish(uid string, err error)
}

// Runner runs at most one background task per user.
type Runner struct {
	ctx      context.Context
	progress ProgressSink

	mu      sync.Mutex
	running map[string]string
	wg      sync.WaitGroup
}

// NewRunner returns a runner whose tasks are cancelled with ctx.
func NewRunner(ctx context.Context, progress ProgressSink) *Runner {
	return &Runner{ctx: ctx, progress: progress, running: make(map[string]string)}
}

// Start launches fn for uid in the background. It returns ErrTaskRunning
// while a previous task for the same user is still going.
func (r *Runner) Start(uid, name string, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	if _, busy := r.running[uid]; busy {
		r.mu.Unlock()
		return ErrTaskRunning
	}
	r.running[uid] = name
	r.wg.Add(1)
	r.mu.Unlock()

	r.progress.Begin(uid)
	go func() {
		defer r.wg.Done()
		err := fn(r.ctx)
		if err != nil {
			log.Printf("[%s] %s failed: %v", uid, name, err)
			r.progress.Logf(uid, "%s error: %v", name, err)
		}
		r.progress.Finish(uid, err)

		r.mu.Lock()
		delete(r.running, uid)
		r.mu.Unlock()
	}()
	return nil
}

// Running returns the name of uid's current task.
func (r *Runner) Running(uid string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.running[uid]
	return name, ok
}

// Wait blocks until every started task has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}
