package ocr

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pagemill/extractor/internal/domain"
)

// Pool is an explicitly constructed, caller-owned recognition worker pool.
// Construct it once at service startup and Close it at shutdown. Workers are
// long-lived goroutines pulling from a shared task queue; each Recognize call
// collects its own results, so the pool can serve concurrent callers.
type Pool struct {
	engine  Engine
	timeout time.Duration
	logger  zerolog.Logger

	tasks chan poolJob
	wg    sync.WaitGroup
	// subs counts in-flight submitter goroutines. Close waits for them
	// before closing the task channel; a submitter parked on a send must
	// never race the close.
	subs      sync.WaitGroup
	closeOnce sync.Once
}

type poolJob struct {
	ctx  context.Context
	task domain.RecognitionTask
	out  chan<- domain.RecognitionResult
}

// NewPool starts a pool of the given width. A width of zero or less defaults
// to twice the logical core count; effective parallelism per call is further
// bounded by the number of submitted tasks. timeout bounds a whole Recognize
// call (zero disables it).
func NewPool(engine Engine, workers int, timeout time.Duration, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = 2 * runtime.NumCPU()
	}

	p := &Pool{
		engine:  engine,
		timeout: timeout,
		logger:  logger.With().Str("component", "recognition_pool").Str("engine", engine.Name()).Logger(),
		tasks:   make(chan poolJob),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	p.logger.Debug().Int("workers", workers).Msg("recognition pool started")
	return p
}

// Recognize runs one task per flagged page and returns exactly one result
// per submitted task, keyed by page number. Results complete in arbitrary
// order; callers must not rely on map iteration order.
//
// Failure isolation: an engine error or panic on one page is converted to
// that page's error outcome and never cancels sibling tasks. If the pool
// timeout expires, pages still pending are reported with a timeout outcome
// rather than dropped.
func (p *Pool) Recognize(ctx context.Context, tasks []domain.RecognitionTask) map[int]domain.RecognitionResult {
	results := make(map[int]domain.RecognitionResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	// The cancel releases the submitter goroutine when this call returns,
	// whether or not a timeout is configured.
	var cancel context.CancelFunc
	if p.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// Buffered to the task count so workers never block on delivery, even
	// when the collector has already given up on a timed-out call.
	out := make(chan domain.RecognitionResult, len(tasks))

	p.subs.Add(1)
	go func() {
		defer p.subs.Done()
		for _, t := range tasks {
			select {
			case p.tasks <- poolJob{ctx: ctx, task: t, out: out}:
			case <-ctx.Done():
				return
			}
		}
	}()

	for received := 0; received < len(tasks); {
		select {
		case res := <-out:
			results[res.PageNumber] = res
			received++
		case <-ctx.Done():
			for _, t := range tasks {
				if _, ok := results[t.PageNumber]; !ok {
					results[t.PageNumber] = domain.RecognitionResult{
						PageNumber: t.PageNumber,
						Err:        "timeout",
					}
				}
			}
			p.logger.Warn().
				Int("submitted", len(tasks)).
				Int("completed", received).
				Msg("recognition batch timed out, returning partial results")
			return results
		}
	}

	return results
}

// Close stops accepting work and waits for in-flight tasks to finish. The
// pool must not be used after Close. A task hung inside the engine's native
// code cannot be preempted and will hold Close until it returns; callers
// needing bounded shutdown should set a pool timeout so stuck pages are
// abandoned by their Recognize call first.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		// Returned Recognize calls have cancelled their contexts, so any
		// remaining submitters unblock and exit before the channel closes.
		p.subs.Wait()
		close(p.tasks)
	})
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.tasks {
		start := time.Now()
		res := p.runTask(job.ctx, job.task)
		if res.OK() {
			p.logger.Debug().
				Int("page", job.task.PageNumber).
				Dur("duration", time.Since(start)).
				Msg("page recognized")
		} else {
			p.logger.Warn().
				Int("page", job.task.PageNumber).
				Str("error", res.Err).
				Msg("page recognition failed")
		}
		job.out <- res
	}
}

// runTask invokes the engine for one page, converting errors and panics into
// the page's typed outcome. Recognition engines are known to occasionally
// fault on pathological input; the fault must stay confined to its page.
func (p *Pool) runTask(ctx context.Context, task domain.RecognitionTask) (res domain.RecognitionResult) {
	res = domain.RecognitionResult{PageNumber: task.PageNumber}

	defer func() {
		if r := recover(); r != nil {
			res = domain.RecognitionResult{
				PageNumber: task.PageNumber,
				Err:        fmt.Sprintf("engine panic: %v", r),
			}
		}
	}()

	text, err := p.engine.Recognize(ctx, task.Image, task.Languages)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	res.Text = text
	return res
}
