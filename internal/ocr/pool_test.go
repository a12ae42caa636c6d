package ocr

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagemill/extractor/internal/domain"
	"github.com/pagemill/extractor/internal/observability"
)

type stubEngine struct {
	recognize func(ctx context.Context, img domain.PageImage, languages []string) (string, error)
	calls     atomic.Int64
}

func (s *stubEngine) Name() string { return "stub" }

func (s *stubEngine) Recognize(ctx context.Context, img domain.PageImage, languages []string) (string, error) {
	s.calls.Add(1)
	return s.recognize(ctx, img, languages)
}

func makeTasks(pages ...int) []domain.RecognitionTask {
	tasks := make([]domain.RecognitionTask, 0, len(pages))
	for _, p := range pages {
		tasks = append(tasks, domain.RecognitionTask{
			PageNumber: p,
			Image:      domain.PageImage{PageNumber: p},
			Languages:  []string{"eng"},
		})
	}
	return tasks
}

func TestPool_OneResultPerTask(t *testing.T) {
	engine := &stubEngine{
		recognize: func(ctx context.Context, img domain.PageImage, _ []string) (string, error) {
			return fmt.Sprintf("text-%d", img.PageNumber), nil
		},
	}
	pool := NewPool(engine, 4, 0, observability.Nop())
	defer pool.Close()

	results := pool.Recognize(context.Background(), makeTasks(1, 2, 3, 4, 5))
	require.Len(t, results, 5)
	for _, p := range []int{1, 2, 3, 4, 5} {
		res, ok := results[p]
		require.True(t, ok, "missing result for page %d", p)
		assert.Equal(t, p, res.PageNumber)
		assert.True(t, res.OK())
		assert.Equal(t, fmt.Sprintf("text-%d", p), res.Text)
	}
	assert.EqualValues(t, 5, engine.calls.Load())
}

func TestPool_OutOfOrderCompletion(t *testing.T) {
	// Earlier pages take longer, so completion order is reversed relative
	// to submission. The result map must still attribute text correctly.
	engine := &stubEngine{
		recognize: func(ctx context.Context, img domain.PageImage, _ []string) (string, error) {
			time.Sleep(time.Duration(4-img.PageNumber) * 10 * time.Millisecond)
			return fmt.Sprintf("page-%d", img.PageNumber), nil
		},
	}
	pool := NewPool(engine, 3, 0, observability.Nop())
	defer pool.Close()

	results := pool.Recognize(context.Background(), makeTasks(1, 2, 3))
	require.Len(t, results, 3)
	for _, p := range []int{1, 2, 3} {
		assert.Equal(t, fmt.Sprintf("page-%d", p), results[p].Text)
	}
}

func TestPool_FaultIsolation(t *testing.T) {
	engine := &stubEngine{
		recognize: func(ctx context.Context, img domain.PageImage, _ []string) (string, error) {
			if img.PageNumber == 2 {
				return "", errors.New("unsupported language")
			}
			return "ok", nil
		},
	}
	pool := NewPool(engine, 2, 0, observability.Nop())
	defer pool.Close()

	results := pool.Recognize(context.Background(), makeTasks(1, 2, 3))
	require.Len(t, results, 3)

	assert.True(t, results[1].OK())
	assert.True(t, results[3].OK())
	assert.False(t, results[2].OK())
	assert.Contains(t, results[2].Err, "unsupported language")
}

func TestPool_PanicRecovered(t *testing.T) {
	engine := &stubEngine{
		recognize: func(ctx context.Context, img domain.PageImage, _ []string) (string, error) {
			if img.PageNumber == 1 {
				panic("segfault in native code")
			}
			return "ok", nil
		},
	}
	pool := NewPool(engine, 2, 0, observability.Nop())
	defer pool.Close()

	results := pool.Recognize(context.Background(), makeTasks(1, 2))
	require.Len(t, results, 2)
	assert.False(t, results[1].OK())
	assert.Contains(t, results[1].Err, "engine panic")
	assert.True(t, results[2].OK())
}

func TestPool_TimeoutReturnsPartialResults(t *testing.T) {
	release := make(chan struct{})
	engine := &stubEngine{
		recognize: func(ctx context.Context, img domain.PageImage, _ []string) (string, error) {
			if img.PageNumber == 2 {
				<-release
				return "late", nil
			}
			return "fast", nil
		},
	}
	pool := NewPool(engine, 2, 100*time.Millisecond, observability.Nop())
	defer func() {
		close(release)
		pool.Close()
	}()

	results := pool.Recognize(context.Background(), makeTasks(1, 2))
	require.Len(t, results, 2, "timed-out pages must still have entries")
	assert.True(t, results[1].OK())
	assert.Equal(t, "fast", results[1].Text)
	assert.False(t, results[2].OK())
	assert.Equal(t, "timeout", results[2].Err)
}

func TestPool_CloseAfterTimeout(t *testing.T) {
	// A single worker keeps the later tasks queued in the submitter when
	// the batch times out. Close right after the timed-out call must wait
	// for that submitter to drain, not race it on the task channel.
	engine := &stubEngine{
		recognize: func(ctx context.Context, img domain.PageImage, _ []string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	pool := NewPool(engine, 1, 50*time.Millisecond, observability.Nop())

	results := pool.Recognize(context.Background(), makeTasks(1, 2, 3))
	require.Len(t, results, 3)

	done := make(chan struct{})
	go func() {
		pool.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after a timed-out batch")
	}
}

func TestPool_EmptyTaskList(t *testing.T) {
	engine := &stubEngine{
		recognize: func(ctx context.Context, img domain.PageImage, _ []string) (string, error) {
			return "", nil
		},
	}
	pool := NewPool(engine, 2, 0, observability.Nop())
	defer pool.Close()

	results := pool.Recognize(context.Background(), nil)
	assert.Empty(t, results)
	assert.EqualValues(t, 0, engine.calls.Load())
}

func TestPool_CloseIdempotent(t *testing.T) {
	engine := &stubEngine{
		recognize: func(ctx context.Context, img domain.PageImage, _ []string) (string, error) {
			return "ok", nil
		},
	}
	pool := NewPool(engine, 1, 0, observability.Nop())
	pool.Close()
	assert.NotPanics(t, func() { pool.Close() })
}
