package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolSubmitReturnsCompletedResult(t *testing.T) {
	p := newPool("io", 2, nil, nil)
	task := IOTask(PriorityNormal, func(ctx context.Context) (any, error) { return 42, nil })

	fut, err := p.Submit(context.Background(), task)
	require.NoError(t, err)

	r, err := fut.Result(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Success())
	assert.Equal(t, 42, r.Result)
}

func TestPoolSubmitCapturesBodyError(t *testing.T) {
	p := newPool("io", 1, nil, nil)
	task := IOTask(PriorityNormal, func(ctx context.Context) (any, error) { return nil, errors.New("boom") })

	fut, err := p.Submit(context.Background(), task)
	require.NoError(t, err)
	r, err := fut.Result(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Failed())
	assert.ErrorContains(t, r.Err, "boom")
}

func TestPoolSubmitRecoversPanic(t *testing.T) {
	p := newPool("io", 1, nil, nil)
	task := IOTask(PriorityNormal, func(ctx context.Context) (any, error) { panic("boom") })

	fut, err := p.Submit(context.Background(), task)
	require.NoError(t, err)
	r, err := fut.Result(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Failed())
	assert.ErrorContains(t, r.Err, "panicked")
}

func TestPoolTaskTimeoutProducesFailedResult(t *testing.T) {
	p := newPool("io", 1, nil, nil)
	task := IOTask(PriorityNormal, func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	task.Timeout = 10 * time.Millisecond

	fut, err := p.Submit(context.Background(), task)
	require.NoError(t, err)
	r, err := fut.Result(context.Background())
	require.NoError(t, err)
	assert.True(t, r.Failed())
}

func TestPoolRateLimiterOnlyGatesLLMCalls(t *testing.T) {
	rl := NewRateLimiter(1, 1000)
	p := newPool("io", 4, rl, nil)

	nonLLM := IOTask(PriorityNormal, func(ctx context.Context) (any, error) { return "file", nil })
	llm := IOTask(PriorityNormal, func(ctx context.Context) (any, error) { return "llm", nil })
	llm.IsLLMCall = true

	futNonLLM, err := p.Submit(context.Background(), nonLLM)
	require.NoError(t, err)
	futLLM, err := p.Submit(context.Background(), llm)
	require.NoError(t, err)

	rNonLLM, _ := futNonLLM.Result(context.Background())
	rLLM, _ := futLLM.Result(context.Background())
	assert.True(t, rNonLLM.Success())
	assert.True(t, rLLM.Success())
}

func TestPoolShutdownRejectsNewSubmissions(t *testing.T) {
	p := newPool("io", 1, nil, nil)
	p.Shutdown(true)

	_, err := p.Submit(context.Background(), IOTask(PriorityNormal, func(ctx context.Context) (any, error) { return nil, nil }))
	assert.ErrorIs(t, err, ErrPoolShutDown)
}

func TestPoolMapPreservesInputOrder(t *testing.T) {
	p := newPool("cpu", 4, nil, nil)
	items := []any{1, 2, 3, 4, 5}
	results, err := p.Map(context.Background(), items, func(ctx context.Context, item any) (any, error) {
		n := item.(int)
		return n * n, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{1, 4, 9, 16, 25}, results)
}

func TestPoolMapAbortsOnFirstError(t *testing.T) {
	p := newPool("cpu", 4, nil, nil)
	items := []any{1, 2, 3}
	_, err := p.Map(context.Background(), items, func(ctx context.Context, item any) (any, error) {
		if item.(int) == 2 {
			return nil, errors.New("bad item")
		}
		return item, nil
	})
	assert.Error(t, err)
}
