package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIOTaskAndCPUTaskSetType(t *testing.T) {
	io := IOTask(PriorityHigh, func(ctx context.Context) (any, error) { return nil, nil })
	cpu := CPUTask(PriorityNormal, func(ctx context.Context) (any, error) { return nil, nil })

	assert.Equal(t, TypeIOBound, io.Type)
	assert.Equal(t, TypeCPUBound, cpu.Type)
	assert.NotEmpty(t, io.ID)
	assert.NotEqual(t, io.ID, cpu.ID)
	assert.Equal(t, "io", io.Type.String())
	assert.Equal(t, "cpu", cpu.Type.String())
}

func TestTaskResultSuccessAndFailed(t *testing.T) {
	ok := TaskResult{Status: StatusCompleted}
	bad := TaskResult{Status: StatusFailed}

	assert.True(t, ok.Success())
	assert.False(t, ok.Failed())
	assert.True(t, bad.Failed())
	assert.False(t, bad.Success())
}

func TestPriorityStringOrder(t *testing.T) {
	assert.Equal(t, "CRITICAL", PriorityCritical.String())
	assert.Equal(t, "HIGH", PriorityHigh.String())
	assert.Equal(t, "NORMAL", PriorityNormal.String())
	assert.Equal(t, "BACKGROUND", PriorityBackground.String())
}
