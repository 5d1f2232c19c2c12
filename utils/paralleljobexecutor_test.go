package utils

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelJobExecutor(t *testing.T) {
	var done atomic.Int32
	executor := NewSimpleParallelJobExecutor(4)
	executor.Start()

	for i := range 40 {
		executor.SubmitJob(func() error {
			done.Add(1)
			if i%10 == 0 {
				return errors.New("batch rejected")
			}
			return nil
		})
	}
	err := executor.Stop()

	assert.Equal(t, int32(40), done.Load())
	assert.ErrorContains(t, err, "batch rejected")
	assert.Len(t, err.(interface{ Unwrap() []error }).Unwrap(), 4)
}

func TestParallelJobExecutorNoErrors(t *testing.T) {
	executor := NewSimpleParallelJobExecutor(2)
	executor.Start()
	executor.SubmitJob(func() error { return nil })

	assert.NoError(t, executor.Stop())
}
