package utils

import (
	"errors"
	"sync"
)

type ParallelJobExecutor interface {
	Start()
	SubmitJob(job func() error)
	Stop() error
}

// ParallelJobExecutorImpl runs submitted jobs on a fixed number of goroutines
// and collects their errors until Stop.
type ParallelJobExecutorImpl struct {
	maxParallelUnits int
	jobExecutorsWg   sync.WaitGroup
	errorsWg         sync.WaitGroup
	jobQueue         chan func() error
	errorQueue       chan error
	collected        []error
}

func NewSimpleParallelJobExecutor(maxParallelUnits int) *ParallelJobExecutorImpl {
	if maxParallelUnits < 1 {
		maxParallelUnits = 1
	}
	return &ParallelJobExecutorImpl{
		maxParallelUnits: maxParallelUnits,
		jobQueue:         make(chan func() error, 1000),
		errorQueue:       make(chan error, 100),
	}
}

func (ex *ParallelJobExecutorImpl) Start() {
	ex.errorsWg.Add(1)
	go func() {
		for myErr := range ex.errorQueue {
			ex.collected = append(ex.collected, myErr)
		}
		ex.errorsWg.Done()
	}()

	for range ex.maxParallelUnits {
		ex.jobExecutorsWg.Add(1)
		go func() {
			for job := range ex.jobQueue {
				if err := job(); err != nil {
					ex.errorQueue <- err
				}
			}
			ex.jobExecutorsWg.Done()
		}()
	}
}

func (ex *ParallelJobExecutorImpl) SubmitJob(job func() error) {
	ex.jobQueue <- job
}

// Stop waits for every submitted job and returns their joined errors.
func (ex *ParallelJobExecutorImpl) Stop() error {
	close(ex.jobQueue)
	ex.jobExecutorsWg.Wait()
	close(ex.errorQueue)
	ex.errorsWg.Wait()
	return errors.Join(ex.collected...)
}
