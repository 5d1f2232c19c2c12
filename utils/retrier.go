package utils

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

type Retrier[T any] struct {
	strategy  HandlingStrategy
	retryable func(error) bool
	logger    *slog.Logger
}

func NewRetrier[T any](strategy HandlingStrategy) *Retrier[T] {
	return &Retrier[T]{
		strategy:  strategy,
		retryable: func(error) bool { return true },
		logger:    slog.Default(),
	}
}

func NewDefaultRetrier[T any]() *Retrier[T] {
	return NewRetrier[T](NewExponentialBackoffStrategy(-1, 50*time.Millisecond, 0.1, 2*time.Second))
}

func NewExponentialRetrierFactory[T any](maximumRetries int, initialDelay time.Duration, jitterPercentage float64, maxDelay time.Duration) func() *Retrier[T] {
	return func() *Retrier[T] {
		return NewRetrier[T](NewExponentialBackoffStrategy(maximumRetries, initialDelay, jitterPercentage, maxDelay))
	}
}

func NewNopRetrierFactory[T any]() func() *Retrier[T] {
	return func() *Retrier[T] {
		return NewRetrier[T](&NopRetryStrategy{})
	}
}

// RetryOnly restricts retries to errors accepted by the predicate. Any other
// error is returned immediately.
func (r *Retrier[T]) RetryOnly(retryable func(error) bool) *Retrier[T] {
	r.retryable = retryable
	return r
}

func (r *Retrier[T]) WithLogger(logger *slog.Logger) *Retrier[T] {
	r.logger = logger
	return r
}

func (r *Retrier[T]) DoWithReturn(ctx context.Context, action func() (T, error)) (T, error) {
	var defaultT T
	if r.strategy.IsPreRequestDelayNeeded() {
		timeToWait := r.strategy.ComputePreRequestDelay()
		r.logger.Debug("recovering from errors", "wait", timeToWait)
		if err := sleep(ctx, timeToWait); err != nil {
			return defaultT, err
		}
	}
	for {
		result, err := action()
		if err == nil {
			r.strategy.HandleSuccess()
			return result, nil
		}
		if !r.retryable(err) {
			return defaultT, err
		}
		decision := r.strategy.HandleError(err)
		if decision.ReturnError {
			return defaultT, err
		}
		r.logger.Debug("retrying", "error", err, "wait", decision.TimeToWait)
		if err := sleep(ctx, decision.TimeToWait); err != nil {
			return defaultT, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Decision struct {
	TimeToWait  time.Duration
	ReturnError bool
}

type HandlingStrategy interface {
	HandleError(err error) Decision
	HandleSuccess()
	IsPreRequestDelayNeeded() bool
	ComputePreRequestDelay() time.Duration
}

//NOT THREAD SAFE

type ExponentialBackoffStrategy struct {
	maximumRetries   int
	initialDelay     time.Duration
	maxDelay         time.Duration
	jitterPercentage float64

	currentRetryNumber int
	nextDelay          time.Duration
	rndGenerator       *rand.Rand

	recoveredFromFailures bool
}

// NewExponentialBackoffStrategy retries up to maximumRetries times (-1 for no
// limit), doubling the delay from initialDelay up to maxDelay.
func NewExponentialBackoffStrategy(maximumRetries int, initialDelay time.Duration, jitterPercentage float64, maxDelay time.Duration) *ExponentialBackoffStrategy {
	return &ExponentialBackoffStrategy{
		maximumRetries:        maximumRetries,
		initialDelay:          initialDelay,
		maxDelay:              maxDelay,
		jitterPercentage:      jitterPercentage,
		currentRetryNumber:    0,
		nextDelay:             initialDelay,
		rndGenerator:          rand.New(rand.NewSource(time.Now().UnixNano())),
		recoveredFromFailures: true,
	}
}

func (ebs *ExponentialBackoffStrategy) HandleError(err error) Decision {
	ebs.recoveredFromFailures = false
	if ebs.maximumRetries != -1 && ebs.currentRetryNumber >= ebs.maximumRetries {
		return Decision{ReturnError: true}
	}
	ebs.currentRetryNumber++
	currentDelay := ebs.nextDelay
	nextBaseDelay := ebs.nextDelay * 2
	if nextBaseDelay > ebs.maxDelay {
		nextBaseDelay = ebs.maxDelay
	}
	ebs.nextDelay = ebs.modifyWithJitter(nextBaseDelay)
	return Decision{TimeToWait: currentDelay}
}

func (ebs *ExponentialBackoffStrategy) HandleSuccess() {
	ebs.nextDelay /= 2
	ebs.currentRetryNumber = 0
	if ebs.nextDelay <= ebs.initialDelay {
		ebs.nextDelay = ebs.initialDelay
		ebs.recoveredFromFailures = true
	}
}

func (ebs *ExponentialBackoffStrategy) modifyWithJitter(duration time.Duration) time.Duration {
	maxJitter := int64(float64(duration) * ebs.jitterPercentage)
	if maxJitter <= 0 {
		return duration
	}
	jitter := ebs.rndGenerator.Int63n(maxJitter) - maxJitter/2
	return duration + time.Duration(jitter)
}

func (ebs *ExponentialBackoffStrategy) ComputePreRequestDelay() time.Duration {
	return ebs.nextDelay
}

func (ebs *ExponentialBackoffStrategy) IsPreRequestDelayNeeded() bool {
	return !ebs.recoveredFromFailures
}

type NopRetryStrategy struct{}

func (nrs *NopRetryStrategy) HandleError(err error) Decision {
	return Decision{ReturnError: true}
}

func (nrs *NopRetryStrategy) HandleSuccess() {

}

func (nrs *NopRetryStrategy) IsPreRequestDelayNeeded() bool {
	return false
}

func (nrs *NopRetryStrategy) ComputePreRequestDelay() time.Duration {
	return time.Duration(0)
}
