package expr

import (
	"errors"
	"fmt"
	"time"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 2 * time.Second

// ErrTimeout is returned when an evaluation exceeds its time limit.
var ErrTimeout = errors.New("expr: evaluation timed out")

// evalResult carries an evaluation outcome across goroutines.
type evalResult struct {
	value float64
	err   error
}

// recoverInto converts a panic in the evaluating goroutine into an error
// result. It must be deferred.
func recoverInto(ch chan<- evalResult) {
	if r := recover(); r != nil {
		ch <- evalResult{err: fmt.Errorf("expr: panic during evaluation: %v", r)}
	}
}

// waitWithTimeout waits for a result from ch for at most timeout. On
// timeout the evaluating goroutine may still be running; ch must be
// buffered so that it can finish without blocking.
func waitWithTimeout(ch <-chan evalResult, timeout time.Duration) (float64, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.value, res.err
	case <-timer.C:
		return 0, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}
