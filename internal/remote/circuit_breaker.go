package remote

import (
	"log"
	"sync"
	"time"
)

// CircuitBreaker stops calls to the remote property service once it is
// clearly down, instead of letting every page view wait out a timeout.
type CircuitBreaker struct {
	failureThreshold int
	resetTimeout     time.Duration

	consecutiveFailures int
	isOpen              bool
	lastFailureTime     time.Time

	mu sync.Mutex
}

// NewCircuitBreaker creates a breaker that opens after failureThreshold
// consecutive failures and probes again after resetTimeout.
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
	}
}

// RecordSuccess records a successful upstream call and closes the breaker.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures = 0
	if cb.isOpen {
		log.Println("circuit breaker: upstream recovered, closing")
		cb.isOpen = false
	}
}

// RecordFailure records a failed upstream call (network error or 5xx).
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFailures++
	cb.lastFailureTime = time.Now()

	if !cb.isOpen && cb.consecutiveFailures >= cb.failureThreshold {
		cb.isOpen = true
		log.Printf("circuit breaker: open after %d consecutive upstream failures, retrying in %v",
			cb.consecutiveFailures, cb.resetTimeout)
	}
}

// CanProceed reports whether a call may be attempted. After the reset
// timeout one probe call is let through (half-open).
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.isOpen {
		return true
	}

	if time.Since(cb.lastFailureTime) > cb.resetTimeout {
		log.Printf("circuit breaker: half-open probe after %v", cb.resetTimeout)
		cb.isOpen = false
		cb.consecutiveFailures = 0
		return true
	}

	return false
}

// Status returns whether the breaker is open and the failure streak.
func (cb *CircuitBreaker) Status() (isOpen bool, consecutiveFailures int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.isOpen, cb.consecutiveFailures
}
