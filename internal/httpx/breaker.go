package httpx

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

type BreakerState string

const (
	StateClosed   BreakerState = "closed"
	StateOpen     BreakerState = "open"
	StateHalfOpen BreakerState = "half-open"
)

// Breaker stops calling an upstream after a run of failures and probes it
// again once openFor has elapsed.
type Breaker struct {
	mu                   sync.Mutex
	state                BreakerState
	failures             int
	halfOpenInFlight     int
	consecutiveSuccesses int
	lastFailure          time.Time

	failureThreshold int
	successThreshold int
	halfOpenMax      int
	openFor          time.Duration

	now    func() time.Time
	logger *zap.Logger
}

// NewBreaker returns nil when failureThreshold is 0; a nil *Breaker allows every call.
func NewBreaker(failureThreshold int, openFor time.Duration, logger *zap.Logger) *Breaker {
	if failureThreshold <= 0 {
		return nil
	}
	if openFor < time.Second {
		openFor = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Breaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: 3,
		halfOpenMax:      3,
		openFor:          openFor,
		now:              time.Now,
		logger:           logger.Named("breaker"),
	}
}

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.lastFailure) <= b.openFor {
			return ErrCircuitOpen
		}
		b.setState(StateHalfOpen)
		b.halfOpenInFlight = 0
		b.consecutiveSuccesses = 0
		fallthrough
	case StateHalfOpen:
		if b.halfOpenInFlight >= b.halfOpenMax {
			return ErrTooManyRequests
		}
		b.halfOpenInFlight++
	}
	return nil
}

// Record feeds the outcome of an allowed call back into the breaker.
func (b *Breaker) Record(err error) {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen && b.halfOpenInFlight > 0 {
		b.halfOpenInFlight--
	}

	if err != nil {
		b.failures++
		b.consecutiveSuccesses = 0
		b.lastFailure = b.now()
		switch b.state {
		case StateClosed:
			if b.failures >= b.failureThreshold {
				b.setState(StateOpen)
			}
		case StateHalfOpen:
			b.setState(StateOpen)
		}
		return
	}

	b.consecutiveSuccesses++
	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		if b.consecutiveSuccesses >= b.successThreshold {
			b.setState(StateClosed)
			b.failures = 0
		}
	}
}

// Release frees a half-open slot taken by Allow without recording an outcome.
// Used when the caller gave up before the upstream answered.
func (b *Breaker) Release() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen && b.halfOpenInFlight > 0 {
		b.halfOpenInFlight--
	}
}

func (b *Breaker) State() BreakerState {
	if b == nil {
		return StateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) setState(next BreakerState) {
	if b.state == next {
		return
	}
	b.logger.Info("state transition",
		zap.String("from", string(b.state)),
		zap.String("to", string(next)),
		zap.Int("failures", b.failures))
	b.state = next
}
