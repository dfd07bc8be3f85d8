package breaker

import (
	"errors"
	"time"

	cb "github.com/sony/gobreaker"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = errors.New("circuit breaker open")

// Option configures a Breaker.
type Option func(*cb.Settings)

// WithTimeout sets how long the breaker stays open before probing again.
func WithTimeout(d time.Duration) Option {
	return func(s *cb.Settings) { s.Timeout = d }
}

// WithIgnore marks errors that should not count as failures, such as a
// missing symbol upstream.
func WithIgnore(ignore func(error) bool) Option {
	return func(s *cb.Settings) {
		s.IsSuccessful = func(err error) bool { return err == nil || ignore(err) }
	}
}

// WithStateChange registers a callback for state transitions.
func WithStateChange(fn func(name string, from, to string)) Option {
	return func(s *cb.Settings) {
		s.OnStateChange = func(name string, from, to cb.State) { fn(name, from.String(), to.String()) }
	}
}

// Breaker trips after 3 consecutive failures, or when more than 5% of at
// least 20 requests in the current interval failed.
type Breaker struct{ cb *cb.CircuitBreaker }

func New(name string, opts ...Option) *Breaker {
	st := cb.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	for _, opt := range opts {
		opt(&st)
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Do runs fn through the breaker. Rejections are reported as ErrOpen.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) { return nil, fn() })
	if errors.Is(err, cb.ErrOpenState) || errors.Is(err, cb.ErrTooManyRequests) {
		return ErrOpen
	}
	return err
}

// State returns the current state name.
func (b *Breaker) State() string { return b.cb.State().String() }
