package breaker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	b := New("test")
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Do(func() error { return errBoom }), errBoom)
	}
	assert.Equal(t, "open", b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreakerIgnoredErrorsDoNotTrip(t *testing.T) {
	errMissing := errors.New("missing")
	b := New("test", WithIgnore(func(err error) bool { return errors.Is(err, errMissing) }))
	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, b.Do(func() error { return errMissing }), errMissing)
	}
	assert.Equal(t, "closed", b.State())
}
