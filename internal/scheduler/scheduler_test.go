package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MomentumRank/internal/domain/models"
	applogger "MomentumRank/pkg/logger"
)

type recordingCalc struct {
	calls  atomic.Int32
	params []models.CalculateParams
	mu     sync.Mutex
	err    error
	block  chan struct{}
}

func (c *recordingCalc) Calculate(ctx context.Context, p models.CalculateParams) (*models.Calculation, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.params = append(c.params, p)
	c.mu.Unlock()
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return &models.Calculation{Result: &models.MomentumResult{RunID: "r"}}, nil
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(&recordingCalc{}, applogger.Nop(), 0)
	assert.Error(t, s.Register("not a cron"))
	assert.Error(t, s.Register("0 0 0 * * 1"))
	assert.NoError(t, s.Register("30 22 * * 1-5"))
}

func TestRunNowBypassesCache(t *testing.T) {
	calc := &recordingCalc{}
	s := New(calc, applogger.Nop(), time.Second)
	s.RunNow()

	require.Equal(t, int32(1), calc.calls.Load())
	assert.False(t, calc.params[0].UseCache)
	assert.True(t, calc.params[0].Universe.IsDefault())
}

func TestRunNowSurvivesErrors(t *testing.T) {
	calc := &recordingCalc{err: errors.New("boom")}
	s := New(calc, applogger.Nop(), 0)
	s.RunNow()
	s.RunNow()
	assert.Equal(t, int32(2), calc.calls.Load())
}

func TestOverlappingRefreshIsSkipped(t *testing.T) {
	calc := &recordingCalc{block: make(chan struct{})}
	s := New(calc, applogger.Nop(), 0)

	done := make(chan struct{})
	go func() {
		s.RunNow()
		close(done)
	}()
	require.Eventually(t, func() bool { return calc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.RunNow()
	assert.Equal(t, int32(1), calc.calls.Load())

	close(calc.block)
	<-done
}

func TestStopCancelsRunningRefresh(t *testing.T) {
	calc := &recordingCalc{block: make(chan struct{})}
	s := New(calc, applogger.Nop(), 0)
	s.Start()

	done := make(chan struct{})
	go func() {
		s.RunNow()
		close(done)
	}()
	require.Eventually(t, func() bool { return calc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh did not observe cancellation")
	}
}
