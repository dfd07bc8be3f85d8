package momentum

import (
	domsvc "MomentumRank/internal/domain/service"
	"MomentumRank/internal/domain/models"
	"MomentumRank/internal/services/features"
	"MomentumRank/pkg/config"
)

// Scorer computes the momentum statistic over a window of closes.
//
// Primary mode needs LongWindow closes: the LongWindow return minus the
// ShortLookback return, divided by the sample stdev of the last VolWindow
// daily returns. Shorter histories of at least MinHistory closes fall back to a
// plain return over min(VolWindow, len-1) closes.
type Scorer struct {
	longWindow    int
	volWindow     int
	shortLookback int
	minHistory    int
}

// NewScorer builds a scorer from the momentum config section.
func NewScorer(cfg config.Momentum) *Scorer {
	s := &Scorer{
		longWindow:    cfg.LongWindow,
		volWindow:     cfg.VolWindow,
		shortLookback: cfg.ShortLookback,
		minHistory:    cfg.MinHistory,
	}
	if s.longWindow <= 0 {
		s.longWindow = 252
	}
	if s.volWindow <= 0 {
		s.volWindow = 126
	}
	if s.shortLookback <= 0 {
		s.shortLookback = 21
	}
	if s.minHistory <= 0 {
		s.minHistory = 126
	}
	return s
}

func (s *Scorer) LongWindow() int { return s.longWindow }
func (s *Scorer) MinHistory() int { return s.minHistory }

// FallbackWindow is the window length used for a history of n closes that is
// too short for primary mode.
func (s *Scorer) FallbackWindow(n int) int {
	w := n - 1
	if s.volWindow < w {
		w = s.volWindow
	}
	return w
}

// Plan picks the window length and mode for a history of n closes. Both
// Score and the rolling engine go through it.
func (s *Scorer) Plan(n int) (int, domsvc.ScoreFunc, bool) {
	switch {
	case n < s.minHistory:
		return 0, nil, false
	case n >= s.longWindow:
		return s.longWindow, s.Normalized, true
	default:
		return s.FallbackWindow(n), s.SimpleReturn, true
	}
}

// Score scores the trailing part of window selected by Plan.
func (s *Scorer) Score(window []float64) models.Momentum {
	n := len(window)
	w, score, ok := s.Plan(n)
	if !ok {
		return models.Undefined(models.ModeSimpleReturn)
	}
	return score(window[n-w:])
}

// Normalized scores the last LongWindow closes of window in primary mode.
func (s *Scorer) Normalized(window []float64) models.Momentum {
	if len(window) < s.longWindow {
		return models.Undefined(models.ModeNormalized)
	}
	w := window[len(window)-s.longWindow:]

	sigma, ok := features.SampleStdDev(features.TailReturns(w, s.volWindow))
	if !ok || sigma == 0 {
		return models.Undefined(models.ModeNormalized)
	}

	long := features.SimpleReturn(w)
	short := features.ReturnSince(w, s.shortLookback)
	return models.Defined((long-short)/sigma, models.ModeNormalized)
}

// SimpleReturn scores window as (last-first)/first.
func (s *Scorer) SimpleReturn(window []float64) models.Momentum {
	if len(window) < 2 {
		return models.Undefined(models.ModeSimpleReturn)
	}
	return models.Defined(features.SimpleReturn(window), models.ModeSimpleReturn)
}

var _ domsvc.MomentumScorer = (*Scorer)(nil)
