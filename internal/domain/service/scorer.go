package service

import "MomentumRank/internal/domain/models"

// ScoreFunc scores one window of closes.
type ScoreFunc func(window []float64) models.Momentum

// MomentumScorer turns a window of closes into a single score.
type MomentumScorer interface {
	Score(window []float64) models.Momentum
	// Plan returns the window length and scoring mode for a history of n
	// closes. ok is false below the history floor.
	Plan(n int) (window int, score ScoreFunc, ok bool)
}
