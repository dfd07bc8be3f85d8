package usecase

import (
	"sort"

	"MomentumRank/internal/domain/models"
	"MomentumRank/pkg/config"
)

// Classifier buckets ranked rows by rank and universe size.
type Classifier struct {
	topFraction    float64
	bottomFraction float64
}

// NewClassifier reads the bucket fractions from the momentum config section.
func NewClassifier(cfg config.Momentum) *Classifier {
	c := &Classifier{topFraction: cfg.TopFraction, bottomFraction: cfg.BottomFraction}
	if c.topFraction <= 0 {
		c.topFraction = 0.1
	}
	if c.bottomFraction <= 0 {
		c.bottomFraction = 0.9
	}
	return c
}

// Thresholds returns the top and bottom rank thresholds for a universe of k rows.
func (c *Classifier) Thresholds(k int) (top, bottom int) {
	return int(float64(k) * c.topFraction), int(float64(k) * c.bottomFraction)
}

// Classify labels each row. Buy-side buckets are assigned first and sell-side
// buckets overwrite them, which matters when thresholds collide on small universes.
func (c *Classifier) Classify(today []models.RankedObservation) []models.ClassifiedObservation {
	top, bottom := c.Thresholds(len(today))

	out := make([]models.ClassifiedObservation, len(today))
	for i, r := range today {
		label := models.Neutral
		switch {
		case r.FactorRank <= top:
			label = models.StrongBuy
		case r.FactorRank <= 2*top:
			label = models.Buy
		}
		switch {
		case r.FactorRank >= bottom:
			label = models.StrongSell
		case r.FactorRank >= bottom-top:
			label = models.Sell
		}
		out[i] = models.ClassifiedObservation{RankedObservation: r, Classification: label}
	}
	return out
}

// TopN returns up to n Strong Buy rows in ascending rank order.
func (c *Classifier) TopN(classified []models.ClassifiedObservation, n int) []models.ClassifiedObservation {
	return firstWithLabel(classified, models.StrongBuy, clampHalf(n, len(classified)))
}

// BottomN returns up to n Strong Sell rows in ascending rank order.
func (c *Classifier) BottomN(classified []models.ClassifiedObservation, n int) []models.ClassifiedObservation {
	return firstWithLabel(classified, models.StrongSell, clampHalf(n, len(classified)))
}

// TradeCandidates pairs the n best ranks (long) with the n worst ranks (short),
// regardless of bucket. n is capped at half the universe so the sides never overlap.
func (c *Classifier) TradeCandidates(classified []models.ClassifiedObservation, n int) []models.TradeCandidate {
	n = clampHalf(n, len(classified))
	if n == 0 {
		return nil
	}
	rows := byRank(classified)

	out := make([]models.TradeCandidate, 0, 2*n)
	for _, r := range rows[:n] {
		out = append(out, models.TradeCandidate{ClassifiedObservation: r, Side: models.Long})
	}
	for _, r := range rows[len(rows)-n:] {
		out = append(out, models.TradeCandidate{ClassifiedObservation: r, Side: models.Short})
	}
	return out
}

// Counts tallies rows per bucket.
func (c *Classifier) Counts(classified []models.ClassifiedObservation) map[models.Classification]int {
	out := make(map[models.Classification]int, len(models.Classifications))
	for _, l := range models.Classifications {
		out[l] = 0
	}
	for _, r := range classified {
		out[r.Classification]++
	}
	return out
}

func clampHalf(n, k int) int {
	if n < 0 {
		return 0
	}
	if n > k/2 {
		return k / 2
	}
	return n
}

func byRank(rows []models.ClassifiedObservation) []models.ClassifiedObservation {
	out := append([]models.ClassifiedObservation(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FactorRank < out[j].FactorRank })
	return out
}

func firstWithLabel(rows []models.ClassifiedObservation, label models.Classification, n int) []models.ClassifiedObservation {
	var out []models.ClassifiedObservation
	for _, r := range byRank(rows) {
		if len(out) >= n {
			break
		}
		if r.Classification == label {
			out = append(out, r)
		}
	}
	return out
}
