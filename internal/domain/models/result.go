package models

import (
	"sort"
	"time"
)

// ExcludedSymbol records a symbol that produced no observations.
type ExcludedSymbol struct {
	Symbol string `json:"symbol"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

const (
	ExcludeInsufficientHistory = "insufficient_history"
	ExcludeTimeBudget          = "time_budget"
)

// MomentumResult is the full output of one engine run.
type MomentumResult struct {
	RunID        string                `json:"run_id"`
	Start        time.Time             `json:"start"`
	End          time.Time             `json:"end"`
	ComputedAt   time.Time             `json:"computed_at"`
	LastDate     time.Time             `json:"last_date"`
	Observations []MomentumObservation `json:"observations"`
	Ranked       []RankedObservation   `json:"ranked"`
	Today        []RankedObservation   `json:"today"`
	Excluded     []ExcludedSymbol      `json:"excluded,omitempty"`
	Partial      bool                  `json:"partial"`
	Symbols      int                   `json:"symbols"`
}

// History returns the long-form rows for one symbol in date order. Rows whose
// momentum is undefined are kept with a zero FactorRank.
func (r *MomentumResult) History(symbol string) []RankedObservation {
	ranks := make(map[int64]int)
	for _, o := range r.Ranked {
		if o.Symbol == symbol {
			ranks[o.Date.Unix()] = o.FactorRank
		}
	}

	var out []RankedObservation
	for _, o := range r.Observations {
		if o.Symbol != symbol {
			continue
		}
		out = append(out, RankedObservation{MomentumObservation: o, FactorRank: ranks[o.Date.Unix()]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Universe identifies the symbol set a computation ran over.
type Universe struct {
	// Token is empty for the default universe, otherwise the content hash of
	// the uploaded ticker file.
	Token string `json:"token,omitempty"`
}

// IsDefault reports whether this is the built-in universe.
func (u Universe) IsDefault() bool { return u.Token == "" }

// Source renders the data-source part of a cache key.
func (u Universe) Source() string {
	if u.IsDefault() {
		return "default"
	}
	return "custom-" + u.Token
}
