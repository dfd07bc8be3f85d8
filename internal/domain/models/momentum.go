package models

import (
	"encoding/json"
	"math"
	"time"
)

// MomentumMode tells which scoring formula produced a value.
type MomentumMode string

const (
	// ModeNormalized is the volatility-scaled 252-day score.
	ModeNormalized MomentumMode = "normalized"
	// ModeSimpleReturn is the plain-return score used for short histories.
	ModeSimpleReturn MomentumMode = "simple_return"
)

// Momentum is a possibly undefined score tagged with the mode that produced it.
// The two modes live on different scales.
type Momentum struct {
	Value float64
	Mode  MomentumMode
	Valid bool
}

// Defined builds a valid momentum, falling back to Undefined for NaN or Inf.
func Defined(v float64, mode MomentumMode) Momentum {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined(mode)
	}
	return Momentum{Value: v, Mode: mode, Valid: true}
}

// Undefined builds an undefined momentum for the given mode.
func Undefined(mode MomentumMode) Momentum {
	return Momentum{Mode: mode}
}

type momentumJSON struct {
	Value *float64     `json:"value"`
	Mode  MomentumMode `json:"mode"`
}

func (m Momentum) MarshalJSON() ([]byte, error) {
	out := momentumJSON{Mode: m.Mode}
	if m.Valid {
		v := m.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

func (m *Momentum) UnmarshalJSON(b []byte) error {
	var in momentumJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	m.Mode = in.Mode
	m.Valid = in.Value != nil
	m.Value = 0
	if in.Value != nil {
		m.Value = *in.Value
	}
	return nil
}

// MomentumObservation is one evaluable (symbol, date) window.
type MomentumObservation struct {
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"date"`
	Momentum Momentum  `json:"momentum"`
}

// RankedObservation adds the cross-sectional rank within its date, 1 being
// the highest momentum.
type RankedObservation struct {
	MomentumObservation
	FactorRank int `json:"factor_rank,omitempty"`
}
