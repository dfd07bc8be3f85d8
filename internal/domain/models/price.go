package models

import "time"

// PricePoint is one daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is an ordered close-price history for one symbol. Dates are
// strictly increasing; gaps are allowed and never interpolated.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Closes returns the close prices in date order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Close
	}
	return out
}

// Between returns the points whose date falls in [start, end]. A zero bound is open.
func (s PriceSeries) Between(start, end time.Time) PriceSeries {
	out := PriceSeries{Symbol: s.Symbol}
	for _, p := range s.Points {
		if !start.IsZero() && p.Date.Before(start) {
			continue
		}
		if !end.IsZero() && p.Date.After(end) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// PriceTable holds one series per symbol in universe order. Order matters:
// it is the first-seen order used to break ranking ties.
type PriceTable struct {
	Series []PriceSeries `json:"series"`
}

// Empty reports whether the table carries no price points at all.
func (t PriceTable) Empty() bool {
	for _, s := range t.Series {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// Symbols lists the symbols that have at least one point.
func (t PriceTable) Symbols() []string {
	out := make([]string, 0, len(t.Series))
	for _, s := range t.Series {
		if len(s.Points) > 0 {
			out = append(out, s.Symbol)
		}
	}
	return out
}

// Lookup returns the series for symbol.
func (t PriceTable) Lookup(symbol string) (PriceSeries, bool) {
	for _, s := range t.Series {
		if s.Symbol == symbol {
			return s, true
		}
	}
	return PriceSeries{}, false
}

// Reorder returns a table following the given symbol order. Symbols missing
// from t are skipped; series not named in order are appended at the end.
func (t PriceTable) Reorder(order []string) PriceTable {
	bySymbol := make(map[string]PriceSeries, len(t.Series))
	for _, s := range t.Series {
		bySymbol[s.Symbol] = s
	}
	out := PriceTable{Series: make([]PriceSeries, 0, len(t.Series))}
	for _, sym := range order {
		if s, ok := bySymbol[sym]; ok {
			out.Series = append(out.Series, s)
			delete(bySymbol, sym)
		}
	}
	for _, s := range t.Series {
		if _, ok := bySymbol[s.Symbol]; ok {
			out.Series = append(out.Series, s)
		}
	}
	return out
}
