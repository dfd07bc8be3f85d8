package models

// UnknownIndustry is used when a ticker file has no industry for a symbol.
const UnknownIndustry = "Unknown"

// TickerInfo is display metadata for one symbol.
type TickerInfo struct {
	Symbol    string `json:"symbol"`
	Company   string `json:"company"`
	Industry  string `json:"industry"`
	YearAdded *int   `json:"year_added,omitempty"`
}

// TickerSet is an ordered universe with symbol lookup.
type TickerSet struct {
	Tickers []TickerInfo `json:"tickers"`
}

// Symbols returns the symbols in file order.
func (s TickerSet) Symbols() []string {
	out := make([]string, len(s.Tickers))
	for i, t := range s.Tickers {
		out[i] = t.Symbol
	}
	return out
}

// Index builds a symbol to metadata map.
func (s TickerSet) Index() map[string]TickerInfo {
	out := make(map[string]TickerInfo, len(s.Tickers))
	for _, t := range s.Tickers {
		out[t.Symbol] = t
	}
	return out
}
