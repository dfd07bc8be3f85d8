package models

import "time"

// ReportRow is a classified row joined with ticker metadata and rounded for display.
type ReportRow struct {
	Symbol         string         `json:"symbol"`
	Company        string         `json:"company"`
	Industry       string         `json:"industry"`
	YearAdded      *int           `json:"year_added,omitempty"`
	Momentum       float64        `json:"momentum"`
	Mode           MomentumMode   `json:"mode"`
	FactorRank     int            `json:"factor_rank"`
	Classification Classification `json:"classification"`
}

// CandidateRow is a ReportRow tagged with a trade side.
type CandidateRow struct {
	ReportRow
	Side Side `json:"side"`
}

// IndustryShare is one line of the universe industry breakdown.
type IndustryShare struct {
	Industry   string  `json:"industry"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Report is the display-ready view of a computation.
type Report struct {
	RunID      string                 `json:"run_id"`
	Universe   string                 `json:"universe"`
	Start      time.Time              `json:"start"`
	End        time.Time              `json:"end"`
	LastDate   time.Time              `json:"last_date"`
	ComputedAt time.Time              `json:"computed_at"`
	FromCache  bool                   `json:"from_cache"`
	Partial    bool                   `json:"partial"`
	MixedModes bool                   `json:"mixed_modes"`
	Rows       []ReportRow            `json:"rows"`
	Top        []ReportRow            `json:"top"`
	Bottom     []ReportRow            `json:"bottom"`
	Candidates []CandidateRow         `json:"candidates"`
	Industries []IndustryShare        `json:"industries"`
	Counts     map[Classification]int `json:"counts"`
	Excluded   []ExcludedSymbol       `json:"excluded,omitempty"`
}

// CalculateParams selects the universe and date range of a computation.
// Zero dates fall back to the configured default history window.
type CalculateParams struct {
	Universe Universe
	Start    time.Time
	End      time.Time
	UseCache bool
}

// Calculation is a result plus where it came from.
type Calculation struct {
	Result    *MomentumResult
	Tickers   TickerSet
	Universe  Universe
	FromCache bool
}
