package models

// Transport DTOs for the HTTP API. Bound from query strings, then defaulted and validated.

// MomentumQuery selects a universe and date range.
type MomentumQuery struct {
	Universe string `query:"universe" validate:"omitempty,universe"`
	Start    string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	Refresh  bool   `query:"refresh"`
}

// SliceQuery is a MomentumQuery plus a row count.
type SliceQuery struct {
	Universe string `query:"universe" validate:"omitempty,universe"`
	Start    string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	Refresh  bool   `query:"refresh"`
	N        int    `query:"n" default:"10" validate:"gte=1,lte=1000"`
}

// HistoryQuery asks for the long-form rows of one symbol.
type HistoryQuery struct {
	Universe string `query:"universe" validate:"omitempty,universe"`
	Start    string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End      string `query:"end" validate:"omitempty,datetime=2006-01-02"`
	Symbol   string `query:"symbol" validate:"required,ticker"`
}

// UniverseQuery identifies a universe only.
type UniverseQuery struct {
	Universe string `query:"universe" validate:"omitempty,universe"`
}

// UniverseUploadResponse is returned after a ticker file upload.
type UniverseUploadResponse struct {
	Token   string `json:"token"`
	Symbols int    `json:"symbols"`
}

// SymbolHistoryResponse is the long-form history of one symbol.
type SymbolHistoryResponse struct {
	Symbol string              `json:"symbol"`
	Rows   []RankedObservation `json:"rows"`
}

// SliceResponse is a bounded view of the latest rankings.
type SliceResponse struct {
	RunID     string      `json:"run_id"`
	LastDate  string      `json:"last_date"`
	FromCache bool        `json:"from_cache"`
	Partial   bool        `json:"partial"`
	Rows      []ReportRow `json:"rows"`
}

// CandidatesResponse lists long and short trade candidates.
type CandidatesResponse struct {
	RunID      string         `json:"run_id"`
	LastDate   string         `json:"last_date"`
	FromCache  bool           `json:"from_cache"`
	Partial    bool           `json:"partial"`
	Candidates []CandidateRow `json:"candidates"`
}
