package models

// Classification is the bucket derived from rank and universe size.
type Classification string

const (
	StrongBuy  Classification = "Strong Buy"
	Buy        Classification = "Buy"
	Neutral    Classification = "Neutral"
	Sell       Classification = "Sell"
	StrongSell Classification = "Strong Sell"
)

// Classifications lists buckets from most bullish to most bearish.
var Classifications = []Classification{StrongBuy, Buy, Neutral, Sell, StrongSell}

// ClassifiedObservation is a ranked row with its bucket.
type ClassifiedObservation struct {
	RankedObservation
	Classification Classification `json:"classification"`
}

// Side is the trade direction of a candidate.
type Side int

const (
	Long  Side = 1
	Short Side = -1
)

func (s Side) String() string {
	if s == Long {
		return "long"
	}
	return "short"
}

// TradeCandidate pairs a classified row with a side indicator.
type TradeCandidate struct {
	ClassifiedObservation
	Side Side `json:"side"`
}
