package models

import "errors"

var (
	// ErrNoPriceData means the supplier returned no usable price rows.
	ErrNoPriceData = errors.New("no price data")
	// ErrNoMomentumData means no symbol cleared the minimum history floor.
	ErrNoMomentumData = errors.New("no momentum data")
	// ErrNoValidMomentum means no date has a rankable momentum value.
	ErrNoValidMomentum = errors.New("no valid momentum")
	// ErrUnknownUniverse means a custom universe token is not registered.
	ErrUnknownUniverse = errors.New("unknown universe")
	// ErrInvalidTickerFile means an uploaded ticker file cannot be used.
	ErrInvalidTickerFile = errors.New("invalid ticker file")
)

// ErrInvalidRange means the requested start date is after the end date.
var ErrInvalidRange = errors.New("invalid date range")
