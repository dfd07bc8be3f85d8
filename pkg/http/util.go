package http

import (
	"time"

	xutil "MomentumRank/pkg/util"
)

// ParseDate parses a query date. An empty string yields the zero time and ok.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	return xutil.ParseDate(s)
}
