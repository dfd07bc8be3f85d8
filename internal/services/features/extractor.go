package features

import "math"

// PctReturns computes simple daily returns r_t = C_t/C_{t-1} - 1.
// It returns a slice of length len(closes)-1, or nil if insufficient data.
// A non-positive previous close yields NaN for that step.
func PctReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			out = append(out, math.NaN())
			continue
		}
		out = append(out, (closes[i]-prev)/prev)
	}
	return out
}

// TailReturns returns the last n daily returns of closes, using n+1 closes.
func TailReturns(closes []float64, n int) []float64 {
	if n <= 0 || len(closes) < 2 {
		return nil
	}
	from := len(closes) - n - 1
	if from < 0 {
		from = 0
	}
	return PctReturns(closes[from:])
}

// SampleStdDev computes the sample standard deviation (n-1 denominator).
// ok is false with fewer than two values or any NaN/Inf input.
func SampleStdDev(xs []float64) (float64, bool) {
	n := len(xs)
	if n < 2 {
		return 0, false
	}
	sum := 0.0
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		sum += x
	}
	mean := sum / float64(n)
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1)), true
}

// SimpleReturn is (last-first)/first over closes.
func SimpleReturn(closes []float64) float64 {
	if len(closes) < 2 || closes[0] <= 0 {
		return math.NaN()
	}
	return (closes[len(closes)-1] - closes[0]) / closes[0]
}

// ReturnSince is (last-c)/c where c is the close lookback points before the end,
// counting the last point as 1.
func ReturnSince(closes []float64, lookback int) float64 {
	if lookback <= 0 || lookback > len(closes) {
		return math.NaN()
	}
	base := closes[len(closes)-lookback]
	if base <= 0 {
		return math.NaN()
	}
	return (closes[len(closes)-1] - base) / base
}
