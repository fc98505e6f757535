package analysis

import "math"

// Summary describes one metric series.
type Summary struct {
	Mean      float64
	StdDev    float64
	Min, Max  float64
	Final     float64
	SettledAt float64 // time after which the series stays within tolerance of Final; -1 if never
}

// Summarize computes a Summary of values sampled at times. tol is a fraction
// of the series range used for the settling band.
func Summarize(times, values []float64, tol float64) Summary {
	if len(values) == 0 {
		return Summary{SettledAt: -1}
	}

	s := Summary{Min: math.Inf(1), Max: math.Inf(-1), Final: values[len(values)-1]}
	for _, v := range values {
		s.Mean += v
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
	}
	s.Mean /= float64(len(values))

	for _, v := range values {
		d := v - s.Mean
		s.StdDev += d * d
	}
	s.StdDev = math.Sqrt(s.StdDev / float64(len(values)))

	band := tol * (s.Max - s.Min)
	s.SettledAt = -1
	for i := len(values) - 1; i >= 0; i-- {
		if math.Abs(values[i]-s.Final) > band {
			break
		}
		if i < len(times) {
			s.SettledAt = times[i]
		}
	}
	return s
}
