package analyzer

// IsForumAnomalous reports whether current post volume exceeds the
// baseline by more than the configured multiplier. A zero or NaN baseline
// never alerts: a dead board waking up is not a statistical signal.
func IsForumAnomalous(baseline, current, multiplier float64) bool {
	return baseline > 0 && current > multiplier*baseline
}

// IsPreopenAnomalous reports whether the pre-open indicative price sits
// strictly outside the [low, high] band relative to the previous close.
// Landing exactly on a bound does not alert.
func IsPreopenAnomalous(previousClose, preopen, low, high float64) bool {
	ratio := preopen / previousClose
	return ratio > high || ratio < low
}
