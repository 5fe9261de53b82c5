package wellness

import "math"

const percentMultiplier = 100

// DeviationPercent returns the signed percentage deviation of current
// from baseline, or nil when current is missing or baseline is zero or
// negative (missing-data and division-by-zero guard). A negative baseline
// is treated as unset: no metric has one, and config validation rejects
// non-positive baseline overrides.
func DeviationPercent(current *float64, baseline float64) *float64 {
	if current == nil || baseline <= 0 {
		return nil
	}
	if math.IsNaN(*current) || math.IsInf(*current, 0) {
		return nil
	}
	deviation := ((*current - baseline) / baseline) * percentMultiplier
	return &deviation
}

// CompareToBaseline maps a signed deviation percentage plus the metric's
// directionality into a tri-state label. Deviations inside the dead zone
// count as in line regardless of direction, which keeps readings near the
// baseline from flapping between better and worse.
func CompareToBaseline(deviationPct float64, higherIsBetter bool) BaselineComparison {
	if math.Abs(deviationPct) < DeviationDeadZone {
		return BaselineInLine
	}
	if (higherIsBetter && deviationPct > 0) || (!higherIsBetter && deviationPct < 0) {
		return BaselineBetter
	}
	return BaselineWorse
}
