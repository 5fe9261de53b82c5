package wellness

// minTrendSamples is the shortest series that can express a direction.
// Below it the answer is always stable; too little history must never
// read as improvement or decline.
const minTrendSamples = 2

// Trend classifies the movement of a time-ordered score series by
// comparing the average of its first half against its second half. The
// input is never mutated.
func Trend(scores []float64) TrendDirection {
	if len(scores) < minTrendSamples {
		return TrendStable
	}

	mid := len(scores) / 2
	firstAvg := mean(scores[:mid])
	secondAvg := mean(scores[mid:])

	switch delta := secondAvg - firstAvg; {
	case delta > TrendDelta:
		return TrendImproving
	case delta < -TrendDelta:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// TrendHalves returns the first- and second-half averages used by Trend.
// Exposed so read models can report the underlying numbers next to the
// direction.
func TrendHalves(scores []float64) (firstAvg, secondAvg float64) {
	if len(scores) < minTrendSamples {
		if len(scores) == 1 {
			return scores[0], scores[0]
		}
		return 0, 0
	}
	mid := len(scores) / 2
	return mean(scores[:mid]), mean(scores[mid:])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
