package wellness

import "math"

// Classify maps a metric value to a status using the key's thresholds.
// Unknown keys and non-finite values classify as neutral rather than
// erroring.
func (t *DefinitionTable) Classify(key MetricKey, value float64) Status {
	def, ok := t.defs[key]
	if !ok {
		return StatusNeutral
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return StatusNeutral
	}

	if def.HigherIsBetter {
		switch {
		case value >= def.GoodThreshold:
			return StatusGood
		case value >= def.WarnThreshold:
			return StatusWarn
		default:
			return StatusBad
		}
	}

	switch {
	case value <= def.GoodThreshold:
		return StatusGood
	case value <= def.WarnThreshold:
		return StatusWarn
	default:
		return StatusBad
	}
}
