package wellness

// Sample is one observed metric value entering evaluation. A nil Value
// means the metric was not measured this conversation.
type Sample struct {
	Key   MetricKey
	Value *float64
}

// Reading is the evaluated form of one sample: status against thresholds
// plus deviation from baseline. DeviationPct and Comparison are unset when
// the value is missing or the key has no definition.
type Reading struct {
	Key          MetricKey
	Label        string
	Value        *float64
	Status       Status
	DeviationPct *float64
	Comparison   BaselineComparison
}

// Report is the full evaluation of one conversation's samples.
type Report struct {
	Score    int
	Readings []Reading
}

// Evaluator runs the classifier, deviation evaluator and composite scorer
// over a conversation's samples using one definition table.
type Evaluator struct {
	table *DefinitionTable
}

// NewEvaluator creates an evaluator backed by the given table.
func NewEvaluator(table *DefinitionTable) *Evaluator {
	return &Evaluator{table: table}
}

// Table returns the evaluator's definition table.
func (e *Evaluator) Table() *DefinitionTable {
	return e.table
}

// Evaluate produces a Report for the given samples. It never fails:
// unknown keys classify as neutral and missing values yield readings
// without deviation data.
func (e *Evaluator) Evaluate(samples []Sample) Report {
	readings := make([]Reading, 0, len(samples))
	var composite CompositeInput

	for _, s := range samples {
		reading := Reading{Key: s.Key, Value: s.Value, Status: StatusNeutral}

		def, known := e.table.Definition(s.Key)
		if known {
			reading.Label = def.Label
		}
		if known && s.Value != nil {
			reading.Status = e.table.Classify(s.Key, *s.Value)
			if dev := DeviationPercent(s.Value, def.Baseline); dev != nil {
				reading.DeviationPct = dev
				reading.Comparison = CompareToBaseline(*dev, def.HigherIsBetter)
			}
		}
		readings = append(readings, reading)

		switch s.Key {
		case VocabularyDiversity:
			composite.VocabularyDiversity = s.Value
		case TopicCoherence:
			composite.TopicCoherence = s.Value
		case RepetitionRate:
			composite.RepetitionRate = s.Value
		}
	}

	return Report{
		Score:    CompositeScore(composite),
		Readings: readings,
	}
}
