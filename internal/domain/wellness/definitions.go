package wellness

import "fmt"

// MetricDefinition is the static per-key configuration: directionality,
// classification thresholds and the expected baseline value. Definitions
// are loaded once at startup and never mutated afterwards.
type MetricDefinition struct {
	Key            MetricKey
	Label          string
	HigherIsBetter bool
	// GoodThreshold and WarnThreshold are ordered in the direction of
	// HigherIsBetter: good is strictly better than warn.
	GoodThreshold float64
	WarnThreshold float64
	// Baseline is the population-default expected value; per-patient
	// overrides are layered on top via WithBaselines.
	Baseline float64
}

// DefinitionTable holds the immutable metric definition set used by the
// classifier and the deviation evaluator.
type DefinitionTable struct {
	defs map[MetricKey]MetricDefinition
}

// Option applies a configuration option to the DefinitionTable.
type Option func(*DefinitionTable)

// WithBaselines overrides baselines for the given keys. Keys without a
// definition are ignored; a zero or negative baseline leaves the default
// in place.
func WithBaselines(baselines map[string]float64) Option {
	return func(t *DefinitionTable) {
		for key, baseline := range baselines {
			if baseline <= 0 {
				continue
			}
			if def, ok := t.defs[MetricKey(key)]; ok {
				def.Baseline = baseline
				t.defs[def.Key] = def
			}
		}
	}
}

// NewDefinitionTable builds a table from the given definitions, validating
// that each definition's good threshold is strictly better than its warn
// threshold in the direction of HigherIsBetter.
func NewDefinitionTable(defs []MetricDefinition, opts ...Option) (*DefinitionTable, error) {
	t := &DefinitionTable{defs: make(map[MetricKey]MetricDefinition, len(defs))}

	for _, def := range defs {
		if _, exists := t.defs[def.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDefinition, def.Key)
		}
		if def.HigherIsBetter && def.GoodThreshold <= def.WarnThreshold {
			return nil, fmt.Errorf("%w: %s: good=%v must exceed warn=%v", ErrInvalidThreshold, def.Key, def.GoodThreshold, def.WarnThreshold)
		}
		if !def.HigherIsBetter && def.GoodThreshold >= def.WarnThreshold {
			return nil, fmt.Errorf("%w: %s: good=%v must be below warn=%v", ErrInvalidThreshold, def.Key, def.GoodThreshold, def.WarnThreshold)
		}
		t.defs[def.Key] = def
	}

	// Apply all options
	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// Definition returns the definition for key, if present.
func (t *DefinitionTable) Definition(key MetricKey) (MetricDefinition, bool) {
	def, ok := t.defs[key]
	return def, ok
}

// Len returns the number of definitions in the table.
func (t *DefinitionTable) Len() int {
	return len(t.defs)
}

// DefaultDefinitions returns the population-default metric definitions.
// Ratio metrics live in [0,1]; pause counts and latencies are
// unbounded-positive.
func DefaultDefinitions() []MetricDefinition {
	return []MetricDefinition{
		{
			Key:            VocabularyDiversity,
			Label:          "Vocabulary diversity",
			HigherIsBetter: true,
			GoodThreshold:  0.6,
			WarnThreshold:  0.4,
			Baseline:       0.63,
		},
		{
			Key:            TopicCoherence,
			Label:          "Topic coherence",
			HigherIsBetter: true,
			GoodThreshold:  0.7,
			WarnThreshold:  0.5,
			Baseline:       0.75,
		},
		{
			Key:            RepetitionRate,
			Label:          "Repetition rate",
			HigherIsBetter: false,
			GoodThreshold:  0.1,
			WarnThreshold:  0.2,
			Baseline:       0.08,
		},
		{
			Key:            WordFindingPauses,
			Label:          "Word-finding pauses",
			HigherIsBetter: false,
			GoodThreshold:  4,
			WarnThreshold:  8,
			Baseline:       3,
		},
		{
			Key:            ResponseLatencyMS,
			Label:          "Response latency (ms)",
			HigherIsBetter: false,
			GoodThreshold:  1800,
			WarnThreshold:  2600,
			Baseline:       1500,
		},
	}
}
