// Package wellness computes cognitive wellness signals from conversation
// metrics: per-metric status classification, a weighted composite score,
// trend direction over a score series, and deviation from baseline.
//
// Every function here is pure and safe for concurrent use. Missing or
// malformed input degrades to a neutral/stable/nil result instead of an
// error so that one bad sample can never abort a dashboard view.
package wellness

// MetricKey identifies a cognitive metric extracted from a conversation.
type MetricKey string

// Known metric keys.
const (
	VocabularyDiversity MetricKey = "vocabulary_diversity"
	TopicCoherence      MetricKey = "topic_coherence"
	RepetitionRate      MetricKey = "repetition_rate"
	WordFindingPauses   MetricKey = "word_finding_pauses"
	ResponseLatencyMS   MetricKey = "response_latency_ms"
)

// Status classifies a single metric value against its thresholds.
type Status string

// Status values. StatusNeutral is returned for metric keys without a
// definition; new keys from the companion must not crash evaluation.
const (
	StatusGood    Status = "good"
	StatusWarn    Status = "warn"
	StatusBad     Status = "bad"
	StatusNeutral Status = "neutral"
)

// TrendDirection classifies the movement of a composite score series.
type TrendDirection string

// TrendDirection values.
const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// BaselineComparison classifies a deviation percentage relative to the
// metric's personalized baseline.
type BaselineComparison string

// BaselineComparison values.
const (
	BaselineInLine BaselineComparison = "in_line"
	BaselineBetter BaselineComparison = "better"
	BaselineWorse  BaselineComparison = "worse"
)

// Tuning constants. TrendDelta and DeviationDeadZone happen to share a
// value today but classify unrelated things (multi-sample trend movement
// vs point-in-time baseline deviation) and must stay independent.
const (
	// TrendDelta is the minimum half-average difference, in score points,
	// for a series to count as improving or declining.
	TrendDelta = 3.0

	// DeviationDeadZone is the deviation percentage below which a value
	// counts as in line with its baseline.
	DeviationDeadZone = 3.0
)

// Composite score weights. The repetition term is inverted before
// weighting since lower repetition is healthier.
const (
	VocabularyWeight = 0.4
	CoherenceWeight  = 0.4
	RepetitionWeight = 0.2
)
