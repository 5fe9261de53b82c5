package wellness

import "math"

// Composite score bounds.
const (
	minCompositeScore = 0
	maxCompositeScore = 100
)

// CompositeInput carries the three metrics that feed the composite score.
// Nil values mean the metric was not measured this conversation.
type CompositeInput struct {
	VocabularyDiversity *float64
	TopicCoherence      *float64
	RepetitionRate      *float64
}

// CompositeScore combines the weighted inputs into a single 0-100 score.
//
// Missing components contribute 0 to the weighted sum. Treating absent
// data as worst-case rather than renormalizing is deliberate product
// behavior; do not change it without confirmation.
func CompositeScore(in CompositeInput) int {
	vocab := valueOrZero(in.VocabularyDiversity)
	coherence := valueOrZero(in.TopicCoherence)
	repetition := valueOrZero(in.RepetitionRate)

	raw := vocab*maxCompositeScore*VocabularyWeight +
		coherence*maxCompositeScore*CoherenceWeight +
		(1-repetition)*maxCompositeScore*RepetitionWeight

	// Inputs are expected in [0,1] but are not validated upstream, so
	// clamp rather than trust the range.
	score := int(math.Round(raw))
	if score < minCompositeScore {
		return minCompositeScore
	}
	if score > maxCompositeScore {
		return maxCompositeScore
	}
	return score
}

func valueOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}
