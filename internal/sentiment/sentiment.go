package sentiment

import "context"

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Result is the common sentiment representation every provider's native
// output is normalized into. Score is in [-1, 1], confidence in [0, 1], and
// the label always agrees with LabelFor(Score).
type Result struct {
	Provider   string  `json:"provider"`
	Score      float64 `json:"score"`
	Magnitude  float64 `json:"magnitude"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type Provider interface {
	Name() string
	Analyze(ctx context.Context, text string) (Result, error)
}

// LabelFor applies the fixed score-to-label rule. The 0.1 band is inclusive
// neutral on both ends, regardless of which provider produced the score.
func LabelFor(score float64) string {
	switch {
	case score > 0.1:
		return LabelPositive
	case score < -0.1:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalize forces a provider result onto the common scale.
func normalize(r Result) Result {
	r.Score = clamp(r.Score, -1, 1)
	r.Confidence = clamp(r.Confidence, 0, 1)
	if r.Magnitude < 0 {
		r.Magnitude = -r.Magnitude
	}
	r.Label = LabelFor(r.Score)
	return r
}
