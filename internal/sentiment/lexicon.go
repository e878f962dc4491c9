package sentiment

import "strings"

// The lexicon scorer is the terminal fallback: pure, deterministic, and
// dependency-free. It must never fail.

var positiveWords = []string{
	"good", "great", "happy", "joy", "love", "wonderful", "amazing",
	"excellent", "fantastic", "perfect", "awesome", "brilliant",
}

var negativeWords = []string{
	"bad", "terrible", "sad", "angry", "hate", "awful", "horrible",
	"depressed", "anxious", "worried", "scared", "lonely", "hopeless",
	"suicide", "kill", "die", "hurt", "pain",
}

const lexiconConfidence = 0.6

// LexiconScore counts listed words present in the text (case-insensitive
// substring, one count per listed word) and maps the majority to a fixed
// score. Ties, including no matches at all, are neutral.
func LexiconScore(text string) Result {
	lower := strings.ToLower(text)

	positives := 0
	for _, word := range positiveWords {
		if strings.Contains(lower, word) {
			positives++
		}
	}
	negatives := 0
	for _, word := range negativeWords {
		if strings.Contains(lower, word) {
			negatives++
		}
	}

	score := 0.0
	switch {
	case negatives > positives:
		score = -0.7
	case positives > negatives:
		score = 0.7
	}

	return Result{
		Provider:   "lexicon",
		Score:      score,
		Magnitude:  abs(score),
		Label:      LabelFor(score),
		Confidence: lexiconConfidence,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
