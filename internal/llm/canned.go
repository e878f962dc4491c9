package llm

import "mindmate/internal/sentiment"

// Canned replies cover total provider outage: the user still gets a
// plausible, sentiment-appropriate response, never an error message.

const (
	cannedNegative = "I hear that you're going through a difficult time right now. Your feelings are completely valid. Sometimes when we're struggling, it can help to take slow, deep breaths - in for 4 counts, hold for 4, out for 4. Would you like to talk about what's making you feel this way?"

	cannedPositive = "I'm glad to hear you're feeling positive! It's wonderful that you're taking time to check in with yourself. Maintaining good mental health habits, like the ones that brought you here, is really important. What's been going well for you lately?"

	cannedNeutral = "Thank you for sharing with me. I'm here to listen and support you. Sometimes it helps to just talk through what's on your mind. Taking a moment to breathe deeply can also be grounding. What would be most helpful for you right now?"
)

// Canned returns the fixed template for a sentiment label. Unknown labels
// get the neutral template.
func Canned(label string) string {
	switch label {
	case sentiment.LabelNegative:
		return cannedNegative
	case sentiment.LabelPositive:
		return cannedPositive
	default:
		return cannedNeutral
	}
}
