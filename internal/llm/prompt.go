package llm

import (
	"fmt"
	"strings"

	"mindmate/internal/conversation"
	"mindmate/internal/sentiment"
)

// SystemPrompt fixes the assistant's behavior for every generation provider.
const SystemPrompt = `You are an empathetic and non-judgmental mental-wellness assistant. Your goal is to provide emotional support and practical coping suggestions, NOT medical, diagnostic, or therapeutic advice. Always:

1. Validate the user's feelings.
2. Use short, calm sentences.
3. Offer 1-2 practical coping steps (breathing, grounding).
4. If user expresses self-harm, suicidal intent, or immediate danger, do NOT attempt to counsel. Instead:
   - Express concern and seriousness,
   - Provide clear, immediate instructions: contact local emergency services or a crisis hotline, and encourage contacting a trusted person,
   - Provide placeholders for local emergency numbers and recommend professional help.
5. Always end by asking a gentle follow-up question (e.g., 'Would you like some breathing exercises now?').
6. Never provide medical diagnoses, prescribe medication, or claim to be a medical professional.

Keep responses under 120 words and always be warm, understanding, and supportive.`

// cautionThreshold is the sentiment score below which the prompt carries an
// extra validation note.
const cautionThreshold = -0.3

// BuildPrompt assembles the user-side prompt: recent role-tagged context,
// the current message, the sentiment read, and the caution note for strongly
// negative scores.
func BuildPrompt(current string, history []conversation.Message, s sentiment.Result) string {
	var parts []string

	if len(history) > 0 {
		parts = append(parts, "Recent conversation:")
		for _, msg := range history {
			role := "User"
			if msg.Role == conversation.RoleAssistant {
				role = "Assistant"
			}
			parts = append(parts, fmt.Sprintf("%s: %s", role, msg.Text))
		}
	}

	parts = append(parts, fmt.Sprintf("\nCurrent user message: %s", current))
	parts = append(parts, fmt.Sprintf("Detected sentiment: %s (confidence: %.2f)", s.Label, s.Confidence))

	if s.Score < cautionThreshold {
		parts = append(parts, "\nNote: User seems to be experiencing negative emotions. Provide extra validation and gentle coping suggestions.")
	}

	parts = append(parts, "\nProvide a supportive, empathetic response following the system guidelines:")

	return strings.Join(parts, "\n")
}
