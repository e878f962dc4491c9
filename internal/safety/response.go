package safety

import "regexp"

const crisisResponse = `I'm very concerned about what you've shared with me. Your safety is the most important thing right now.

Please reach out for immediate help:

**If you're in immediate danger, call emergency services (911) right away.**

**Crisis Support:**
- National Suicide Prevention Lifeline: 988
- Crisis Text Line: Text HOME to 741741
- National Domestic Violence Hotline: 1-800-799-7233

**Please contact a trusted person in your life right now** - a friend, family member, counselor, or healthcare provider.

You don't have to go through this alone. Professional counselors are trained to help and want to support you through this difficult time.

I care about your wellbeing, but I'm not equipped to provide the immediate professional help you need right now. Please reach out to one of these resources.`

const disclaimer = `**Important Safety Information:**

This is an AI chatbot designed to provide emotional support and wellness resources. It is NOT a replacement for professional mental health care, medical advice, or emergency services.

**Limitations:**
- Cannot provide medical diagnoses or treatment recommendations
- Cannot prescribe medications or provide clinical therapy
- Cannot handle immediate crisis situations requiring urgent intervention

**In Case of Emergency:**
If you're experiencing thoughts of self-harm, suicide, or immediate danger, please contact:
- Emergency Services: 911
- National Suicide Prevention Lifeline: 988
- Crisis Text Line: Text HOME to 741741

**Privacy:** Your conversations are handled with care. We log anonymized data for safety and improvement purposes only.

**Professional Help:** We strongly encourage speaking with a licensed mental health professional for ongoing support and treatment.`

// CrisisResponse returns the fixed reply used whenever a crisis is detected.
func CrisisResponse() string { return crisisResponse }

// Disclaimer returns the application safety disclaimer.
func Disclaimer() string { return disclaimer }

// CrisisResources lists immediate-help resources attached to crisis replies.
func CrisisResources() []string {
	return []string{
		"National Suicide Prevention Lifeline: 988",
		"Crisis Text Line: Text HOME to 741741",
		"Emergency Services: 911",
		"Find local mental health resources at SAMHSA.gov",
	}
}

// GeneralResources lists wellness resources attached to normal replies.
func GeneralResources() []string {
	return []string{
		"National Alliance on Mental Illness (NAMI): nami.org",
		"Mental Health America: mhanational.org",
		"Psychology Today therapist finder",
	}
}

// MaxMessageLen is the upper bound on accepted message length. Longer input
// is a caller error, rejected at the transport boundary.
const MaxMessageLen = 2000

var inappropriatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:spam|advertisement|buy\s+now|click\s+here)\b`),
	regexp.MustCompile(`(?i)\b(?:hate|racist|discrimination)\b`),
}

// Validation is the result of a full message safety check.
type Validation struct {
	Safe           bool
	CrisisDetected bool
	RiskLevel      string
	Concerns       []string
}

// Validate runs the detector plus length and content checks over a message.
func (d *Detector) Validate(message string) Validation {
	v := Validation{Safe: true, RiskLevel: "low"}

	if d.Detect(message) {
		v.Safe = false
		v.CrisisDetected = true
		v.RiskLevel = "high"
		v.Concerns = append(v.Concerns, "Crisis indicators detected")
	}

	if len(message) > MaxMessageLen {
		v.Concerns = append(v.Concerns, "Message too long")
	}

	for _, re := range inappropriatePatterns {
		if re.MatchString(message) {
			v.Concerns = append(v.Concerns, "Potentially inappropriate content")
			break
		}
	}

	return v
}
