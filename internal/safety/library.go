package safety

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Library is the static crisis pattern catalog. It is loaded (or defaulted)
// once at startup and never mutated afterwards; updating it is a deployment
// change, not a runtime operation.
type Library struct {
	ID         string     `yaml:"id"`
	Version    int        `yaml:"version"`
	Categories []Category `yaml:"categories"`
	Phrases    []string   `yaml:"phrases"`
	Combos     []Combo    `yaml:"combinations"`
}

// Category groups regex patterns by risk category.
type Category struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// Combo fires when every token appears somewhere in the lowercased message.
// Tokens match as substrings, not whole words: "pain" inside "painting"
// still counts. Over-matching is the accepted cost of not missing a signal.
type Combo struct {
	Tokens []string `yaml:"tokens"`
}

func DefaultLibrary() Library {
	return Library{
		ID:      "crisis-default",
		Version: 1,
		Categories: []Category{
			{
				Name: "suicidal_ideation",
				Patterns: []string{
					`\b(?:kill\s+myself|suicide|end\s+my\s+life|take\s+my\s+life|want\s+to\s+die)\b`,
					`\b(?:suicidal|end\s+it\s+all|not\s+worth\s+living|better\s+off\s+dead)\b`,
				},
			},
			{
				Name: "self_harm",
				Patterns: []string{
					`\b(?:cut\s+myself|hurt\s+myself|self\s*harm|cutting|burning\s+myself)\b`,
					`\b(?:razor|blade|pills\s+to\s+die|overdose)\b`,
				},
			},
			{
				Name: "imminent_danger",
				Patterns: []string{
					`\b(?:going\s+to\s+kill|planning\s+to\s+die|tonight\s+.*\s+die|ready\s+to\s+die)\b`,
					`\b(?:gun|rope|bridge|jump\s+off|pills\s+.*\s+die)\b`,
				},
			},
			{
				Name: "harm_to_others",
				Patterns: []string{
					`\b(?:kill\s+(?:someone|them|him|her)|hurt\s+(?:someone|people|others))\b`,
					`\b(?:planning\s+to\s+hurt|going\s+to\s+hurt|want\s+to\s+hurt\s+(?:someone|others))\b`,
				},
			},
		},
		Phrases: []string{
			"can't go on",
			"nothing to live for",
			"everyone would be better off without me",
			"final goodbye",
			"last time",
			"saying goodbye",
			"won't be here tomorrow",
		},
		Combos: []Combo{
			{Tokens: []string{"pain", "can't", "anymore"}},
			{Tokens: []string{"tired", "fighting", "give up"}},
			{Tokens: []string{"no one", "cares", "alone"}},
			{Tokens: []string{"pointless", "life", "meaningless"}},
		},
	}
}

// LoadLibrary reads a versioned pattern file. An empty path returns the
// built-in default catalog.
func LoadLibrary(path string) (Library, error) {
	if path == "" {
		return DefaultLibrary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Library{}, err
	}
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return Library{}, err
	}
	if len(lib.Categories) == 0 && len(lib.Phrases) == 0 && len(lib.Combos) == 0 {
		return Library{}, errors.New("pattern library is empty")
	}
	return lib, nil
}
