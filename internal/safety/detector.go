package safety

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Detector evaluates messages against a compiled pattern library. It does no
// I/O and is safe for concurrent use.
type Detector struct {
	patterns []*regexp.Regexp
	phrases  []string
	combos   []Combo
	logger   *zap.Logger
}

func NewDetector(lib Library, logger *zap.Logger) (*Detector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Detector{logger: logger}
	for _, cat := range lib.Categories {
		for _, pattern := range cat.Patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("compile pattern %q in %s: %w", pattern, cat.Name, err)
			}
			d.patterns = append(d.patterns, re)
		}
	}
	for _, phrase := range lib.Phrases {
		if phrase == "" {
			continue
		}
		d.phrases = append(d.phrases, strings.ToLower(phrase))
	}
	for _, combo := range lib.Combos {
		if len(combo.Tokens) == 0 {
			continue
		}
		lowered := Combo{Tokens: make([]string, 0, len(combo.Tokens))}
		for _, tok := range combo.Tokens {
			lowered.Tokens = append(lowered.Tokens, strings.ToLower(tok))
		}
		d.combos = append(d.combos, lowered)
	}
	return d, nil
}

// Detect reports whether the message contains crisis indicators. It never
// panics outward: an internal fault yields false, so the caller always gets
// an answer on the request path. Fail-open on error is the inherited policy;
// it trades missed detection on faults against false alarms.
func (d *Detector) Detect(message string) (detected bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("crisis detection fault", zap.Any("panic", r))
			detected = false
		}
	}()

	if message == "" {
		return false
	}

	for _, re := range d.patterns {
		if re.MatchString(message) {
			d.logger.Warn("crisis pattern detected")
			return true
		}
	}

	lower := strings.ToLower(message)
	for _, phrase := range d.phrases {
		if strings.Contains(lower, phrase) {
			d.logger.Warn("high-risk phrase detected")
			return true
		}
	}

	for _, combo := range d.combos {
		if comboFires(lower, combo) {
			d.logger.Warn("crisis word combination detected")
			return true
		}
	}

	return false
}

func comboFires(lower string, combo Combo) bool {
	for _, tok := range combo.Tokens {
		if !strings.Contains(lower, tok) {
			return false
		}
	}
	return true
}
