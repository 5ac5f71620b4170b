package automation

import (
	"regexp"
	"strings"
)

// ScreeningConfig controls response screening for prompt-injection and
// exfiltration markers.
type ScreeningConfig struct {
	// Enabled turns screening on. Disabled screening always passes with a
	// zero risk score.
	Enabled bool
	// RiskThreshold is the score at or above which a response fails
	// screening. Scores are in [0, 1].
	RiskThreshold float64
}

// DefaultScreeningConfig enables screening with a moderate threshold.
func DefaultScreeningConfig() ScreeningConfig {
	return ScreeningConfig{Enabled: true, RiskThreshold: 0.5}
}

// Screening is the outcome of screening one response.
type Screening struct {
	Passed    bool
	RiskScore float64
}

// injectionPatterns flag phrases that try to redirect the consuming
// assistant. Weights are summed and capped at 1.
var injectionPatterns = []struct {
	re     *regexp.Regexp
	weight float64
}{
	{regexp.MustCompile(`(?i)ignore (all |any )?(previous|prior|above) (instructions|context)`), 0.6},
	{regexp.MustCompile(`(?i)disregard (your|the) (instructions|system prompt)`), 0.6},
	{regexp.MustCompile(`(?i)you are now [a-z]`), 0.3},
	{regexp.MustCompile(`(?i)reveal (your|the) system prompt`), 0.5},
	{regexp.MustCompile(`(?i)do not (tell|inform) the user`), 0.5},
	{regexp.MustCompile(`(?i)<\s*(script|iframe)[\s>]`), 0.4},
	{regexp.MustCompile(`(?i)(curl|wget|fetch)\s+https?://\S+\s*\|\s*(sh|bash)`), 0.7},
}

// Screen scores a response body for injection markers and applies the
// configured threshold.
func (c ScreeningConfig) Screen(text string) Screening {
	if !c.Enabled || strings.TrimSpace(text) == "" {
		return Screening{Passed: true}
	}

	var score float64
	for _, p := range injectionPatterns {
		if p.re.MatchString(text) {
			score += p.weight
		}
	}
	if score > 1 {
		score = 1
	}

	return Screening{Passed: score < c.RiskThreshold, RiskScore: score}
}
