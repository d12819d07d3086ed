// Package classify scores raw findings with weighted heuristic signals so
// that expected patterns (entry points, framework conventions, build-time
// constants) can be told apart from genuine problems.
package classify

import "math"

// Classification is the verdict for a finding.
type Classification string

const (
	LikelyValid       Classification = "likely-valid"
	LikelyProblematic Classification = "likely-problematic"
)

// String returns the string representation.
func (c Classification) String() string {
	return string(c)
}

// Signal is one independent heuristic. Detect reports whether the signal
// fires for a subject, optionally with a note that can become the
// suggestion text.
type Signal[S any] struct {
	Tag    string
	Weight int
	Detect func(S) (note string, ok bool)
}

// Result is the classification of one finding.
type Result struct {
	Classification Classification `json:"classification" toon:"classification"`
	Score          int            `json:"score" toon:"score"`
	Confidence     float64        `json:"confidence" toon:"confidence"`
	Reasons        []string       `json:"reasons" toon:"reasons"`
	Suggestions    []string       `json:"suggestions,omitempty" toon:"suggestions,omitempty"`
	Suggestion     string         `json:"suggestion" toon:"suggestion"`
}

// HasReason reports whether tag is among the triggered reasons.
func (r Result) HasReason(tag string) bool {
	for _, t := range r.Reasons {
		if t == tag {
			return true
		}
	}
	return false
}

// Evaluate runs every signal against s. The score is the sum of triggered
// weights, so it does not depend on signal order; reasons and notes keep
// signal order.
func Evaluate[S any](signals []Signal[S], s S) Result {
	res := Result{Reasons: []string{}}
	for _, sig := range signals {
		note, ok := sig.Detect(s)
		if !ok {
			continue
		}
		res.Score += sig.Weight
		res.Reasons = append(res.Reasons, sig.Tag)
		if note != "" {
			res.Suggestions = append(res.Suggestions, note)
		}
	}
	res.Classification = Verdict(res.Score)
	res.Confidence = Confidence(res.Score)
	return res
}

// Verdict is likely-valid for a positive score.
func Verdict(score int) Classification {
	if score > 0 {
		return LikelyValid
	}
	return LikelyProblematic
}

// Confidence normalizes |score| into [0, 1], saturating at 10.
func Confidence(score int) float64 {
	return math.Min(math.Abs(float64(score))/10, 1)
}

func fired(b bool) (string, bool) {
	return "", b
}
