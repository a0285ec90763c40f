// Package match scores candidate listings against a free-text query and
// selects the best match above a confidence floor.
package match

import (
	"strings"

	"github.com/Khootz/FYP2026/internal/openrice"
)

// DefaultFloor is the minimum score a candidate needs to be accepted. It
// equals the rule-5 fallback score on purpose: a search that returned
// something, even with zero token overlap, is still usable as a last-resort
// match.
const DefaultFloor = 0.3

// Result pairs a candidate with its confidence score in [0, 1].
type Result struct {
	Candidate  openrice.Candidate
	Confidence float64
}

// Score rates how likely candidateName names the same restaurant as query.
// Rules apply in order, first hit wins:
//
//	1. exact equality (case/whitespace-insensitive)      -> 1.0
//	2. query contained in candidate                      -> 0.9
//	3. candidate contained in query                      -> 0.85
//	4. token-set overlap: 0.5 + 0.4 * |I| / |U|
//	5. no containment, no shared tokens                  -> 0.3
func Score(query, candidateName string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	c := strings.ToLower(strings.TrimSpace(candidateName))

	if q == c {
		return 1.0
	}
	if q != "" && strings.Contains(c, q) {
		return 0.9
	}
	if c != "" && strings.Contains(q, c) {
		return 0.85
	}

	qWords := tokenSet(q)
	cWords := tokenSet(c)

	intersection := 0
	for w := range qWords {
		if _, ok := cWords[w]; ok {
			intersection++
		}
	}
	union := len(qWords) + len(cWords) - intersection
	if union > 0 {
		return 0.5 + 0.4*float64(intersection)/float64(union)
	}
	return 0.3
}

// Resolve scores every candidate and returns the best one when its score
// meets the floor (greater-or-equal: rule 5 produces exactly the floor and
// must remain usable). Ties are broken by listing order, first encountered
// wins; the comparison is strictly-greater so an equal later score never
// displaces an earlier candidate. An empty candidate list is never a match.
func Resolve(query string, candidates []openrice.Candidate, floor float64) (Result, bool) {
	var best Result
	for _, c := range candidates {
		score := Score(query, c.Name)
		if score > best.Confidence {
			best = Result{Candidate: c, Confidence: score}
		}
	}
	if best.Confidence > 0 && best.Confidence >= floor {
		return best, true
	}
	return Result{Confidence: best.Confidence}, false
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
