// Package similarity scores how close two strings are.
//
// The ratio is 2*M/T, where M is the length of the longest common rune
// subsequence of a and b and T is the total rune count of both strings. M
// comes from an optimal znkr.io/diff edit script. Comparison is
// case-sensitive.
package similarity

import (
	"math"

	"znkr.io/diff"
)

// Ratio returns the similarity of a and b in [0, 1]. Identical strings,
// including two empty strings, score 1; an empty string against a non-empty
// one scores 0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return ratio(ra, rb)
}

func ratio(ra, rb []rune) float64 {
	var matches int
	for _, e := range diff.Edits(ra, rb, diff.Optimal()) {
		if e.Op == diff.Match {
			matches++
		}
	}
	return 2 * float64(matches) / float64(len(ra)+len(rb))
}

// Score returns Ratio scaled to 0..100 and rounded half to even.
func Score(a, b string) int {
	return int(math.RoundToEven(Ratio(a, b) * 100))
}

// Percent returns Ratio scaled to 0..100 and rounded to two decimals.
func Percent(a, b string) float64 {
	return math.Round(Ratio(a, b)*10000) / 100
}

// UpperBound is the highest ratio any pair of strings with la and lb runes
// can reach. It is used to skip candidates that cannot win.
func UpperBound(la, lb int) float64 {
	if la+lb == 0 {
		return 1
	}
	return 2 * float64(min(la, lb)) / float64(la+lb)
}

// BoundScore is UpperBound scaled and rounded like Score.
func BoundScore(la, lb int) int {
	return int(math.RoundToEven(UpperBound(la, lb) * 100))
}

// Runes holds a pre-split string so repeated scoring against many candidates
// does not convert it again.
type Runes struct {
	s string
	r []rune
}

// NewRunes splits s into runes once.
func NewRunes(s string) Runes {
	return Runes{s: s, r: []rune(s)}
}

// Len returns the rune count.
func (r Runes) Len() int { return len(r.r) }

// String returns the original string.
func (r Runes) String() string { return r.s }

// ScoreRunes is Score over pre-split strings.
func ScoreRunes(a, b Runes) int {
	if a.s == b.s {
		return 100
	}
	if len(a.r) == 0 || len(b.r) == 0 {
		return 0
	}
	return int(math.RoundToEven(ratio(a.r, b.r) * 100))
}
