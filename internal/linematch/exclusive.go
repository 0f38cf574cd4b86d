package linematch

import (
	"cmp"
	"slices"

	"doccompare/internal/domain"
	"doccompare/internal/similarity"
)

// Exclusive assigns each target line to at most one source line. Candidate
// pairs at or above the threshold are taken highest score first, ties broken
// by source order and then target order. Source lines left without a target
// report their best score against any target and no target.
type Exclusive struct{}

type candidate struct {
	score, src, dst int
}

// Pair implements Strategy.
func (Exclusive) Pair(source, target []string, cfg Config) []domain.LineMatch {
	out := make([]domain.LineMatch, len(source))
	for i, s := range source {
		out[i] = domain.LineMatch{Source: s}
	}
	if len(target) == 0 {
		return out
	}

	targets := splitAll(target, cfg)
	scores := make([][]int, len(source))
	forEachChunk(len(source), cfg.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			src := scoringRunes(source[i], cfg)
			row := make([]int, len(targets))
			for j, t := range targets {
				row[j] = similarity.ScoreRunes(src, t)
			}
			scores[i] = row
		}
	})

	var cands []candidate
	for i, row := range scores {
		for j, s := range row {
			out[i].Score = max(out[i].Score, s)
			if s >= cfg.Threshold {
				cands = append(cands, candidate{score: s, src: i, dst: j})
			}
		}
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.src, b.src); c != 0 {
			return c
		}
		return cmp.Compare(a.dst, b.dst)
	})

	srcUsed := make([]bool, len(source))
	dstUsed := make([]bool, len(target))
	for _, c := range cands {
		if srcUsed[c.src] || dstUsed[c.dst] {
			continue
		}
		srcUsed[c.src], dstUsed[c.dst] = true, true
		out[c.src].Target = &target[c.dst]
		out[c.src].Score = c.score
	}
	return out
}
