// Package linematch aligns the lines of two documents without relying on
// their position.
//
// Every source line is scored against every target line with
// [similarity.Score]. The default [Greedy] strategy keeps the best-scoring
// target for each source line, preferring the earliest target on ties, and
// lets one target serve many source lines. [Exclusive] assigns each target at
// most once.
package linematch

import (
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"doccompare/internal/domain"
	"doccompare/internal/similarity"
)

// Config is passed to a Strategy for one comparison.
type Config struct {
	Threshold  int
	Workers    int
	IgnoreCase bool
}

// Strategy pairs source lines with target lines. Pair must return exactly
// one LineMatch per source line, in source order.
type Strategy interface {
	Pair(source, target []string, cfg Config) []domain.LineMatch
}

// Options configures Compare.
type Options struct {
	// Threshold is the minimum score for a matched line, 0..100.
	Threshold int
	// Workers bounds the number of concurrent scoring goroutines. Zero or
	// less means GOMAXPROCS.
	Workers int
	// Strategy defaults to Greedy.
	Strategy Strategy
	// IgnoreCase scores lower-cased lines. Reported lines keep their case.
	IgnoreCase bool
}

// DefaultOptions returns threshold 80 with the greedy strategy.
func DefaultOptions() Options {
	return Options{Threshold: domain.DefaultThreshold, Strategy: Greedy{}}
}

// Compare classifies every line of source as matched or unmatched against
// target. A line is matched when it has a target and its score reaches the
// threshold; unmatched lines keep their score but drop the target.
func Compare(source, target []string, opts Options) (domain.LineComparison, error) {
	if opts.Threshold < 0 || opts.Threshold > 100 {
		return domain.LineComparison{}, fmt.Errorf("%w: got %d", domain.ErrInvalidThreshold, opts.Threshold)
	}
	strategy := opts.Strategy
	if strategy == nil {
		strategy = Greedy{}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	result := domain.LineComparison{
		Matched:   []domain.LineMatch{},
		Unmatched: []domain.LineMatch{},
	}
	if len(source) == 0 {
		return result, nil
	}

	pairs := strategy.Pair(source, target, Config{
		Threshold:  opts.Threshold,
		Workers:    workers,
		IgnoreCase: opts.IgnoreCase,
	})
	for _, p := range pairs {
		if p.Target != nil && p.Score >= opts.Threshold {
			result.Matched = append(result.Matched, p)
			continue
		}
		p.Target = nil
		result.Unmatched = append(result.Unmatched, p)
	}
	return result, nil
}

// Greedy picks the best target for each source line independently.
type Greedy struct{}

// Pair implements Strategy.
func (Greedy) Pair(source, target []string, cfg Config) []domain.LineMatch {
	out := make([]domain.LineMatch, len(source))
	if len(target) == 0 {
		for i, s := range source {
			out[i] = domain.LineMatch{Source: s}
		}
		return out
	}

	targets := splitAll(target, cfg)
	forEachChunk(len(source), cfg.Workers, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			src := scoringRunes(source[i], cfg)
			j, score := best(src, targets)
			out[i] = domain.LineMatch{Source: source[i], Target: &target[j], Score: score}
		}
	})
	return out
}

// best returns the index and score of the highest-scoring target, the
// earliest one on ties. targets must not be empty.
func best(src similarity.Runes, targets []similarity.Runes) (int, int) {
	bestIdx, bestScore := -1, -1
	for j, t := range targets {
		// Rounding is monotonic, so a candidate whose bound does not exceed
		// the current best can neither beat nor displace it.
		if bestIdx >= 0 && similarity.BoundScore(src.Len(), t.Len()) <= bestScore {
			continue
		}
		if s := similarity.ScoreRunes(src, t); s > bestScore {
			bestIdx, bestScore = j, s
			if s == 100 {
				break
			}
		}
	}
	return bestIdx, bestScore
}

func splitAll(lines []string, cfg Config) []similarity.Runes {
	out := make([]similarity.Runes, len(lines))
	for i, l := range lines {
		out[i] = scoringRunes(l, cfg)
	}
	return out
}

func scoringRunes(line string, cfg Config) similarity.Runes {
	if cfg.IgnoreCase {
		line = strings.ToLower(line)
	}
	return similarity.NewRunes(line)
}

// forEachChunk splits [0, n) into contiguous chunks and runs fn on them with
// at most workers goroutines. Each chunk writes only its own indices.
func forEachChunk(n, workers int, fn func(lo, hi int)) {
	if workers <= 1 || n < 2 {
		fn(0, n)
		return
	}
	chunk := (n + workers*4 - 1) / (workers * 4)
	var g errgroup.Group
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
