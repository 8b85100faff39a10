package fitter

import (
	"math"

	"rsz/internal/model"
)

// FlagOptions sets the thresholds for the quality diagnostics.
type FlagOptions struct {
	MaxScatter   float64 // indistinct above this member scatter
	WeakRatio    float64 // member/pool median distance ratio limit
	MinMembers   int
	ScatterFloor float64 // histogram bin width scale floor
}

// minPeakCount is the smallest residual-histogram bin population that can
// count as a peak in the bimodality test.
const minPeakCount = 3

// EvaluateFlags classifies quality issues of a finished fit. Each
// diagnostic sets its bit independently; several may co-occur.
func EvaluateFlags(res *model.FitResult, refMag float64, opt FlagOptions) model.Flags {
	var f model.Flags

	// indistinct sequence: degenerate clip, too few survivors, or scatter
	// beyond what a real red sequence shows
	if res.Degenerate || len(res.Members) < opt.MinMembers || res.Fit.Scatter > opt.MaxScatter {
		f.Indistinct = true
	}

	// weak clustering: final members must be significantly more
	// concentrated toward the center than the candidate pool
	if len(res.Members) == 0 || len(res.Pool) == 0 {
		f.WeakClustering = true
	} else if medianDist(res.Members) > opt.WeakRatio*medianDist(res.Pool) {
		f.WeakClustering = true
	}

	if bimodal(res, refMag, opt.ScatterFloor) {
		f.DoubleSequence = true
	}
	return f
}

// bimodal runs a two-peak test on the histogram of pool residuals about
// the final fit. Bins are one clip scale wide spanning +-4 scales; two
// local maxima of comparable height separated by a valley at most half the
// smaller peak indicate a possible second red sequence.
func bimodal(res *model.FitResult, refMag, scatterFloor float64) bool {
	w := clipScale(res.Fit.Scatter, scatterFloor)
	const nbins = 8
	var counts [nbins]int
	for _, c := range res.Pool {
		r := res.Fit.Residual(c.Mag-refMag, c.Color)
		// floor, not truncation: residuals in (-5w, -4w) must fall out the
		// bottom of the span, not collapse into bin 0
		bin := int(math.Floor((r + 4*w) / w))
		if bin < 0 || bin >= nbins {
			continue
		}
		counts[bin]++
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	threshold := max / 2
	if threshold < minPeakCount {
		threshold = minPeakCount
	}

	var peaks []int
	for i, n := range counts {
		if n < threshold {
			continue
		}
		if i > 0 && counts[i-1] > n {
			continue
		}
		if i < nbins-1 && counts[i+1] > n {
			continue
		}
		peaks = append(peaks, i)
	}

	for a := 0; a < len(peaks); a++ {
		for b := a + 1; b < len(peaks); b++ {
			lo, hi := peaks[a], peaks[b]
			if hi-lo < 2 {
				continue
			}
			valley := counts[lo+1]
			for i := lo + 1; i < hi; i++ {
				if counts[i] < valley {
					valley = counts[i]
				}
			}
			smaller := counts[lo]
			if counts[hi] < smaller {
				smaller = counts[hi]
			}
			if valley*2 <= smaller {
				return true
			}
		}
	}
	return false
}
