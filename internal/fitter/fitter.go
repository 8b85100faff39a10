// Package fitter implements the iterative red-sequence fitting engine.
package fitter

import (
	"rsz/internal/model"
)

// Options controls one fitting run. Radii are in arcminutes, magnitude
// offsets are relative to the model's reference magnitude.
type Options struct {
	InitialRadius      float64
	FinalRadius        float64
	BrightOffset       float64
	InitialFaintOffset float64
	FinalFaintOffset   float64
	ClipSigma          float64
	ScatterFloor       float64 // lower bound on the clip width scale
	MaxIterations      int
	NarrowSteps        int // iterations over which the window narrows
	MinMembers         int
	FreeSlope          bool // fit the slope instead of fixing it to the model
}

// Fitter fits a linear color-magnitude relation with sigma-clipped
// membership selection. It holds no per-run state and is safe to reuse
// across clusters and combinations.
type Fitter struct {
	opt Options
}

// New creates a Fitter.
func New(opt Options) *Fitter {
	return &Fitter{opt: opt}
}

// run is the workspace for a single band combination's fit. It owns the
// evolving member set for the duration of the run and is discarded after.
type run struct {
	opt           Options
	slope, refMag float64

	pool    []model.MemberCandidate
	members []model.MemberCandidate
	fit     model.LinearFit

	iterations []model.IterationSnapshot
	converged  bool
	degenerate bool
}

// Fit runs the fit-clip loop to convergence for one band combination.
// slope and refMag come from the combination's model grid; slope is held
// fixed unless Options.FreeSlope is set. The procedure is deterministic:
// identical inputs always produce identical results.
func (f *Fitter) Fit(combo model.BandCombination, cands []model.MemberCandidate, slope, refMag float64) *model.FitResult {
	r := &run{opt: f.opt, slope: slope, refMag: refMag}

	// generous initial pool: everything inside the widest spatial and
	// magnitude window
	for _, c := range cands {
		if c.Dist <= f.opt.InitialRadius &&
			c.Mag >= refMag-f.opt.BrightOffset &&
			c.Mag <= refMag+f.opt.InitialFaintOffset {
			r.pool = append(r.pool, c)
		}
	}
	r.members = r.pool

	if len(r.members) < f.opt.MinMembers {
		r.degenerate = true
		if len(r.members) > 0 {
			r.fit = r.solve(r.members)
		}
		return r.result(combo)
	}

	for it := 1; it <= f.opt.MaxIterations; it++ {
		r.fit = r.solve(r.members)
		radius, faint := r.window(it)
		next := r.clip(radius, faint)

		r.iterations = append(r.iterations, model.IterationSnapshot{
			Iteration: it,
			Members:   len(r.members),
			Fit:       r.fit,
			Radius:    radius,
			FaintCut:  r.refMag + faint,
		})

		if len(next) < f.opt.MinMembers {
			// clipping collapsed the member set; keep the last
			// non-degenerate fit as a best effort
			r.degenerate = true
			break
		}
		if it > f.opt.NarrowSteps && sameMembers(next, r.members) {
			r.members = next
			r.converged = true
			break
		}
		r.members = next
	}

	if len(r.members) >= 2 {
		r.fit = r.solve(r.members)
	}
	return r.result(combo)
}

// window returns the clipping radius and faint offset for an iteration,
// narrowing linearly from the initial to the final window over the first
// NarrowSteps iterations.
func (r *run) window(it int) (radius, faint float64) {
	frac := float64(it) / float64(r.opt.NarrowSteps)
	if frac > 1 {
		frac = 1
	}
	radius = r.opt.InitialRadius + (r.opt.FinalRadius-r.opt.InitialRadius)*frac
	faint = r.opt.InitialFaintOffset + (r.opt.FinalFaintOffset-r.opt.InitialFaintOffset)*frac
	return radius, faint
}

// clip reselects membership from the pool: inside the current spatial and
// magnitude window and within the sigma-clipping band around the fit.
func (r *run) clip(radius, faint float64) []model.MemberCandidate {
	width := r.opt.ClipSigma * clipScale(r.fit.Scatter, r.opt.ScatterFloor)
	var next []model.MemberCandidate
	for _, c := range r.pool {
		if c.Dist > radius {
			continue
		}
		if c.Mag < r.refMag-r.opt.BrightOffset || c.Mag > r.refMag+faint {
			continue
		}
		resid := r.fit.Residual(c.Mag-r.refMag, c.Color)
		if resid < -width || resid > width {
			continue
		}
		next = append(next, c)
	}
	return next
}

func (r *run) solve(members []model.MemberCandidate) model.LinearFit {
	if r.opt.FreeSlope {
		return weightedLineFit(members, r.refMag, r.slope)
	}
	return fixedSlopeFit(members, r.refMag, r.slope)
}

func (r *run) result(combo model.BandCombination) *model.FitResult {
	return &model.FitResult{
		Combination: combo,
		Fit:         r.fit,
		Members:     r.members,
		Pool:        r.pool,
		Iterations:  r.iterations,
		Converged:   r.converged,
		Degenerate:  r.degenerate,
	}
}

func clipScale(scatter, floor float64) float64 {
	if scatter < floor {
		return floor
	}
	return scatter
}

// sameMembers reports whether two member sets drawn from the same pool are
// identical. Pool order is preserved by clipping, so index-wise comparison
// suffices.
func sameMembers(a, b []model.MemberCandidate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Index != b[i].Index {
			return false
		}
	}
	return true
}
