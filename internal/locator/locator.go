// Package locator estimates a cluster's angular center from the spatial
// distribution of its brighter sources.
package locator

import (
	"errors"
	"math"

	"rsz/internal/model"
)

// ErrCenterNotFound is returned when too few sources survive candidate
// selection. Callers fall back to the full-catalog centroid.
var ErrCenterNotFound = errors.New("cluster center not found")

// Options controls the iterative centroid search.
type Options struct {
	MagLimit      float64 // candidate cut in the reference band
	InitialRadius float64 // arcminutes
	ShrinkFactor  float64 // per-iteration radius multiplier, in (0,1)
	Tolerance     float64 // arcseconds of centroid motion to stop at
	MaxIterations int
	MinSources    int
}

// AngularDist returns the angular separation of two sky positions in
// degrees, using the flat-sky approximation with the cos(dec) correction.
// Catalogs are assumed not to straddle RA 0/360.
func AngularDist(ra1, dec1, ra2, dec2 float64) float64 {
	dra := (ra1 - ra2) * math.Cos((dec1+dec2)*0.5*math.Pi/180)
	ddec := dec1 - dec2
	return math.Hypot(dra, ddec)
}

// Locate estimates the cluster center from source positions. Candidates
// are sources brighter than the magnitude cut in the given band; the
// centroid is refined by reselecting within a shrinking radius until it
// stabilizes. The procedure is deterministic: the same catalog always
// yields the same center.
func Locate(sources []model.Source, band string, opt Options) (ra, dec float64, err error) {
	var cands []model.Source
	for _, s := range sources {
		m, ok := s.Mags[band]
		if !ok || m.Value > opt.MagLimit {
			continue
		}
		cands = append(cands, s)
	}
	if len(cands) < opt.MinSources {
		return 0, 0, ErrCenterNotFound
	}

	ra, dec = Centroid(cands)
	radius := opt.InitialRadius / 60 // degrees
	tol := opt.Tolerance / 3600      // degrees

	for i := 0; i < opt.MaxIterations; i++ {
		var sel []model.Source
		for _, s := range cands {
			if AngularDist(s.RA, s.Dec, ra, dec) <= radius {
				sel = append(sel, s)
			}
		}
		if len(sel) < opt.MinSources {
			return 0, 0, ErrCenterNotFound
		}
		ra2, dec2 := Centroid(sel)
		moved := AngularDist(ra, dec, ra2, dec2)
		ra, dec = ra2, dec2
		if moved < tol {
			break
		}
		radius *= opt.ShrinkFactor
	}
	return ra, dec, nil
}

// Centroid returns the unweighted mean position of the sources.
func Centroid(sources []model.Source) (ra, dec float64) {
	for _, s := range sources {
		ra += s.RA
		dec += s.Dec
	}
	n := float64(len(sources))
	return ra / n, dec / n
}
