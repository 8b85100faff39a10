package fitter

import (
	"math"
	"sort"

	"rsz/internal/model"
)

// minColorErr keeps weights finite for sources reported with zero color
// error.
const minColorErr = 1e-3

// fixedSlopeFit fits only the intercept (color at the reference magnitude)
// with the slope held to the model value, weighting by inverse color
// variance.
func fixedSlopeFit(members []model.MemberCandidate, refMag, slope float64) model.LinearFit {
	var sw, swy float64
	for _, m := range members {
		w := weight(m.ColorErr)
		sw += w
		swy += w * (m.Color - slope*(m.Mag-refMag))
	}
	fit := model.LinearFit{Slope: slope}
	if sw > 0 {
		fit.Intercept = swy / sw
		fit.InterceptErr = math.Sqrt(1 / sw)
	}
	fit.Scatter = scatter(members, refMag, fit)
	if n := float64(len(members)); n > 1 {
		if se := fit.Scatter / math.Sqrt(n); se > fit.InterceptErr {
			fit.InterceptErr = se
		}
	}
	return fit
}

// weightedLineFit fits intercept and slope by weighted least squares.
// fallbackSlope is used when the magnitudes are degenerate (all equal).
func weightedLineFit(members []model.MemberCandidate, refMag, fallbackSlope float64) model.LinearFit {
	var sw, sx, sy, sxx, sxy float64
	for _, m := range members {
		w := weight(m.ColorErr)
		x := m.Mag - refMag
		sw += w
		sx += w * x
		sy += w * m.Color
		sxx += w * x * x
		sxy += w * x * m.Color
	}
	delta := sw*sxx - sx*sx
	if delta <= 1e-12 {
		return fixedSlopeFit(members, refMag, fallbackSlope)
	}
	fit := model.LinearFit{
		Intercept:    (sxx*sy - sx*sxy) / delta,
		Slope:        (sw*sxy - sx*sy) / delta,
		InterceptErr: math.Sqrt(sxx / delta),
	}
	fit.Scatter = scatter(members, refMag, fit)
	return fit
}

func scatter(members []model.MemberCandidate, refMag float64, fit model.LinearFit) float64 {
	if len(members) < 2 {
		return 0
	}
	var ss float64
	for _, m := range members {
		r := fit.Residual(m.Mag-refMag, m.Color)
		ss += r * r
	}
	return math.Sqrt(ss / float64(len(members)-1))
}

func weight(colorErr float64) float64 {
	if colorErr < minColorErr {
		colorErr = minColorErr
	}
	return 1 / (colorErr * colorErr)
}

func medianDist(cands []model.MemberCandidate) float64 {
	if len(cands) == 0 {
		return 0
	}
	d := make([]float64, len(cands))
	for i, c := range cands {
		d[i] = c.Dist
	}
	sort.Float64s(d)
	n := len(d)
	if n%2 == 1 {
		return d[n/2]
	}
	return (d[n/2-1] + d[n/2]) / 2
}
