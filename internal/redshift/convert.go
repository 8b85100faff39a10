// Package redshift maps fitted red-sequence colors to redshift estimates.
package redshift

import (
	"errors"
	"sort"

	"rsz/internal/model"
	"rsz/internal/resource"
)

// ErrRedshiftOutOfRange is returned when a fitted color lies outside the
// model's tabulated range. The combination is then excluded from the
// cluster's result mapping; the cluster itself proceeds.
var ErrRedshiftOutOfRange = errors.New("fitted color outside model range")

// Convert inverts the model's monotonic color-redshift curve at the fitted
// color and propagates the color uncertainty through the local slope on
// each side. The curve need not be locally symmetric, so the errors are
// asymmetric: the upper error follows the curve toward increasing
// redshift, the lower toward decreasing.
func Convert(color, colorErr float64, m *resource.RSModel) (model.RedshiftEstimate, error) {
	colors := make([]float64, len(m.Points))
	for i := range m.Points {
		colors[i] = m.ColorAtRef(i)
	}

	if color < colors[0] || color > colors[len(colors)-1] {
		return model.RedshiftEstimate{}, ErrRedshiftOutOfRange
	}

	z := invert(colors, m.Points, color)
	zHi := invert(colors, m.Points, clamp(color+colorErr, colors))
	zLo := invert(colors, m.Points, clamp(color-colorErr, colors))

	return model.RedshiftEstimate{
		Value:    z,
		UpperErr: zHi - z,
		LowerErr: z - zLo,
	}, nil
}

// invert interpolates the redshift whose model color equals c. c must be
// within the tabulated color range.
func invert(colors []float64, points []resource.ModelPoint, c float64) float64 {
	i := sort.SearchFloat64s(colors, c)
	if i == 0 {
		return points[0].Z
	}
	if i == len(colors) {
		return points[len(points)-1].Z
	}
	c0, c1 := colors[i-1], colors[i]
	z0, z1 := points[i-1].Z, points[i].Z
	return z0 + (z1-z0)*(c-c0)/(c1-c0)
}

func clamp(c float64, colors []float64) float64 {
	if c < colors[0] {
		return colors[0]
	}
	if last := colors[len(colors)-1]; c > last {
		return last
	}
	return c
}
