package redshift

import (
	"errors"
	"math"
	"testing"

	"rsz/internal/resource"
)

func testModel() *resource.RSModel {
	return &resource.RSModel{
		Slope:        0,
		ReferenceMag: 20,
		Points: []resource.ModelPoint{
			{Z: 0.10, MagPoint: 20, ColorPoint: 0.50},
			{Z: 0.50, MagPoint: 20, ColorPoint: 1.30},
			{Z: 1.00, MagPoint: 20, ColorPoint: 2.00},
		},
	}
}

func TestConvert_GridPoint(t *testing.T) {
	est, err := Convert(1.30, 0, testModel())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(est.Value-0.5) > 1e-9 {
		t.Errorf("expected z 0.5, got %g", est.Value)
	}
	if est.UpperErr != 0 || est.LowerErr != 0 {
		t.Errorf("zero color error should give zero redshift error, got +%g -%g",
			est.UpperErr, est.LowerErr)
	}
}

func TestConvert_Interpolates(t *testing.T) {
	// halfway in color between the first two grid points
	est, err := Convert(0.90, 0, testModel())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(est.Value-0.30) > 1e-9 {
		t.Errorf("expected z 0.30, got %g", est.Value)
	}
}

func TestConvert_AsymmetricErrors(t *testing.T) {
	// at z=0.5 the curve is steeper below (0.8 color per 0.4 z) than above
	// (0.7 color per 0.5 z), so the upper error exceeds the lower
	est, err := Convert(1.30, 0.10, testModel())
	if err != nil {
		t.Fatal(err)
	}
	wantUpper := 0.10 * 0.5 / 0.7
	wantLower := 0.10 * 0.4 / 0.8
	if math.Abs(est.UpperErr-wantUpper) > 1e-9 {
		t.Errorf("expected upper error %g, got %g", wantUpper, est.UpperErr)
	}
	if math.Abs(est.LowerErr-wantLower) > 1e-9 {
		t.Errorf("expected lower error %g, got %g", wantLower, est.LowerErr)
	}
	if est.UpperErr <= est.LowerErr {
		t.Error("expected asymmetric errors with upper > lower")
	}
}

func TestConvert_ErrorClampedAtGridEdge(t *testing.T) {
	est, err := Convert(1.95, 0.20, testModel())
	if err != nil {
		t.Fatal(err)
	}
	// color+err runs past the grid; the upper error stops at z=1.0
	wantUpper := 1.0 - est.Value
	if math.Abs(est.UpperErr-wantUpper) > 1e-9 {
		t.Errorf("expected clamped upper error %g, got %g", wantUpper, est.UpperErr)
	}
}

func TestConvert_OutOfRange(t *testing.T) {
	for _, color := range []float64{0.40, 2.10} {
		if _, err := Convert(color, 0.05, testModel()); !errors.Is(err, ErrRedshiftOutOfRange) {
			t.Errorf("color %g: expected ErrRedshiftOutOfRange, got %v", color, err)
		}
	}
}

func TestConvert_RangeEndpoints(t *testing.T) {
	lo, err := Convert(0.50, 0, testModel())
	if err != nil {
		t.Fatal(err)
	}
	if lo.Value != 0.10 {
		t.Errorf("expected z 0.10 at the blue end, got %g", lo.Value)
	}
	hi, err := Convert(2.00, 0, testModel())
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(hi.Value-1.00) > 1e-9 {
		t.Errorf("expected z 1.00 at the red end, got %g", hi.Value)
	}
}
