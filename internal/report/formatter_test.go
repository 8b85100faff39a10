package report

import (
	"strings"
	"testing"
	"time"

	"rsz/internal/model"
)

func TestFormatCluster(t *testing.T) {
	c := &model.Cluster{
		Name:          "abell2218",
		RA:            248.95417,
		Dec:           66.21194,
		CenterLocated: true,
		Estimates: map[string]model.RedshiftEstimate{
			"sloan_g-sloan_r": {Value: 0.176, UpperErr: 0.012, LowerErr: 0.009},
		},
		Flags: map[string]model.Flags{
			"sloan_g-sloan_r": {WeakClustering: true},
		},
	}
	fits := map[string]*model.FitResult{
		"sloan_g-sloan_r": {
			Fit:     model.LinearFit{Intercept: 1.32, Scatter: 0.06},
			Members: make([]model.MemberCandidate, 41),
		},
		"sloan_r-sloan_i": {
			Fit: model.LinearFit{Intercept: 2.41},
		},
	}

	out := FormatCluster(c, fits)
	for _, want := range []string{
		"abell2218",
		"[center located]",
		"z=0.176 +0.012 -0.009",
		"members=41",
		"flags=1",
		"no redshift (color 2.410 outside model range)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "marked interesting") {
		t.Error("unannotated cluster should not be marked interesting")
	}

	c.Interesting = true
	if !strings.Contains(FormatCluster(c, fits), "marked interesting") {
		t.Error("expected the interesting annotation")
	}
}

func TestFormatRunSummary(t *testing.T) {
	out := FormatRunSummary(12, 9, 123456, 3*time.Second)
	for _, want := range []string{"12 clusters", "9 with redshifts", "123,456 sources"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q: %s", want, out)
		}
	}
}
