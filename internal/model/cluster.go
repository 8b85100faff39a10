package model

// BandCombination identifies the band pair forming one color axis.
// Color is always blue-band magnitude minus red-band magnitude.
type BandCombination struct {
	Blue string
	Red  string
}

// Name returns the combination key used in the model library and in output,
// e.g. "sloan_g-sloan_r".
func (c BandCombination) Name() string { return c.Blue + "-" + c.Red }

// RedshiftEstimate is the fitted redshift for one band combination with
// asymmetric 1-sigma errors. Immutable once produced.
type RedshiftEstimate struct {
	Value     float64
	UpperErr  float64
	LowerErr  float64
}

// Flags records the quality diagnostics for one band combination's fit.
// Serialized to the legacy bitmask only at the output boundary.
type Flags struct {
	WeakClustering bool // members not concentrated toward the center
	DoubleSequence bool // residual distribution looks bimodal
	Indistinct     bool // scatter too large or too few members
	UserRejected   bool // flagged bad in interactive mode
}

// Legacy bitmask values, summed in output.
const (
	FlagWeakClustering = 1
	FlagDoubleSequence = 2
	FlagIndistinct     = 4
	FlagUserRejected   = 8
)

// Bitmask serializes the flags to the legacy sum-of-powers-of-two form.
func (f Flags) Bitmask() int {
	mask := 0
	if f.WeakClustering {
		mask |= FlagWeakClustering
	}
	if f.DoubleSequence {
		mask |= FlagDoubleSequence
	}
	if f.Indistinct {
		mask |= FlagIndistinct
	}
	if f.UserRejected {
		mask |= FlagUserRejected
	}
	return mask
}

// Cluster is the per-catalog output record, populated incrementally as each
// band combination is processed and handed to the recorder afterward.
type Cluster struct {
	Name          string
	RA            float64
	Dec           float64
	CenterLocated bool // center was computed rather than supplied
	Estimates     map[string]RedshiftEstimate // keyed by combination name
	Flags         map[string]Flags            // keyed by combination name
	Interesting   bool // interactive-mode annotation
}
