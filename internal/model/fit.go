package model

// MemberCandidate is a source projected onto one color axis. Candidates are
// built fresh per band combination and discarded after fitting.
type MemberCandidate struct {
	Index    int     // position in the catalog's source list
	RA       float64 // degrees
	Dec      float64 // degrees
	Dist     float64 // arcminutes from the cluster center
	Mag      float64 // red-band AB magnitude
	Color    float64 // blue minus red AB magnitude
	ColorErr float64
}

// LinearFit is a color-magnitude relation: color at the reference magnitude
// plus a slope in color per magnitude.
type LinearFit struct {
	Intercept    float64 // color at the reference magnitude
	InterceptErr float64
	Slope        float64
	Scatter      float64 // standard deviation of member residuals
}

// Residual returns the color offset of a candidate from the fit.
// dmag is the candidate magnitude minus the reference magnitude.
func (f LinearFit) Residual(dmag, color float64) float64 {
	return color - (f.Intercept + f.Slope*dmag)
}

// IterationSnapshot captures the fit state after one fit-and-clip pass,
// kept so the iteration history is inspectable.
type IterationSnapshot struct {
	Iteration int
	Members   int
	Fit       LinearFit
	Radius    float64 // clipping radius in arcminutes
	FaintCut  float64 // faint magnitude limit applied
}

// FitResult is the terminal state of one band combination's fitting run.
type FitResult struct {
	Combination BandCombination
	Fit         LinearFit
	Members     []MemberCandidate
	Pool        []MemberCandidate // initial candidate pool, for diagnostics
	Iterations  []IterationSnapshot
	Converged   bool
	Degenerate  bool // clipping emptied the member set; best-effort fit
}
