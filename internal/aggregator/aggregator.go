// Package aggregator runs the per-cluster fitting pipeline: photometric
// normalization, band-combination selection, center location, and one
// red-sequence fit per color axis.
package aggregator

import (
	"errors"
	"log"
	"math"

	"rsz/internal/config"
	"rsz/internal/fitter"
	"rsz/internal/locator"
	"rsz/internal/model"
	"rsz/internal/photometry"
	"rsz/internal/redshift"
	"rsz/internal/resource"
)

// ErrNoCombinations means no band pair in the catalog has a model grid;
// the cluster cannot be fit in any color. Recoverable: other clusters
// still process.
var ErrNoCombinations = errors.New("no fitable band combinations")

// FigureSink receives per-combination fit diagnostics for plotting. The
// handoff is one-way; the fitting result never depends on it.
type FigureSink interface {
	EmitFit(cluster string, res *model.FitResult)
}

// NoopFigureSink discards diagnostics.
type NoopFigureSink struct{}

func (NoopFigureSink) EmitFit(string, *model.FitResult) {}

// Aggregator assembles one Cluster record per catalog. It is stateless
// across clusters; all shared resources are read-only.
type Aggregator struct {
	cfg     *config.Config
	lib     *resource.Library
	fit     *fitter.Fitter
	flagOpt fitter.FlagOptions
	figs    FigureSink
}

// New creates an Aggregator. A nil figs defaults to the noop sink.
func New(cfg *config.Config, lib *resource.Library, figs FigureSink) *Aggregator {
	if figs == nil {
		figs = NoopFigureSink{}
	}
	return &Aggregator{
		cfg: cfg,
		lib: lib,
		fit: fitter.New(fitter.Options{
			InitialRadius:      cfg.Fitting.InitialRadius,
			FinalRadius:        cfg.Fitting.FinalRadius,
			BrightOffset:       cfg.Fitting.BrightOffset,
			InitialFaintOffset: cfg.Fitting.InitialFaintOffset,
			FinalFaintOffset:   cfg.Fitting.FinalFaintOffset,
			ClipSigma:          cfg.Fitting.ClipSigma,
			ScatterFloor:       cfg.Fitting.ScatterFloor,
			MaxIterations:      cfg.Fitting.MaxIterations,
			NarrowSteps:        cfg.Fitting.NarrowSteps,
			MinMembers:         cfg.Fitting.MinMembers,
			FreeSlope:          cfg.Fitting.FreeSlope,
		}),
		flagOpt: fitter.FlagOptions{
			MaxScatter:   cfg.Flags.MaxScatter,
			WeakRatio:    cfg.Flags.WeakRatio,
			MinMembers:   cfg.Fitting.MinMembers,
			ScatterFloor: cfg.Fitting.ScatterFloor,
		},
		figs: figs,
	}
}

// Process runs the full pipeline for one catalog and returns the cluster
// record plus the fit results keyed by combination name. Per-combination
// failures are absorbed; only a structurally unfitable catalog returns an
// error.
func (a *Aggregator) Process(raw *model.RawCatalog) (*model.Cluster, map[string]*model.FitResult, error) {
	cat, dropped := photometry.NormalizeCatalog(a.cfg, a.lib, raw)
	if dropped > 0 {
		log.Printf("[INFO] %s: %d invalid measurements excluded", cat.Name, dropped)
	}

	combos := a.lib.SelectCombinations(cat.Bands)
	if len(combos) == 0 {
		return nil, nil, ErrNoCombinations
	}

	cluster := &model.Cluster{
		Name:      cat.Name,
		Estimates: make(map[string]model.RedshiftEstimate),
		Flags:     make(map[string]model.Flags),
	}

	centerFallback := a.setCenter(cluster, cat, combos[0].Red)

	fits := make(map[string]*model.FitResult, len(combos))
	for _, combo := range combos {
		m, _ := a.lib.Model(combo.Name())
		cands := candidates(cat, combo)

		res := a.fit.Fit(combo, cands, m.Slope, m.ReferenceMag)
		fits[combo.Name()] = res
		a.figs.EmitFit(cluster.Name, res)

		flags := fitter.EvaluateFlags(res, m.ReferenceMag, a.flagOpt)
		if centerFallback {
			flags.WeakClustering = true
		}

		est, err := redshift.Convert(res.Fit.Intercept, res.Fit.InterceptErr, m)
		if err != nil {
			log.Printf("[INFO] %s %s: %v, combination excluded",
				cluster.Name, combo.Name(), err)
			continue
		}
		cluster.Estimates[combo.Name()] = est
		cluster.Flags[combo.Name()] = flags
	}
	return cluster, fits, nil
}

// setCenter fills in the cluster position and, when the catalog carries no
// precomputed center distances, locates the center and derives them.
// Returns true when location failed and the full-catalog centroid was used
// as a fallback.
func (a *Aggregator) setCenter(cluster *model.Cluster, cat *model.Catalog, band string) bool {
	if cat.HasDist {
		cluster.RA, cluster.Dec = locator.Centroid(cat.Sources)
		return false
	}

	cluster.CenterLocated = true
	fallback := false
	ra, dec, err := locator.Locate(cat.Sources, band, locator.Options{
		MagLimit:      a.cfg.Locator.MagLimit,
		InitialRadius: a.cfg.Locator.InitialRadius,
		ShrinkFactor:  a.cfg.Locator.ShrinkFactor,
		Tolerance:     a.cfg.Locator.Tolerance,
		MaxIterations: a.cfg.Locator.MaxIterations,
		MinSources:    a.cfg.Locator.MinSources,
	})
	if err != nil {
		log.Printf("[WARN] %s: %v, falling back to catalog centroid", cat.Name, err)
		ra, dec = locator.Centroid(cat.Sources)
		fallback = true
	}
	cluster.RA, cluster.Dec = ra, dec

	for i := range cat.Sources {
		s := &cat.Sources[i]
		s.Dist = locator.AngularDist(s.RA, s.Dec, ra, dec) * 60 // arcmin
	}
	return fallback
}

// candidates projects the catalog onto one color axis. Sources missing
// either band are excluded; color errors add in quadrature.
func candidates(cat *model.Catalog, combo model.BandCombination) []model.MemberCandidate {
	var cands []model.MemberCandidate
	for i, s := range cat.Sources {
		blue, ok := s.Mags[combo.Blue]
		if !ok {
			continue
		}
		red, ok := s.Mags[combo.Red]
		if !ok {
			continue
		}
		cands = append(cands, model.MemberCandidate{
			Index:    i,
			RA:       s.RA,
			Dec:      s.Dec,
			Dist:     s.Dist,
			Mag:      red.Value,
			Color:    blue.Value - red.Value,
			ColorErr: math.Hypot(blue.Error, red.Error),
		})
	}
	return cands
}
