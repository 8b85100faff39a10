// Package photometry converts raw catalog photometry into AB magnitudes.
package photometry

import (
	"errors"
	"math"
	"sort"

	"rsz/internal/config"
	"rsz/internal/model"
	"rsz/internal/resource"
)

// ErrInvalidPhotometry marks a measurement that cannot be calibrated,
// e.g. a non-positive flux. Such measurements are excluded from fitting;
// they are never fatal to the run.
var ErrInvalidPhotometry = errors.New("invalid photometry")

// pogson is the magnitude error per unit relative flux error, 2.5/ln(10).
const pogson = 2.5 / math.Ln10

// FluxToMag converts an instrumental flux and its error to an AB magnitude
// via mag = -2.5*log10(flux) + zeropoint. The error propagates through the
// logarithmic derivative.
func FluxToMag(flux, fluxErr, zeropoint float64) (model.Magnitude, error) {
	if flux <= 0 {
		return model.Magnitude{}, ErrInvalidPhotometry
	}
	return model.Magnitude{
		Value: -2.5*math.Log10(flux) + zeropoint,
		Error: pogson * fluxErr / flux,
	}, nil
}

// MagToFlux inverts FluxToMag, recovering the instrumental flux.
func MagToFlux(mag, zeropoint float64) float64 {
	return math.Pow(10, (zeropoint-mag)/2.5)
}

// VegaToAB converts a Vega magnitude to AB given the band offset, where
// Vega = AB + offset.
func VegaToAB(vega, offset float64) float64 {
	return vega - offset
}

// NormalizeCatalog converts a raw catalog into AB-magnitude form. Invalid
// measurements are dropped from the affected source; dropped is the number
// of measurements excluded this way, surfaced only as an aggregate count.
func NormalizeCatalog(cfg *config.Config, lib *resource.Library, raw *model.RawCatalog) (*model.Catalog, int) {
	cat := &model.Catalog{Name: raw.Name}
	dropped := 0
	bandSet := make(map[string]bool)

	for _, rs := range raw.Sources {
		src := model.Source{
			RA:   rs.RA,
			Dec:  rs.Dec,
			Dist: rs.Dist,
			Mags: make(map[string]model.Magnitude, len(rs.Phot)),
		}
		if rs.HasDist {
			cat.HasDist = true
		}
		for band, p := range rs.Phot {
			mag, ok := normalize(cfg, lib, band, p)
			if !ok {
				dropped++
				continue
			}
			src.Mags[band] = mag
			bandSet[band] = true
		}
		cat.Sources = append(cat.Sources, src)
	}

	for band := range bandSet {
		cat.Bands = append(cat.Bands, band)
	}
	sort.Strings(cat.Bands)
	return cat, dropped
}

func normalize(cfg *config.Config, lib *resource.Library, band string, p model.RawPhot) (model.Magnitude, bool) {
	magErr := p.Error
	if !p.HasError {
		magErr = cfg.Photometry.DefaultMagError
	}

	if cfg.Photometry.Mode == config.ModeFlux {
		fluxErr := p.Error
		if !p.HasError {
			fluxErr = 0
		}
		mag, err := FluxToMag(p.Value, fluxErr, cfg.Photometry.Zeropoint)
		if err != nil {
			return model.Magnitude{}, false
		}
		if !p.HasError {
			mag.Error = cfg.Photometry.DefaultMagError
		}
		return mag, true
	}

	mag := model.Magnitude{Value: p.Value, Error: magErr}
	if cfg.Photometry.System == config.SystemVega {
		offset, ok := lib.VegaOffset(band)
		if !ok {
			// no calibration for this band, exclude the measurement
			return model.Magnitude{}, false
		}
		mag.Value = VegaToAB(mag.Value, offset)
	}
	return mag, true
}
