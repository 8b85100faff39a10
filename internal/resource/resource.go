package resource

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"rsz/internal/model"
)

// ModelPoint anchors the red-sequence line at one redshift: the line passes
// through (MagPoint, ColorPoint) with the model slope.
type ModelPoint struct {
	Z          float64 `yaml:"z"`
	MagPoint   float64 `yaml:"mag_point"`
	ColorPoint float64 `yaml:"color_point"`
}

// RSModel is the precomputed red-sequence model grid for one band
// combination. Points are sorted by increasing redshift and the color at
// the reference magnitude increases monotonically with redshift.
type RSModel struct {
	Slope        float64      `yaml:"slope"`
	ReferenceMag float64      `yaml:"reference_mag"`
	Points       []ModelPoint `yaml:"points"`
}

// ColorAtRef returns the model color at the reference magnitude for grid
// point i.
func (m *RSModel) ColorAtRef(i int) float64 {
	p := m.Points[i]
	return p.ColorPoint + m.Slope*(m.ReferenceMag-p.MagPoint)
}

// Library is the static filter-pair and model resource, read-only after
// load and safe to share across clusters.
type Library struct {
	VegaOffsets  map[string]float64  `yaml:"vega_offsets"` // Vega = AB + offset
	Combinations map[string]*RSModel `yaml:"combinations"`
}

// Load reads and validates the model library from a YAML file. A failure
// here is fatal to the run.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model library: %w", err)
	}
	lib := &Library{}
	if err := yaml.Unmarshal(data, lib); err != nil {
		return nil, fmt.Errorf("parse model library: %w", err)
	}
	if len(lib.Combinations) == 0 {
		return nil, fmt.Errorf("model library %s defines no band combinations", path)
	}
	for name, m := range lib.Combinations {
		if len(m.Points) < 2 {
			return nil, fmt.Errorf("combination %s: need at least 2 model points", name)
		}
		for i := 1; i < len(m.Points); i++ {
			if m.Points[i].Z <= m.Points[i-1].Z {
				return nil, fmt.Errorf("combination %s: model points not sorted by redshift", name)
			}
			if m.ColorAtRef(i) <= m.ColorAtRef(i-1) {
				return nil, fmt.Errorf("combination %s: model color not monotonic in redshift", name)
			}
		}
	}
	return lib, nil
}

// Fitable reports whether a band-pair name has a model grid.
func (l *Library) Fitable(name string) bool {
	_, ok := l.Combinations[name]
	return ok
}

// Model returns the model grid for a band-pair name.
func (l *Library) Model(name string) (*RSModel, bool) {
	m, ok := l.Combinations[name]
	return m, ok
}

// VegaOffset returns the AB-to-Vega offset for a band.
func (l *Library) VegaOffset(band string) (float64, bool) {
	o, ok := l.VegaOffsets[band]
	return o, ok
}

// SelectCombinations returns the ordered band pairs from the given band set
// that have a model grid. Only pairs explicitly present in the library are
// returned; the result is sorted by name so it is independent of input
// ordering.
func (l *Library) SelectCombinations(bands []string) []model.BandCombination {
	var combos []model.BandCombination
	for _, blue := range bands {
		for _, red := range bands {
			if blue == red {
				continue
			}
			c := model.BandCombination{Blue: blue, Red: red}
			if l.Fitable(c.Name()) {
				combos = append(combos, c)
			}
		}
	}
	sort.Slice(combos, func(i, j int) bool {
		return combos[i].Name() < combos[j].Name()
	})
	return combos
}
