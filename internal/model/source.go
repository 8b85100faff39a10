package model

// Magnitude is a calibrated AB magnitude with its 1-sigma error.
type Magnitude struct {
	Value float64
	Error float64
}

// RawPhot is one uncalibrated photometric measurement as read from a
// catalog column. In flux mode Value is an instrumental flux; in mag mode
// it is a magnitude in the configured system. HasError is false when the
// catalog carries no matching error column.
type RawPhot struct {
	Value    float64
	Error    float64
	HasError bool
}

// RawSource is one detected object as read from a catalog file, before
// photometric normalization.
type RawSource struct {
	RA      float64 // degrees
	Dec     float64 // degrees
	Dist    float64 // arcminutes from the cluster center
	HasDist bool
	Phot    map[string]RawPhot // keyed by band name
}

// RawCatalog is the unprocessed contents of one cluster catalog file.
type RawCatalog struct {
	Name    string
	Columns []string
	Sources []RawSource
}

// Source is a detected object with photometry normalized to AB magnitudes.
type Source struct {
	RA   float64 // degrees
	Dec  float64 // degrees
	Dist float64 // arcminutes from the cluster center
	Mags map[string]Magnitude
}

// Catalog is the normalized source list for one cluster.
type Catalog struct {
	Name    string
	Sources []Source
	Bands   []string // sorted band names with photometry present
	HasDist bool     // center distances were supplied by the catalog
}
