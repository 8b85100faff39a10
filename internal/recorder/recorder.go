package recorder

import "rsz/internal/model"

// ClusterRecord holds the per-cluster output row.
type ClusterRecord struct {
	Name          string
	RA            float64
	Dec           float64
	CenterLocated bool // center was computed, not supplied
	Interesting   bool
}

// ResultRecord holds one band combination's fitted redshift. Flags is the
// legacy bitmask form.
type ResultRecord struct {
	Cluster     string
	Combination string
	Z           float64
	ZUpperErr   float64
	ZLowerErr   float64
	Flags       int
	Members     int
	Scatter     float64
}

// Recorder persists fitting output for later analysis.
type Recorder interface {
	RecordCluster(rec *ClusterRecord) error
	RecordResult(rec *ResultRecord) error
	RecordIterations(cluster, combination string, iters []model.IterationSnapshot) error
	Close() error
}
