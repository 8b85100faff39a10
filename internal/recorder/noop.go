package recorder

import "rsz/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCluster(_ *ClusterRecord) error { return nil }
func (n *NoopRecorder) RecordResult(_ *ResultRecord) error   { return nil }
func (n *NoopRecorder) RecordIterations(_, _ string, _ []model.IterationSnapshot) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
