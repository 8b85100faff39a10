package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rsz/internal/aggregator"
	"rsz/internal/catalog"
	"rsz/internal/config"
	"rsz/internal/model"
	"rsz/internal/prompt"
	"rsz/internal/recorder"
	"rsz/internal/resource"
)

type captureRecorder struct {
	clusters []recorder.ClusterRecord
	results  []recorder.ResultRecord
}

func (c *captureRecorder) RecordCluster(rec *recorder.ClusterRecord) error {
	c.clusters = append(c.clusters, *rec)
	return nil
}

func (c *captureRecorder) RecordResult(rec *recorder.ResultRecord) error {
	c.results = append(c.results, *rec)
	return nil
}

func (c *captureRecorder) RecordIterations(_, _ string, _ []model.IterationSnapshot) error {
	return nil
}

func (c *captureRecorder) Close() error { return nil }

func testAggregator(t *testing.T) *aggregator.Aggregator {
	t.Helper()
	cfg, err := config.Load("no-such-file.yaml")
	if err != nil {
		t.Fatal(err)
	}
	lib := &resource.Library{
		Combinations: map[string]*resource.RSModel{
			"sloan_g-sloan_r": {
				Slope:        0,
				ReferenceMag: 20,
				Points: []resource.ModelPoint{
					{Z: 0.10, MagPoint: 20, ColorPoint: 0.50},
					{Z: 0.50, MagPoint: 20, ColorPoint: 1.30},
					{Z: 1.00, MagPoint: 20, ColorPoint: 2.00},
				},
			},
		},
	}
	return aggregator.New(cfg, lib, nil)
}

func fitableCatalog(name string) *model.RawCatalog {
	cat := &model.RawCatalog{Name: name}
	src := func(dist, r, color float64) model.RawSource {
		return model.RawSource{
			RA: 150, Dec: 2.2, Dist: dist, HasDist: true,
			Phot: map[string]model.RawPhot{
				"sloan_g": {Value: r + color, Error: 0.05, HasError: true},
				"sloan_r": {Value: r, Error: 0.05, HasError: true},
			},
		}
	}
	// sequence members at the z=0.5 model color plus distant blue field
	for i := 0; i < 10; i++ {
		cat.Sources = append(cat.Sources, src(1.0, 19+float64(i)*0.05, 1.3))
	}
	for i := 0; i < 20; i++ {
		cat.Sources = append(cat.Sources, src(8.0, 20.5, 0.3))
	}
	return cat
}

func TestRunOnce(t *testing.T) {
	reader := &catalog.MockReader{Catalogs: map[string]*model.RawCatalog{
		"abell1234": fitableCatalog("abell1234"),
		"abell2218": fitableCatalog("abell2218"),
	}}
	rec := &captureRecorder{}
	s := New(context.Background(), reader, testAggregator(t), rec, prompt.NoopPrompt{})

	if err := s.RunOnce(); err != nil {
		t.Fatal(err)
	}
	if len(rec.clusters) != 2 {
		t.Fatalf("expected 2 cluster records, got %d", len(rec.clusters))
	}
	if len(rec.results) != 2 {
		t.Fatalf("expected 2 result records, got %d", len(rec.results))
	}
	for _, r := range rec.results {
		if r.Z < 0.48 || r.Z > 0.52 {
			t.Errorf("%s: expected z near 0.5, got %g", r.Cluster, r.Z)
		}
		if r.Flags != 0 {
			t.Errorf("%s: expected clean flags, got %d", r.Cluster, r.Flags)
		}
	}
}

func TestRunOnce_SkipsProcessed(t *testing.T) {
	reader := &catalog.MockReader{Catalogs: map[string]*model.RawCatalog{
		"abell1234": fitableCatalog("abell1234"),
	}}
	rec := &captureRecorder{}
	s := New(context.Background(), reader, testAggregator(t), rec, prompt.NoopPrompt{})

	if err := s.RunOnce(); err != nil {
		t.Fatal(err)
	}
	if err := s.RunOnce(); err != nil {
		t.Fatal(err)
	}
	if len(rec.clusters) != 1 {
		t.Errorf("rescan must not reprocess a finished cluster, got %d records", len(rec.clusters))
	}
}

// markerPrompt records when the review ran relative to scheduler output.
type markerPrompt struct {
	out *strings.Builder
}

func (p markerPrompt) Review(c *model.Cluster) {
	p.out.WriteString("review:" + c.Name + "\n")
}

func TestRunOnce_ReportShownBeforeReview(t *testing.T) {
	reader := &catalog.MockReader{Catalogs: map[string]*model.RawCatalog{
		"abell1234": fitableCatalog("abell1234"),
	}}
	var out strings.Builder
	s := New(context.Background(), reader, testAggregator(t), &captureRecorder{}, markerPrompt{out: &out})
	s.Out = &out

	if err := s.RunOnce(); err != nil {
		t.Fatal(err)
	}
	report := strings.Index(out.String(), "abell1234  (")
	review := strings.Index(out.String(), "review:abell1234")
	if report == -1 || review == -1 {
		t.Fatalf("missing report or review marker:\n%s", out.String())
	}
	if review < report {
		t.Error("the reviewer must see the cluster report before being asked for a verdict")
	}
}

// flakyReader fails the first Read of every catalog, as a file still being
// written would.
type flakyReader struct {
	catalog.Reader
	fails int
}

func (f *flakyReader) Read(name string) (*model.RawCatalog, error) {
	if f.fails > 0 {
		f.fails--
		return nil, errors.New("incomplete file")
	}
	return f.Reader.Read(name)
}

func TestRunOnce_RetriesFailedRead(t *testing.T) {
	reader := &flakyReader{
		Reader: &catalog.MockReader{Catalogs: map[string]*model.RawCatalog{
			"abell1234": fitableCatalog("abell1234"),
		}},
		fails: 1,
	}
	rec := &captureRecorder{}
	s := New(context.Background(), reader, testAggregator(t), rec, prompt.NoopPrompt{})
	s.Out = &strings.Builder{}

	if err := s.RunOnce(); err != nil {
		t.Fatal(err)
	}
	if len(rec.clusters) != 0 {
		t.Fatalf("failed read should record nothing, got %d", len(rec.clusters))
	}
	// next scan: the file is complete now and must be picked up
	if err := s.RunOnce(); err != nil {
		t.Fatal(err)
	}
	if len(rec.clusters) != 1 {
		t.Errorf("expected the catalog processed on retry, got %d records", len(rec.clusters))
	}
}

func TestRunOnce_NoCatalogs(t *testing.T) {
	reader := &catalog.MockReader{Catalogs: map[string]*model.RawCatalog{}}
	s := New(context.Background(), reader, testAggregator(t), &captureRecorder{}, prompt.NoopPrompt{})
	if err := s.RunOnce(); err == nil {
		t.Error("expected an error when no catalogs are discovered")
	}
}

func TestRunOnce_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reader := &catalog.MockReader{Catalogs: map[string]*model.RawCatalog{
		"abell1234": fitableCatalog("abell1234"),
	}}
	rec := &captureRecorder{}
	s := New(ctx, reader, testAggregator(t), rec, prompt.NoopPrompt{})

	if err := s.RunOnce(); err == nil {
		t.Error("expected context error")
	}
	if len(rec.clusters) != 0 {
		t.Errorf("cancelled run should not record clusters, got %d", len(rec.clusters))
	}
}
