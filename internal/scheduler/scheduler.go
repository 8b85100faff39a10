// Package scheduler drives the batch: it walks the catalog directory once,
// and in watch mode re-scans it on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"rsz/internal/aggregator"
	"rsz/internal/catalog"
	"rsz/internal/model"
	"rsz/internal/prompt"
	"rsz/internal/recorder"
	"rsz/internal/report"
)

// Scheduler processes catalogs sequentially: one cluster at a time, one
// band combination at a time.
type Scheduler struct {
	Cron       *cron.Cron
	Reader     catalog.Reader
	Aggregator *aggregator.Aggregator
	Recorder   recorder.Recorder
	Prompt     prompt.Prompt
	Out        io.Writer
	Ctx        context.Context

	mu        sync.Mutex // serializes overlapping rescans
	processed map[string]bool
}

// New creates a Scheduler.
func New(ctx context.Context, rd catalog.Reader, agg *aggregator.Aggregator,
	rec recorder.Recorder, pr prompt.Prompt) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Reader:     rd,
		Aggregator: agg,
		Recorder:   rec,
		Prompt:     pr,
		Out:        os.Stdout,
		Ctx:        ctx,
		processed:  make(map[string]bool),
	}
}

// RunOnce processes every catalog not yet seen. It returns an error only
// when no catalogs are discovered at all; per-cluster failures degrade
// into warnings and the batch continues.
func (s *Scheduler) RunOnce() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.Reader.List()
	if err != nil {
		return fmt.Errorf("list catalogs: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("no catalogs discovered in %s", s.Reader.Name())
	}

	start := time.Now()
	var clusters, fitted, sources int

	for _, name := range names {
		if s.processed[name] {
			continue
		}
		select {
		case <-s.Ctx.Done():
			return s.Ctx.Err()
		default:
		}

		raw, err := s.Reader.Read(name)
		if err != nil {
			// possibly still being written; retry on the next scan
			log.Printf("[WARN] read catalog %s: %v, will retry", name, err)
			continue
		}
		sources += len(raw.Sources)

		cluster, fits, err := s.Aggregator.Process(raw)
		if err != nil {
			if errors.Is(err, aggregator.ErrNoCombinations) {
				log.Printf("[WARN] %s: %v", name, err)
			} else {
				log.Printf("[ERROR] process %s: %v", name, err)
			}
			s.processed[name] = true
			continue
		}
		s.processed[name] = true
		clusters++

		// show the results before asking for a verdict on them
		fmt.Fprint(s.Out, report.FormatCluster(cluster, fits))
		s.Prompt.Review(cluster)

		s.record(cluster, fits)
		if len(cluster.Estimates) > 0 {
			fitted++
		}
	}

	log.Printf("[INFO] %s", report.FormatRunSummary(clusters, fitted, sources, time.Since(start)))
	return nil
}

func (s *Scheduler) record(c *model.Cluster, fits map[string]*model.FitResult) {
	if err := s.Recorder.RecordCluster(&recorder.ClusterRecord{
		Name:          c.Name,
		RA:            c.RA,
		Dec:           c.Dec,
		CenterLocated: c.CenterLocated,
		Interesting:   c.Interesting,
	}); err != nil {
		log.Printf("[ERROR] record cluster %s: %v", c.Name, err)
	}

	for combo, est := range c.Estimates {
		res := fits[combo]
		if err := s.Recorder.RecordResult(&recorder.ResultRecord{
			Cluster:     c.Name,
			Combination: combo,
			Z:           est.Value,
			ZUpperErr:   est.UpperErr,
			ZLowerErr:   est.LowerErr,
			Flags:       c.Flags[combo].Bitmask(),
			Members:     len(res.Members),
			Scatter:     res.Fit.Scatter,
		}); err != nil {
			log.Printf("[ERROR] record result %s %s: %v", c.Name, combo, err)
		}
	}

	for combo, res := range fits {
		if err := s.Recorder.RecordIterations(c.Name, combo, res.Iterations); err != nil {
			log.Printf("[ERROR] record iterations %s %s: %v", c.Name, combo, err)
		}
	}
}

// RegisterRescan schedules periodic re-scans of the catalog source so
// catalogs that appear later are picked up.
func (s *Scheduler) RegisterRescan(spec string) error {
	_, err := s.Cron.AddFunc(spec, func() {
		if err := s.RunOnce(); err != nil {
			log.Printf("[ERROR] rescan: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("register rescan: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}
