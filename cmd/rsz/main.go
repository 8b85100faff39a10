package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rsz/internal/aggregator"
	"rsz/internal/catalog"
	"rsz/internal/config"
	"rsz/internal/prompt"
	"rsz/internal/recorder"
	"rsz/internal/resource"
	"rsz/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] rsz starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("RSZ_CONFIG"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Load filter-pair and red-sequence model library
	lib, err := resource.Load(cfg.Models)
	if err != nil {
		log.Fatalf("[FATAL] load model library: %v", err)
	}
	log.Printf("[INFO] model library: %d band combinations", len(lib.Combinations))

	// Init catalog reader
	reader := catalog.NewDirReader(cfg.Catalog.Dir, cfg.Catalog.Extensions, cfg.Catalog.DistColumn)
	log.Printf("[INFO] catalog source: %s", reader.Name())

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Fatalf("[FATAL] init sqlite recorder: %v", err)
		}
		rec = sr
		defer sr.Close()
	}

	// Interactive review prompt
	var pr prompt.Prompt = prompt.NoopPrompt{}
	if cfg.Interactive {
		pr = prompt.NewStdinPrompt()
		log.Println("[INFO] interactive review enabled")
	}

	agg := aggregator.New(cfg, lib, nil)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, reader, agg, rec, pr)

	if err := sched.RunOnce(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	// One-shot batch unless a rescan schedule is configured
	if cfg.RescanCron == "" {
		log.Println("[INFO] rsz done")
		return
	}

	if err := sched.RegisterRescan(cfg.RescanCron); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	sched.Start()
	defer sched.Stop()

	log.Println("[INFO] rsz watching for new catalogs. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] rsz stopped")
}
