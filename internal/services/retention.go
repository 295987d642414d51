package services

import (
	"context"
	"log"
	"time"

	"PMS-FORMS/internal/storage"

	"golang.org/x/sync/errgroup"
)

// retentionDeleteConcurrency caps parallel GCS deletes per sweep.
const retentionDeleteConcurrency = 4

// RetentionService periodically deletes stored submission outputs that have
// outlived their retention window. Only the derived PDF objects go; the
// submission rows stay, and Download re-renders from the frozen payload at
// any time.
type RetentionService struct {
	gcs      *storage.GCSClient
	prefixes []string
	maxAge   time.Duration
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool
}

func NewRetentionService(gcs *storage.GCSClient, prefixes []string, maxAge, interval time.Duration) *RetentionService {
	return &RetentionService{
		gcs:      gcs,
		prefixes: prefixes,
		maxAge:   maxAge,
		interval: interval,
		done:     make(chan bool),
	}
}

func (rs *RetentionService) Start() {
	rs.ticker = time.NewTicker(rs.interval)
	go func() {
		for {
			select {
			case <-rs.done:
				return
			case <-rs.ticker.C:
				rs.sweep(context.Background())
			}
		}
	}()
	log.Println("Output retention service started")
}

func (rs *RetentionService) Stop() {
	if rs.ticker != nil {
		rs.ticker.Stop()
	}
	rs.done <- true
	log.Println("Output retention service stopped")
}

func (rs *RetentionService) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-rs.maxAge)

	for _, prefix := range rs.prefixes {
		names, err := rs.gcs.ListObjectsOlderThan(ctx, prefix, cutoff)
		if err != nil {
			log.Printf("Error listing %s objects for retention sweep: %v", prefix, err)
			continue
		}

		eg, gctx := errgroup.WithContext(ctx)
		eg.SetLimit(retentionDeleteConcurrency)
		for _, name := range names {
			eg.Go(func() error {
				log.Printf("Cleaning up expired object: %s", name)
				return rs.gcs.DeleteFile(gctx, name)
			})
		}
		if err := eg.Wait(); err != nil {
			log.Printf("Error during retention sweep of %s: %v", prefix, err)
		}
	}
}
