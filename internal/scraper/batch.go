package scraper

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Batch scrapes many case numbers with a bounded number of concurrent
// browser tabs, preserving input order in the output. One record per
// input, errors captured per record.
func (s *Scraper) Batch(ctx context.Context, processNumbers []string) []ProcessData {
	results := make([]ProcessData, len(processNumbers))
	total := len(processNumbers)
	batchSize := s.cfg.BatchSize
	if batchSize < 1 {
		batchSize = total
	}

	s.logger.Info("scraping case data",
		zap.Int("processes", total),
		zap.Int("batch_size", batchSize),
		zap.Int("max_browsers", s.cfg.MaxBrowsers))

	for offset := 0; offset < total; offset += batchSize {
		end := offset + batchSize
		if end > total {
			end = total
		}

		g := new(errgroup.Group)
		g.SetLimit(s.cfg.MaxBrowsers)
		for i := offset; i < end; i++ {
			g.Go(func() error {
				results[i] = s.Lookup(ctx, processNumbers[i])
				return nil
			})
		}
		_ = g.Wait()

		s.logger.Info("batch complete",
			zap.Int("done", end), zap.Int("total", total))
	}
	return results
}

// WriteCSV saves scrape results under dir with a timestamped name and
// returns the full path.
func WriteCSV(dir string, results []ProcessData) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", dir, err)
	}
	path := filepath.Join(dir,
		fmt.Sprintf("esaj_%s.csv", time.Now().Format("2006_01_02_150405")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Headers()); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range results {
		if err := w.Write(r.Row()); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return path, nil
}
