package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"fxbook/internal/infra/metrics"
	"fxbook/internal/orderbook"
)

// Stats is a point-in-time snapshot of processing counters.
type Stats struct {
	FilesProcessed int64 `json:"files_processed"`
	FilesSkipped   int64 `json:"files_skipped"`
	RecordsApplied int64 `json:"records_applied"`
	Securities     int   `json:"securities"`
}

// Processor drives snapshot files through the registry. The Processor is the
// only book writer; everything else reads.
type Processor struct {
	reg *Registry
	log zerolog.Logger

	// OnUpdate, when set, runs after every applied record with the book it
	// touched. Set before the first Process call.
	OnUpdate func(*orderbook.Book)

	filesProcessed atomic.Int64
	filesSkipped   atomic.Int64
	recordsApplied atomic.Int64
}

func NewProcessor(reg *Registry, logger zerolog.Logger) *Processor {
	return &Processor{reg: reg, log: logger}
}

// ProcessFile reads one snapshot file and applies it record by record in
// time order.
func (p *Processor) ProcessFile(path string) error {
	start := time.Now()
	records, err := ReadFile(path)
	if err != nil { return err }
	for _, rec := range records {
		book := p.reg.Apply(rec)
		if p.OnUpdate != nil {
			p.OnUpdate(book)
		}
	}
	p.filesProcessed.Add(1)
	p.recordsApplied.Add(int64(len(records)))
	metrics.FilesProcessedTotal.Inc()
	metrics.RecordsAppliedTotal.Add(float64(len(records)))
	metrics.FileProcessSeconds.Observe(time.Since(start).Seconds())
	p.log.Info().Str("file", path).Int("records", len(records)).Msg("file processed")
	return nil
}

// ProcessDir applies every matching file under dir in lexical path order.
// A missing directory is fatal for the run; a failing file is logged,
// counted, and skipped.
func (p *Processor) ProcessDir(dir, pattern string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("data directory %s: %w", dir, err)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("file pattern %q: %w", pattern, err)
	}
	paths, _ := filepath.Glob(filepath.Join(dir, pattern))
	if len(paths) == 0 {
		p.log.Warn().Str("dir", dir).Str("pattern", pattern).Msg("no data files found")
		return nil
	}
	p.log.Info().Int("files", len(paths)).Str("dir", dir).Msg("processing data files")
	for _, path := range paths {
		if err := p.ProcessFile(path); err != nil {
			p.skipFile(path, err)
		}
	}
	metrics.SecuritiesTracked.Set(float64(p.reg.Len()))
	p.log.Info().
		Int64("files", p.filesProcessed.Load()).
		Int64("skipped", p.filesSkipped.Load()).
		Int64("records", p.recordsApplied.Load()).
		Int("securities", p.reg.Len()).
		Msg("processing completed")
	return nil
}

// Watch polls dir and applies files it has not seen before, in lexical
// order within each scan. A failed file is not retried. Watch blocks until
// ctx is done.
func (p *Processor) Watch(ctx context.Context, dir, pattern string, every time.Duration) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("data directory %s: %w", dir, err)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("file pattern %q: %w", pattern, err)
	}

	seen := make(map[string]struct{})
	scan := func() {
		paths, _ := filepath.Glob(filepath.Join(dir, pattern))
		for _, path := range paths {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			if err := p.ProcessFile(path); err != nil {
				p.skipFile(path, err)
			}
		}
		metrics.SecuritiesTracked.Set(float64(p.reg.Len()))
		metrics.WatchScansTotal.Inc()
	}

	p.log.Info().Str("dir", dir).Dur("interval", every).Msg("watching for data files")
	scan()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			scan()
		}
	}
}

func (p *Processor) skipFile(path string, err error) {
	p.filesSkipped.Add(1)
	metrics.FilesSkippedTotal.Inc()
	p.log.Error().Err(err).Str("file", path).Msg("skipping file")
}

func (p *Processor) Stats() Stats {
	return Stats{
		FilesProcessed: p.filesProcessed.Load(),
		FilesSkipped:   p.filesSkipped.Load(),
		RecordsApplied: p.recordsApplied.Load(),
		Securities:     p.reg.Len(),
	}
}
