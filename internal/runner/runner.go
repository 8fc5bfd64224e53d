// Package runner executes jurisdiction drivers one after another: it builds
// each driver's extractors, collects their records while skipping documents
// that fail, and merges the result into the driver's workbook.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/gaming-revenue/internal/fetch"
	"github.com/pfrederiksen/gaming-revenue/internal/jurisdiction"
	"github.com/pfrederiksen/gaming-revenue/internal/logger"
	"github.com/pfrederiksen/gaming-revenue/internal/record"
	"github.com/pfrederiksen/gaming-revenue/internal/workbook"
)

// Metric names
const (
	MetricDocumentsScraped = "documents_scraped"
	MetricDocumentsSkipped = "documents_skipped"
	MetricDocumentsInvalid = "documents_invalid"
	MetricDriversFailed    = "drivers_failed"
	MetricRowsWritten      = "rows_written"
	MetricRowsAdded        = "rows_added"
)

// Failure records one document or driver that was skipped
type Failure struct {
	Source string
	Err    error
}

// Summary describes one driver's run
type Summary struct {
	Driver    string
	Workbook  string
	Documents int
	Skipped   []Failure
	Records   int // records produced by extractors before normalization
	Added     int
	Total     int
	Duration  time.Duration
	// Err is set when the driver could not list its documents or save its workbook
	Err error
}

// OK reports whether the driver wrote its workbook
func (s *Summary) OK() bool {
	return s.Err == nil
}

// Runner runs drivers sequentially
type Runner struct {
	Store *workbook.Store
	// NewEnv builds a fresh environment per driver; the runner closes it
	NewEnv  func() *jurisdiction.Env
	Metrics *logger.Metrics
}

// New creates a runner recording into the default metrics tracker
func New(store *workbook.Store, newEnv func() *jurisdiction.Env) *Runner {
	return &Runner{Store: store, NewEnv: newEnv, Metrics: logger.DefaultMetrics()}
}

// Run executes the drivers in order. A driver that fails is reported in its
// Summary and the run moves on, except for fatal errors: an ambiguous prior
// workbook or a cancelled context stop the run and are returned.
func (r *Runner) Run(ctx context.Context, drivers []jurisdiction.Driver) ([]*Summary, error) {
	summaries := make([]*Summary, 0, len(drivers))
	for _, d := range drivers {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}

		summary := r.RunDriver(ctx, d)
		summaries = append(summaries, summary)
		if fatal(summary.Err) {
			return summaries, fmt.Errorf("%s: %w", d.Key, summary.Err)
		}
	}
	return summaries, nil
}

func fatal(err error) bool {
	return errors.Is(err, workbook.ErrAmbiguousPrior) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// RunDriver scrapes every document of one driver and merges the records into
// its workbook
func (r *Runner) RunDriver(ctx context.Context, d jurisdiction.Driver) *Summary {
	start := time.Now()
	summary := &Summary{Driver: d.Key}
	defer func() {
		summary.Duration = time.Since(start)
		r.metrics().RecordTiming("driver."+d.Key, summary.Duration)
	}()

	logger.Info("Starting driver", logger.Fields{"driver": d.Key, "workbook": d.Schema.FileName()})

	env := r.env()
	defer func() {
		if err := env.Close(); err != nil {
			logger.Warn("Failed to release driver resources", logger.Fields{"driver": d.Key, "error": err.Error()})
		}
	}()

	extractors, err := d.Sources(ctx, env)
	if err != nil {
		logger.Error("Failed to list documents", logger.Fields{"driver": d.Key}, err)
		r.metrics().IncrCounter(MetricDriversFailed)
		summary.Err = fmt.Errorf("listing documents: %w", err)
		return summary
	}
	logger.Debug("Documents listed", logger.Fields{"driver": d.Key, "count": len(extractors)})

	var records []record.Record
	for _, x := range extractors {
		if err := ctx.Err(); err != nil {
			summary.Err = err
			return summary
		}

		rows, err := r.produce(ctx, x)
		if err != nil {
			if fatal(err) {
				summary.Err = err
				return summary
			}
			summary.Skipped = append(summary.Skipped, Failure{Source: x.Source(), Err: err})
			continue
		}
		summary.Documents++
		records = append(records, rows...)
	}
	summary.Records = len(records)

	result, err := r.Store.MergeAndSave(records, d.Schema)
	if err != nil {
		logger.Error("Failed to save workbook", logger.Fields{"driver": d.Key}, err)
		r.metrics().IncrCounter(MetricDriversFailed)
		summary.Err = fmt.Errorf("saving workbook: %w", err)
		return summary
	}

	summary.Workbook = result.Path
	summary.Added = result.Added
	summary.Total = result.Total
	r.metrics().AddCounter(MetricRowsWritten, int64(result.Total))
	r.metrics().AddCounter(MetricRowsAdded, int64(result.Added))

	logger.Info("Driver finished", logger.Fields{
		"driver":    d.Key,
		"path":      result.Path,
		"documents": summary.Documents,
		"skipped":   len(summary.Skipped),
		"added":     result.Added,
		"total":     result.Total,
	})
	return summary
}

// produce runs one extractor, logging and counting the outcome
func (r *Runner) produce(ctx context.Context, x jurisdiction.Extractor) ([]record.Record, error) {
	source := x.Source()
	logger.Info("Scraping document", logger.Fields{"source": source})

	start := time.Now()
	rows, err := x.Produce(ctx)
	r.metrics().RecordTiming("document", time.Since(start))
	if err != nil {
		var invalid *record.InvalidExtraction
		if errors.As(err, &invalid) {
			r.metrics().IncrCounter(MetricDocumentsInvalid)
			logger.Warn("Unexpected document layout, skipping", logger.Fields{
				"source":   source,
				"text":     invalid.Text,
				"expected": invalid.Expected,
			})
		} else {
			logger.Error("Failed to scrape document, skipping", logger.Fields{"source": source}, err)
		}
		r.metrics().IncrCounter(MetricDocumentsSkipped)
		return nil, err
	}

	r.metrics().IncrCounter(MetricDocumentsScraped)
	logger.Debug("Document scraped", logger.Fields{"source": source, "records": len(rows)})
	return rows, nil
}

func (r *Runner) env() *jurisdiction.Env {
	if r.NewEnv != nil {
		if env := r.NewEnv(); env != nil {
			return env
		}
	}
	return &jurisdiction.Env{Fetch: fetch.New(fetch.Options{}), Store: r.Store}
}

func (r *Runner) metrics() *logger.Metrics {
	if r.Metrics != nil {
		return r.Metrics
	}
	return logger.DefaultMetrics()
}
