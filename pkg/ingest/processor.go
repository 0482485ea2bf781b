// Package ingest implements the CSV ingestion pipeline: header
// normalization, domain classification, value coercion, and the
// per-domain transform-and-load processors.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/siliconops/ingestoor/pkg/config"
	"github.com/siliconops/ingestoor/pkg/fsutil"
	"github.com/siliconops/ingestoor/pkg/store"
	"github.com/sirupsen/logrus"
)

// ErrNothingInserted is returned when a file parsed and carried valid
// rows but not a single one was inserted. Individually each row was
// handled (duplicate or error), but a file that inserts nothing is
// operationally a total failure.
var ErrNothingInserted = errors.New("no rows inserted")

// Processor ingests already-classified rows for one domain.
type Processor interface {
	Domain() string
	Process(ctx context.Context, rows []Row, collectedBy uint) Result
}

// Result aggregates outcome counts for one batch.
type Result struct {
	Inserted   int
	Duplicates int
	Errors     int
}

func (r *Result) add(other Result) {
	r.Inserted += other.Inserted
	r.Duplicates += other.Duplicates
	r.Errors += other.Errors
}

// Summary describes the outcome of processing one CSV file.
type Summary struct {
	File       string `json:"file"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	TotalRows  int    `json:"total_rows"`
	ValidRows  int    `json:"valid_rows"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Errors     int    `json:"errors"`
	Dropped    int    `json:"dropped"`
}

// CSVProcessor orchestrates the pipeline for whole files: read and
// normalize, classify, dispatch to domain processors, and relocate the
// source file based on outcome.
type CSVProcessor struct {
	log        logrus.FieldLogger
	store      store.Store
	cfg        *config.IngestConfig
	processors map[string]Processor
}

// NewCSVProcessor creates a CSVProcessor with the PD and DV domain
// processors registered. Domains without a registered processor (RTL,
// CD, CL, DFT) have their rows logged and dropped, not errored.
func NewCSVProcessor(
	log logrus.FieldLogger,
	st store.Store,
	cfg *config.IngestConfig,
) *CSVProcessor {
	p := &CSVProcessor{
		log:        log.WithField("component", "csv_processor"),
		store:      st,
		cfg:        cfg,
		processors: make(map[string]Processor, 2),
	}

	p.register(newPDProcessor(log, st))
	p.register(newDVProcessor(log, st))

	return p
}

func (p *CSVProcessor) register(proc Processor) {
	p.processors[proc.Domain()] = proc
}

// ProcessFile ingests one CSV file and returns a summary.
//
// A parser-level error rejects the whole file: the error is returned, no
// summary is produced, and the file is not moved. A file with zero valid
// rows is quarantined and reported as a failed summary. A file whose
// valid rows produced errors or duplicates is quarantined after
// processing; a file where nothing at all was inserted additionally
// returns ErrNothingInserted alongside its summary.
func (p *CSVProcessor) ProcessFile(
	ctx context.Context, path string,
) (*Summary, error) {
	fileName := filepath.Base(path)
	log := p.log.WithField("file", fileName)

	rows, total, err := ReadAndNormalize(path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	summary := &Summary{File: fileName, TotalRows: total}

	valid := make([]Row, 0, len(rows))
	for _, row := range rows {
		if isValidRow(row) {
			valid = append(valid, row)
		}
	}

	summary.ValidRows = len(valid)

	if len(valid) == 0 {
		summary.Message = "no valid rows found"

		log.WithField("total_rows", total).Error("No valid rows in file, quarantining")
		p.quarantine(path)

		return summary, nil
	}

	collector, err := p.store.GetOrCreateUserByName(ctx, p.cfg.Collector)
	if err != nil {
		return nil, fmt.Errorf("resolving collector user: %w", err)
	}

	// Group valid rows by domain, preserving file order within a group.
	groups := make(map[string][]Row)
	order := make([]string, 0, 2)

	for _, row := range valid {
		domain := ClassifyDomain(row)
		if _, seen := groups[domain]; !seen {
			order = append(order, domain)
		}

		groups[domain] = append(groups[domain], row)
	}

	for _, domain := range order {
		domainRows := groups[domain]

		proc, ok := p.processors[domain]
		if !ok {
			summary.Dropped += len(domainRows)

			log.WithFields(logrus.Fields{
				"domain": domain,
				"rows":   len(domainRows),
			}).Warn("No processor registered for domain, rows dropped")

			continue
		}

		result := proc.Process(ctx, domainRows, collector.ID)

		summary.Inserted += result.Inserted
		summary.Duplicates += result.Duplicates
		summary.Errors += result.Errors
	}

	summary.Success = summary.Inserted > 0 && summary.Errors == 0
	summary.Message = fmt.Sprintf(
		"%d inserted, %d duplicates, %d errors, %d dropped of %d valid rows",
		summary.Inserted, summary.Duplicates, summary.Errors,
		summary.Dropped, summary.ValidRows,
	)

	// Files with any errors or duplicates go to quarantine for review;
	// clean files are left in place for the caller to archive.
	if summary.Errors > 0 || summary.Duplicates > 0 {
		log.WithField("summary", summary.Message).Warn("File produced errors or duplicates, quarantining")
		p.quarantine(path)
	}

	if summary.Inserted == 0 {
		return summary, fmt.Errorf("%s: %w", fileName, ErrNothingInserted)
	}

	log.WithField("summary", summary.Message).Info("File processed")

	return summary, nil
}

// ProcessAll sweeps every pending .csv file in the watch directory and
// processes each in turn. One file's failure never stops the rest; the
// per-file error, if any, is recorded in that file's summary message.
func (p *CSVProcessor) ProcessAll(ctx context.Context) ([]*Summary, error) {
	files, err := fsutil.ListCSVFiles(p.cfg.WatchDir)
	if err != nil {
		return nil, fmt.Errorf("listing csv files: %w", err)
	}

	summaries := make([]*Summary, 0, len(files))

	for _, file := range files {
		path := filepath.Join(p.cfg.WatchDir, file)

		summary, err := p.ProcessFile(ctx, path)
		if err != nil {
			p.log.WithError(err).WithField("file", file).Error("Failed to process file")

			if summary == nil {
				summary = &Summary{File: file, Message: err.Error()}
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// quarantine moves a problematic file out of the watched tree under its
// original name. Collisions overwrite: the latest bad copy wins.
func (p *CSVProcessor) quarantine(path string) {
	dst := filepath.Join(p.cfg.QuarantineDir, filepath.Base(path))

	if err := fsutil.MoveFile(path, dst); err != nil {
		p.log.WithError(err).WithField("file", filepath.Base(path)).
			Error("Failed to quarantine file")

		return
	}

	p.log.WithFields(logrus.Fields{
		"file": filepath.Base(path),
		"dest": p.cfg.QuarantineDir,
	}).Info("File quarantined")
}

// isValidRow reports whether a row carries the minimum fields to be
// ingestable: a project and a block-like field (block name for PD-style
// rows, module for DV-style rows). Rows that re-embed the header line
// (a "project" cell literally saying project) are skipped; concatenated
// exports produce those.
func isValidRow(row Row) bool {
	project := row.Get(FieldProject)
	if project == "" || strings.EqualFold(project, FieldProject) {
		return false
	}

	return row.Get(FieldBlockName) != "" || row.Get(FieldModule) != ""
}
