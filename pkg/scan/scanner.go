// Package scan drives one pass over each target file: load, decode, select,
// render, and optionally archive and rewrite.
package scan

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/utmptrace/pkg/codec"
	"github.com/ssargent/utmptrace/pkg/metrics"
	"github.com/ssargent/utmptrace/pkg/output"
	"github.com/ssargent/utmptrace/pkg/query"
	"github.com/ssargent/utmptrace/pkg/storage"
	"github.com/ssargent/utmptrace/pkg/store"
)

// ErrNoTargets is returned when none of the configured targets exist
var ErrNoTargets = errors.New("the target file(s) do not exist")

// Archiver stores blocks before they are removed from a file
type Archiver interface {
	PutBatch(source string, blocks []storage.RemovedBlock) ([]ksuid.KSUID, error)
}

// Options controls a scan run
type Options struct {
	Targets    []string
	Conditions []string
	Count      int // 0 = unbounded
	Delete     bool
	InPlace    bool
	Thresholds store.SizeThresholds
}

// Scanner processes target files one after another. Files share no state;
// a failure on one file does not stop the others.
type Scanner struct {
	opts      Options
	logger    zerolog.Logger
	renderer  output.Renderer
	confirmer Confirmer
	archive   Archiver         // optional
	metrics   *metrics.Metrics // optional
}

// Config bundles the collaborators of a Scanner
type Config struct {
	Options   Options
	Logger    zerolog.Logger
	Renderer  output.Renderer
	Confirmer Confirmer
	Archive   Archiver
	Metrics   *metrics.Metrics
}

// NewScanner creates a scanner. Renderer and Confirmer are required.
func NewScanner(cfg Config) (*Scanner, error) {
	if cfg.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if cfg.Confirmer == nil {
		return nil, fmt.Errorf("confirmer is required")
	}
	return &Scanner{
		opts:      cfg.Options,
		logger:    cfg.Logger,
		renderer:  cfg.Renderer,
		confirmer: cfg.Confirmer,
		archive:   cfg.Archive,
		metrics:   cfg.Metrics,
	}, nil
}

// FileReport summarizes one file's pass
type FileReport struct {
	Path      string
	Advisory  store.SizeAdvisory
	Result    *query.Result
	Confirmed bool
	Rewritten bool
	Archived  []ksuid.KSUID
}

// Summary summarizes a run
type Summary struct {
	Files  []*FileReport
	Failed []string
}

// Run scans every target. It returns ErrNoTargets when nothing exists and
// an error naming the failed files when any file hit an I/O error.
func (s *Scanner) Run() (*Summary, error) {
	runID := ksuid.New()
	logger := s.logger.With().Str("run", runID.String()).Logger()
	defer func() {
		if s.metrics != nil {
			s.metrics.MarkRun(time.Now())
		}
	}()

	targets, err := ExpandTargets(s.opts.Targets)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		logger.Error().Strs("targets", s.opts.Targets).Msg("the target file(s) do not exist")
		return nil, ErrNoTargets
	}
	logger.Info().Strs("files", targets).Msg("existing files")

	summary := &Summary{}
	for _, path := range targets {
		fileLogger := logger.With().Str("file", path).Logger()
		report, err := s.ScanFile(path, fileLogger)
		if err != nil {
			fileLogger.Error().Err(err).Msg("failed to process file")
			summary.Failed = append(summary.Failed, path)
			s.recordFile(metrics.StatusFailed)
			continue
		}
		summary.Files = append(summary.Files, report)
	}

	if len(summary.Failed) > 0 {
		return summary, fmt.Errorf("failed to process %d file(s): %v", len(summary.Failed), summary.Failed)
	}
	return summary, nil
}

// ScanFile processes a single file
func (s *Scanner) ScanFile(path string, logger zerolog.Logger) (*FileReport, error) {
	reader, err := store.NewLogReader(store.LogReaderConfig{FilePath: path})
	if err != nil {
		return nil, err
	}

	report := &FileReport{Path: path}
	report.Advisory = store.CheckSize(reader.Size(), s.opts.Thresholds)
	logAdvisory(logger, report.Advisory)

	buf, err := reader.Load()
	if err != nil {
		return nil, err
	}

	var pred query.Predicate
	if m := query.NewMatchAny(s.opts.Conditions); m != nil {
		pred = m
	}
	res := query.NewEngine(query.Options{
		MaxCount:  s.opts.Count,
		Predicate: pred,
		Delete:    s.opts.Delete,
	}).Process(buf)
	report.Result = res

	if res.Malformed != nil {
		logger.Error().Err(res.Malformed).Int("decoded", res.Scanned).Msg("it seems not well-formed utmp data")
	}
	if s.metrics != nil {
		s.metrics.RecordScan(path, res.Scanned, res.Matched, res.Malformed != nil)
	}

	if err := s.renderer.Render(path, res.Entries); err != nil {
		return nil, fmt.Errorf("failed to render entries: %w", err)
	}

	if !s.opts.Delete || len(res.Entries) == 0 {
		s.recordFile(metrics.StatusListed)
		return report, nil
	}

	ok, err := s.confirmer.Confirm(ConfirmPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if !ok {
		logger.Info().Msg("rewrite declined")
		s.recordFile(metrics.StatusSkipped)
		return report, nil
	}
	report.Confirmed = true

	if s.archive != nil {
		ids, err := s.archive.PutBatch(path, removedBlocks(buf, res))
		if err != nil {
			return nil, fmt.Errorf("failed to archive removed records: %w", err)
		}
		report.Archived = ids
		logger.Info().Int("records", len(ids)).Msg("archived removed records")
	}

	writer, err := store.NewLogWriter(store.LogWriterConfig{FilePath: path, InPlace: s.opts.InPlace})
	if err != nil {
		return nil, err
	}
	if err := writer.Rewrite(res.Retained); err != nil {
		return nil, fmt.Errorf("failed to override %s: %w", path, err)
	}
	report.Rewritten = true

	logger.Info().
		Int("removed", res.Removed).
		Int("size_before", len(buf)).
		Int("size_after", len(res.Retained)).
		Msg("override successful")
	if s.metrics != nil {
		s.metrics.RecordRemoval(path, res.Removed)
	}
	s.recordFile(metrics.StatusRewritten)

	return report, nil
}

func (s *Scanner) recordFile(status string) {
	if s.metrics != nil {
		s.metrics.RecordFile(status)
	}
}

// removedBlocks collects the raw bytes of every position marked for removal.
func removedBlocks(buf []byte, res *query.Result) []storage.RemovedBlock {
	out := make([]storage.RemovedBlock, 0, res.Removed)
	for pos, keep := range res.Retain {
		if keep {
			continue
		}
		off := pos * codec.RecordSize
		out = append(out, storage.RemovedBlock{
			Position: pos,
			Raw:      buf[off : off+codec.RecordSize],
		})
	}
	return out
}

func logAdvisory(logger zerolog.Logger, a store.SizeAdvisory) {
	switch a.Level {
	case store.SizeTooLarge:
		logger.Warn().Int64("bytes", a.Size).Msg("caution!!! the target file is too large")
	case store.SizeLarge:
		logger.Warn().Int64("bytes", a.Size).Msg("caution! the target file is a bit large")
	}

	if !a.Aligned {
		logger.Warn().Int64("trailing_bytes", a.Remainder).Msg("this file may not be a valid utmp file due to inappropriate file size")
		return
	}
	logger.Info().Int64("records", a.Records).Msg("estimated amount of records in the file (by file size)")
}
