package cmd

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ssargent/utmptrace/pkg/config"
	"github.com/ssargent/utmptrace/pkg/output"
	"github.com/ssargent/utmptrace/pkg/scan"
	"github.com/ssargent/utmptrace/pkg/store"
)

// runScan lists (and with deleteMode removes) matching records in every
// configured target.
func runScan(c *config.Config, logger zerolog.Logger, deleteMode, yes bool) (err error) {
	renderer, err := output.New(c.Output.Format, container.Stdout())
	if err != nil {
		return err
	}

	var confirmer scan.Confirmer = scan.NewPromptConfirmer(container.Stdin(), container.Stdout())
	if yes {
		confirmer = scan.AssumeYes{}
	}

	scfg := scan.Config{
		Options: scan.Options{
			Targets:    c.Targets,
			Conditions: c.Conditions,
			Count:      c.Count,
			Delete:     deleteMode,
			InPlace:    c.Write.InPlace,
			Thresholds: store.SizeThresholds{
				LargeBytes:    c.Thresholds.LargeBytes,
				TooLargeBytes: c.Thresholds.TooLargeBytes,
			},
		},
		Logger:    logger,
		Renderer:  renderer,
		Confirmer: confirmer,
		Metrics:   container.GetMetrics(),
	}

	if deleteMode && c.Archive.Enabled {
		archive, err := container.GetArchiveOpener().Open(c.Archive.Dir)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer func() {
			if cerr := archive.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("failed to close archive")
			}
		}()
		scfg.Archive = archive
	}

	scanner, err := scan.NewScanner(scfg)
	if err != nil {
		return err
	}

	_, runErr := scanner.Run()

	if c.Metrics.Textfile != "" {
		if werr := container.GetMetrics().WriteTextfile(c.Metrics.Textfile); werr != nil {
			logger.Warn().Err(werr).Str("path", c.Metrics.Textfile).Msg("failed to write metrics textfile")
		}
	}

	if errors.Is(runErr, scan.ErrNoTargets) {
		return fmt.Errorf("%w: %v", runErr, c.Targets)
	}
	return runErr
}
