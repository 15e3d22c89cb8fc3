package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/utmptrace/pkg/codec"
	"github.com/ssargent/utmptrace/pkg/entry"
	"github.com/ssargent/utmptrace/pkg/storage"
)

// archiveCmd groups the archive subcommands
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect records removed by earlier runs",
	Long: `Records removed with --archive are kept, compressed, in a local store.
These commands list them and write them back out as utmp data.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived records",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := container.GetArchiveOpener().Open(cfg.Archive.Dir)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer archive.Close()

		blocks, err := archive.List()
		if err != nil {
			return err
		}
		return writeArchiveList(cmd, blocks)
	},
}

var archiveExportCmd = &cobra.Command{
	Use:   "export [id...]",
	Short: "Write archived records to a utmp-format file",
	Long: `Writes the raw 384-byte blocks of the given archived records (all of
them when no id is given) to --out, in archive order.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		archive, err := container.GetArchiveOpener().Open(cfg.Archive.Dir)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer archive.Close()

		blocks, err := selectArchived(archive, args)
		if err != nil {
			return err
		}

		data := make([]byte, 0, len(blocks)*codec.RecordSize)
		for _, b := range blocks {
			data = append(data, b.Raw...)
		}
		if err := os.WriteFile(out, data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}

		logger.Info().Int("records", len(blocks)).Str("out", out).Msg("exported archived records")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	archiveExportCmd.Flags().String("out", "", "Destination file (required)")
	if err := archiveExportCmd.MarkFlagRequired("out"); err != nil {
		panic(err)
	}
}

func selectArchived(archive *storage.Archive, ids []string) ([]storage.ArchivedBlock, error) {
	if len(ids) == 0 {
		return archive.List()
	}

	blocks := make([]storage.ArchivedBlock, 0, len(ids))
	for _, s := range ids {
		id, err := ksuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid archive id %q: %w", s, err)
		}
		b, err := archive.Get(id)
		if err != nil {
			return nil, fmt.Errorf("archive id %s: %w", s, err)
		}
		blocks = append(blocks, *b)
	}
	return blocks, nil
}

func writeArchiveList(cmd *cobra.Command, blocks []storage.ArchivedBlock) error {
	w := tabwriter.NewWriter(container.Stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREMOVED\tSOURCE\tPOS\tTYPE\tUSER\tHOST")

	rc := codec.NewRecordCodec()
	for _, b := range blocks {
		typ, user, host := "?", "", ""
		if rec, err := rc.Decode(b.Raw); err == nil {
			if e, err := entry.Classify(rec); err == nil {
				typ, user, host = e.TypeLabel, e.User, e.Host
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			b.ID, b.RemovedAt.Local().Format(time.DateTime), b.Source, b.Position, typ, user, host)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	cmd.Printf("%d archived record(s)\n", len(blocks))
	return nil
}
