package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ssargent/utmptrace/pkg/config"
	"github.com/ssargent/utmptrace/pkg/di"
	"github.com/ssargent/utmptrace/pkg/logging"
)

var (
	container *di.Container

	// populated by PersistentPreRunE
	cfg    *config.Config
	logger zerolog.Logger
)

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "utmptrace",
	Short: "Inspect and prune utmp/wtmp/btmp records",
	Long: `utmptrace decodes login accounting files (utmp, wtmp, btmp), lists the
most recent records matching the given conditions and can remove them,
rewriting the file with every other record left byte for byte unchanged.

Examples:
	  utmptrace
	  utmptrace -t /var/log/wtmp -s 10.0.0.7 -c 10
	  utmptrace -t '/var/log/wtmp*' -s 4gfFC3 -D`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}

		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyFlags(cmd, loaded); err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}

		l, err := logging.New(loaded.Logging.Level, container.Stderr())
		if err != nil {
			return err
		}

		cfg = loaded
		logger = l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		deleteMode, _ := cmd.Flags().GetBool("delete")
		yes, _ := cmd.Flags().GetBool("yes")
		return runScan(cfg, logger, deleteMode, yes)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default ~/.config/utmptrace/config.yaml when present)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("archive-dir", "", "Directory of the removed-record archive")

	f := rootCmd.Flags()
	f.StringSliceP("target", "t", nil, "Target file path or glob (repeatable)")
	f.StringSliceP("search", "s", nil, "Match condition: pid, host, union code or IP (repeatable)")
	f.IntP("count", "c", 5, "Maximum number of records to show/remove, 0 for no limit")
	f.BoolP("delete", "D", false, "Remove the matched records from the file")
	f.BoolP("yes", "y", false, "Do not ask for confirmation before removing")
	f.StringP("output", "o", "", "Output format: table or json")
	f.Bool("in-place", false, "Overwrite the file in place instead of an atomic rename")
	f.Bool("archive", false, "Archive removed records before rewriting")
	f.String("metrics-textfile", "", "Write Prometheus metrics to this file after the run")
}

// loadConfig reads --config, falling back to the default path when it
// exists and to built-in defaults otherwise.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadConfig(path)
	}

	path = config.GetDefaultConfigPath()
	if config.ConfigExists(path) {
		return config.LoadConfig(path)
	}
	return config.DefaultConfig(), nil
}

// applyFlags overrides config values with flags set on the command line.
func applyFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("log-level") {
		c.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("archive-dir") {
		c.Archive.Dir, _ = flags.GetString("archive-dir")
	}

	// Subcommands do not define the scan flags.
	if flags.Lookup("target") == nil {
		return nil
	}

	if flags.Changed("target") {
		c.Targets, _ = flags.GetStringSlice("target")
	}
	if flags.Changed("search") {
		c.Conditions, _ = flags.GetStringSlice("search")
	}
	if flags.Changed("count") {
		n, _ := flags.GetInt("count")
		if n < 0 {
			return fmt.Errorf("count must not be negative: %d", n)
		}
		c.Count = n
	}
	if flags.Changed("output") {
		c.Output.Format, _ = flags.GetString("output")
	}
	if flags.Changed("in-place") {
		c.Write.InPlace, _ = flags.GetBool("in-place")
	}
	if flags.Changed("archive") {
		c.Archive.Enabled, _ = flags.GetBool("archive")
	}
	if flags.Changed("metrics-textfile") {
		c.Metrics.Textfile, _ = flags.GetString("metrics-textfile")
	}
	return nil
}
