package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/utmptrace/pkg/config"
)

// configCmd groups the config subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the utmptrace configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Writes the default configuration to --config (or
~/.config/utmptrace/config.yaml). An existing file is kept unless --force is given.`,
	// The file may not exist yet, so skip the root pre-run loader.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if container == nil {
			return fmt.Errorf("dependency container not initialized")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		force, _ := cmd.Flags().GetBool("force")
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		return initConfig(cmd, path, force)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config file")
}

func initConfig(cmd *cobra.Command, path string, force bool) error {
	if config.ConfigExists(path) && !force {
		cmd.Printf("Config already exists at %s. Use --force to overwrite.\n", path)
		return nil
	}

	if err := config.SaveConfig(config.DefaultConfig(), path); err != nil {
		return err
	}
	cmd.Printf("Config written to %s\n", path)
	return nil
}
