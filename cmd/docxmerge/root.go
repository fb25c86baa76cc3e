package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benjaminschreck/go-docxmerge/pkg/merge"
)

// rootCommand represents the base command when called without any subcommands
func rootCommand() *cobra.Command {
	v := merge.NewViper()
	var configFile string

	rootCmd := &cobra.Command{
		Use:     "docxmerge",
		Version: version,
		Short:   "Fill DOCX templates with data",
		Long: `Fill DOCX templates with data

Templates are ordinary Word documents with {{placeholders}} and
{{#each list}} ... {{/each}} blocks in their text. Data is read from
JSON, YAML or TOML files.

Settings are read from docxmerge.toml or docxmerge.yaml in the current
directory or in $HOME/.config/docxmerge, and from DOCXMERGE_* environment
variables.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfigFile(v, configFile); err != nil {
				return err
			}
			cfg := merge.ConfigFromViper(v)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			merge.SetGlobalConfig(cfg)
			if used := v.ConfigFileUsed(); used != "" {
				merge.GetLogger().WithField("file", used).Debug("Using configuration file")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (default docxmerge.toml in . or $HOME/.config/docxmerge)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error or off")
	v.BindPFlag(merge.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(renderCommand(v))
	rootCmd.AddCommand(inspectCommand(v))
	rootCmd.AddCommand(versionCommand())
	rootCmd.AddCommand(completionCommand(rootCmd))
	return rootCmd
}

// readConfigFile loads an explicit configuration file, or looks for the
// default one. Only an explicitly named file is required to exist.
func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read configuration file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("docxmerge")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "docxmerge"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}
	return nil
}
