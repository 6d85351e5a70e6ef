package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/aoc/internal/cli/config"
	"github.com/leapstack-labs/aoc/internal/cli/output"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging defaults, the config file,
AOC_ environment variables and command line flags.

The output is valid aoc.yaml content (JSON with -o json).`,
		Example: `  # Show the merged configuration
  aoc config

  # Start a config file from the current settings
  aoc config > aoc.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer

			if used := config.GetConfigFileUsed(); used != "" {
				_, _ = fmt.Fprintf(r.ErrWriter(), "# config file: %s\n", used)
			}

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(cmdCtx.Cfg)
			}

			data, err := yaml.Marshal(cmdCtx.Cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = r.Writer().Write(data)
			return err
		},
	}
}
