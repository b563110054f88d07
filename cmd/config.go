package cmd

import (
	"fmt"
	"io"

	"github.com/helmcode/text-analyzer/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging the config file, .env and the
environment. Header values are masked. Problems that would stop an analysis
are reported after the settings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), cfg)
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) error {
	masked := *cfg
	if len(cfg.Headers) > 0 {
		masked.Headers = make(map[string]string, len(cfg.Headers))
		for k := range cfg.Headers {
			masked.Headers[k] = "****"
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if err := cfg.Validate(); err != nil {
		printError(w, err.Error())
		return nil
	}
	printSuccess(w, "Configuration is valid")
	return nil
}
