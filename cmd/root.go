package cmd

import (
	"fmt"

	"github.com/helmcode/text-analyzer/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	verbose    bool
	logFile    string

	logger *zap.Logger
}

// NewRootCmd builds the text-analyzer command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "text-analyzer",
		Short: "Summarize text or analyze its sentiment through an automation webhook",
		Long: `text-analyzer sends text to an automation webhook for summarization or
sentiment analysis and renders whatever JSON the webhook returns as nested tables.

The webhook URL is read from TEXT_ANALYZER_WEBHOOK_URL, a .env file, the
config file, or the --webhook-url flag.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initLogger(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/text-analyzer/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newInteractiveCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(version),
	)

	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "text-analyzer version %s\n", version)
		},
	}
}

// initLogger builds the process logger. Logs go to stderr at warn level, or
// debug with --verbose. The interactive form owns the terminal, so it only
// logs when --log-file is given.
func (o *globalOptions) initLogger(cmd *cobra.Command) error {
	if cmd.Name() == "interactive" && o.logFile == "" {
		o.logger = zap.NewNop()
		return nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if o.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if o.logFile != "" {
		cfg.OutputPaths = []string{o.logFile}
		cfg.ErrorOutputPaths = []string{o.logFile}
	}

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	o.logger = logger
	return nil
}

// loadConfig reads the config file named by --config, or the default one if
// it exists, with environment overrides applied.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("Loaded configuration",
		zap.String("path", path),
		zap.Duration("timeout", cfg.Timeout),
		zap.String("analysis_type", string(cfg.AnalysisType)))
	return cfg, nil
}
