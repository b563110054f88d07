package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/helmcode/text-analyzer/pkg/analyzer"
	"github.com/helmcode/text-analyzer/pkg/config"
	"github.com/helmcode/text-analyzer/pkg/formatter"
	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/helmcode/text-analyzer/pkg/query"
	"github.com/helmcode/text-analyzer/pkg/webhook"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type analyzeOptions struct {
	*globalOptions

	file         string
	analysisType string
	outputFormat string
	queryExpr    string
	maxDepth     int
	timeout      time.Duration
	webhookURL   string
	width        int
}

func newAnalyzeCmd(global *globalOptions) *cobra.Command {
	o := &analyzeOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "analyze [TEXT]",
		Short: "Analyze text once and print the result",
		Long: `Send text to the analysis webhook and print the result.

The text is taken from the TEXT argument, from --file, or from stdin when it
is piped.

Examples:
  # Summarize a sentence
  text-analyzer analyze "Go is an open source programming language."

  # Sentiment of a file
  text-analyzer analyze --type sentiment -f review.txt

  # Pipe text in and get JSON back
  cat article.md | text-analyzer analyze -o json

  # Extract one field from the result
  text-analyzer analyze -f article.md -q summary`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}

	cmd.Flags().StringVarP(&o.file, "file", "f", "", "Read text from this file ('-' for stdin)")
	cmd.Flags().StringVarP(&o.analysisType, "type", "t", "", "Analysis type (summary, sentiment)")
	cmd.Flags().StringVarP(&o.outputFormat, "output", "o", "", "Output format (human, json, yaml)")
	cmd.Flags().StringVarP(&o.queryExpr, "query", "q", "", "JMESPath expression applied to the result")
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", 0, "Maximum nesting depth rendered as tables")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Webhook request timeout (0 disables)")
	cmd.Flags().StringVar(&o.webhookURL, "webhook-url", "", "Analysis webhook URL")
	cmd.Flags().IntVar(&o.width, "width", 100, "Line width for human output")

	return cmd
}

func (o *analyzeOptions) run(cmd *cobra.Command, args []string) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	if err := o.applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	text, err := o.readText(cmd, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	human := cfg.Output == "human"
	if human {
		printHeader(out, cfg.AnalysisType, text)
	}

	client := webhook.NewFromConfig(cfg, o.logger)
	ctrl := analyzer.New(client,
		analyzer.WithLogger(o.logger),
		analyzer.WithAnalysisType(cfg.AnalysisType))
	ctrl.SetText(text)

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Writer = cmd.ErrOrStderr()
	s.Suffix = " Analyzing text..."
	if isTerminal(cmd.ErrOrStderr()) {
		s.Start()
	}

	st := ctrl.Submit(cmd.Context())
	s.Stop()

	if st.Phase != analyzer.PhaseSucceeded {
		return o.failure(st)
	}
	if human {
		printSuccess(out, "Analysis complete")
	}

	result := st.Result
	if o.queryExpr != "" {
		result, err = query.Apply(result, o.queryExpr)
		if err != nil {
			return err
		}
	}

	return formatter.DisplayResults(out, result, st.AnalysisType, formatter.Options{
		Format:      cfg.Output,
		MaxDepth:    cfg.MaxDepth,
		Width:       o.width,
		CompletedAt: st.CompletedAt,
	})
}

// applyFlags lays explicitly set flags over the loaded configuration.
func (o *analyzeOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("type") {
		t, err := model.ParseAnalysisType(o.analysisType)
		if err != nil {
			return err
		}
		cfg.AnalysisType = t
	}
	if flags.Changed("output") {
		cfg.Output = strings.ToLower(o.outputFormat)
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = o.maxDepth
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if flags.Changed("webhook-url") {
		cfg.WebhookURL = o.webhookURL
	}
	return nil
}

// readText returns the text to analyze from the argument, --file or piped
// stdin. Emptiness is checked later, by request validation.
func (o *analyzeOptions) readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && o.file != "" {
		return "", fmt.Errorf("pass either TEXT or --file, not both")
	}
	if len(args) == 1 {
		return args[0], nil
	}

	var r io.Reader
	switch {
	case o.file == "-":
		r = cmd.InOrStdin()
	case o.file != "":
		data, err := os.ReadFile(o.file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	case !isTerminal(cmd.InOrStdin()):
		r = cmd.InOrStdin()
	default:
		return "", fmt.Errorf("no text provided: pass TEXT, use --file, or pipe text on stdin")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// failure turns a failed state into the command error. With --verbose a
// webhook error carries its status and body detail.
func (o *analyzeOptions) failure(st analyzer.State) error {
	o.logger.Debug("Analysis failed", zap.Error(st.Err))

	var respErr *model.ResponseError
	if o.verbose && errors.As(st.Err, &respErr) {
		return errors.New(respErr.Verbose())
	}
	var transportErr *model.TransportError
	if o.verbose && errors.As(st.Err, &transportErr) && transportErr.Err != nil {
		return fmt.Errorf("%s: %w", model.MsgGenericFailure, transportErr.Err)
	}
	return errors.New(st.Message())
}

func printHeader(w io.Writer, t model.AnalysisType, text string) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "🔍 AI Text Analyzer")
	fmt.Fprintf(w, "📝 Analysis type: %s\n", t.Label())
	fmt.Fprintf(w, "📊 Input: %d characters\n", len([]rune(text)))
	fmt.Fprintln(w)
}

func printSuccess(w io.Writer, msg string) {
	green := color.New(color.FgGreen)
	green.Fprintf(w, "✓ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
