package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/helmcode/text-analyzer/pkg/analyzer"
	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/helmcode/text-analyzer/pkg/tui"
	"github.com/helmcode/text-analyzer/pkg/webhook"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type interactiveOptions struct {
	*globalOptions

	analysisType string
	webhookURL   string
}

func newInteractiveCmd(global *globalOptions) *cobra.Command {
	o := &interactiveOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"ui"},
		Short:   "Open the interactive analysis form",
		Long: `Open a terminal form to type or paste text, pick an analysis type and
browse the result.

Keys:
  tab          switch between Summary and Sentiment
  ctrl+s       analyze the text
  ctrl+l       clear the text and result
  pgup/pgdown  scroll the result
  esc, ctrl+c  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&o.analysisType, "type", "t", "", "Initial analysis type (summary, sentiment)")
	cmd.Flags().StringVar(&o.webhookURL, "webhook-url", "", "Analysis webhook URL")

	return cmd
}

func (o *interactiveOptions) run(cmd *cobra.Command) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("type") {
		t, err := model.ParseAnalysisType(o.analysisType)
		if err != nil {
			return err
		}
		cfg.AnalysisType = t
	}
	if cmd.Flags().Changed("webhook-url") {
		cfg.WebhookURL = o.webhookURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := webhook.NewFromConfig(cfg, o.logger)
	ctrl := analyzer.New(client,
		analyzer.WithLogger(o.logger),
		analyzer.WithAnalysisType(cfg.AnalysisType))

	o.logger.Info("Starting interactive form", zap.String("endpoint", client.Endpoint()))

	p := tea.NewProgram(
		tui.New(ctrl, tui.Options{MaxDepth: cfg.MaxDepth, Logger: o.logger, Context: cmd.Context()}),
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return err
}
