package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/helmcode/text-analyzer/pkg/render"
	"gopkg.in/yaml.v3"
)

// Options controls how results are displayed
type Options struct {
	Format      string
	MaxDepth    int
	Width       int
	CompletedAt time.Time
}

// DisplayResults formats and writes the analysis result to w
func DisplayResults(w io.Writer, result *model.Value, analysisType model.AnalysisType, opts Options) error {
	switch opts.Format {
	case "json":
		return displayJSON(w, result)
	case "yaml":
		return displayYAML(w, result)
	case "human":
		fallthrough
	default:
		displayHuman(w, result, analysisType, opts)
	}
	return nil
}

func displayJSON(w io.Writer, result *model.Value) error {
	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

func displayYAML(w io.Writer, result *model.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(result.YAMLNode()); err != nil {
		return err
	}
	return enc.Close()
}

func displayHuman(w io.Writer, result *model.Value, analysisType model.AnalysisType, opts Options) {
	cyan := color.New(color.FgCyan, color.Bold)

	width := opts.Width
	if width <= 0 {
		width = 80
	}

	fmt.Fprintln(w)
	cyan.Fprintf(w, "%s %s\n\n", typeIcon(analysisType), analysisType.Title())

	renderOpts := render.DefaultOptions()
	if opts.MaxDepth > 0 {
		renderOpts.MaxDepth = opts.MaxDepth
	}
	fmt.Fprintln(w, RenderBlock(render.Render(result, renderOpts), width))
	fmt.Fprintln(w)

	// Footer
	fmt.Fprintln(w, strings.Repeat("─", width))
	if !opts.CompletedAt.IsZero() {
		fmt.Fprintf(w, "%s\n", color.HiBlackString(CompletedLine(opts.CompletedAt)))
	}
	fmt.Fprintf(w, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

// CompletedLine is the footer shown under a result.
func CompletedLine(at time.Time) string {
	return fmt.Sprintf("Analysis completed at %s", at.Local().Format("2006-01-02 15:04:05"))
}

func typeIcon(t model.AnalysisType) string {
	switch t {
	case model.AnalysisSentiment:
		return "📈"
	default:
		return "📄"
	}
}
