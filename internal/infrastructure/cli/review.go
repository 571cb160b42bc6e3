package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/paperjury/paperjury/internal/application"
	"github.com/paperjury/paperjury/internal/domain/review"
	"github.com/paperjury/paperjury/internal/infrastructure/config"
	"github.com/paperjury/paperjury/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var (
	reviewConfigPath string
	reviewOutputDir  string
	reviewJudge      string
	reviewLogPrompts bool
	reviewVerbose    bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <paper>",
	Short: "Review a paper with the configured judge panel",
	Long: `Review extracts the paper (LaTeX or PDF), sends it to every configured
judge, and writes one review file per judge. Panels with more than one
judge also get a combined summary file. A judge whose API call fails still
produces a review file containing the failure diagnostic.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paperPath := args[0]

		cfg, err := config.Load(reviewConfigPath)
		if err != nil {
			return MapError(err)
		}

		services, err := wiring.BuildAppServices(cfg, paperPath, wiring.Options{
			OutputDir:  reviewOutputDir,
			LogPrompts: reviewLogPrompts,
			Progress:   progressPrinter(),
		})
		if err != nil {
			return MapError(err)
		}
		printRunDetails(cfg, services, reviewVerbose)

		started := time.Now()
		ctx := cmd.Context()

		var report *application.EvaluationReport
		if reviewJudge != "" {
			report, err = services.Evaluation.EvaluateJudge(ctx, paperPath, reviewJudge)
		} else {
			report, err = services.Evaluation.EvaluateAll(ctx, paperPath)
		}
		if err != nil {
			if errors.Is(err, application.ErrUnknownJudge) {
				return NewCLIError(
					fmt.Sprintf("unknown judge %q", reviewJudge),
					"Configured judges: "+strings.Join(judgeNames(services.Judges), ", "),
					err,
				)
			}
			return MapError(err)
		}

		printReviewReport(report)
		if reviewVerbose {
			fmt.Printf("Completed in %s\n", time.Since(started).Round(100*time.Millisecond))
		}
		return nil
	},
}

func progressPrinter() application.ProgressFunc {
	return func(format string, args ...any) {
		fmt.Printf(format+"\n", args...)
	}
}

// printRunDetails shows the resolved run settings before any call is made.
func printRunDetails(cfg *config.Config, services *wiring.AppServices, verbose bool) {
	if verbose {
		fmt.Printf("Model: %s | temperature: %.2f | max_tokens: %d | delay: %s\n",
			cfg.Settings.Model, cfg.Settings.Temperature, cfg.Settings.MaxTokens, cfg.Delay())
		fmt.Printf("Output directory: %s\n", services.OutputDir)
		if cfg.GuidelinesFile != "" {
			fmt.Printf("Guidelines: %s\n", cfg.GuidelinesFile)
		} else {
			fmt.Println("Guidelines: built-in")
		}
	}
}

func printReviewReport(report *application.EvaluationReport) {
	fmt.Println(headerStyle.Render("Reviewed: " + report.Doc.Title))
	for i, r := range report.Reviews.All() {
		glyph := statusOK.Render("✓")
		if r.Diagnostic {
			glyph = statusFail.Render("✗")
		}
		fmt.Printf("%s %s: %s\n", glyph, r.Judge.Name, report.ReviewPaths[i])
	}
	if report.SummaryPath != "" {
		fmt.Printf("Summary: %s\n", report.SummaryPath)
	}
	if n := report.Reviews.Diagnostics(); n > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d judge(s) failed; the review files contain the diagnostics.", n)))
	}
}

func judgeNames(judges []review.JudgeSpec) []string {
	names := make([]string, len(judges))
	for i, j := range judges {
		names[i] = j.Name
	}
	return names
}

func init() {
	reviewCmd.Flags().StringVarP(&reviewConfigPath, "config", "c", "paperjury.yaml", "Path to the panel configuration file")
	reviewCmd.Flags().StringVarP(&reviewOutputDir, "output", "o", "", "Directory for review files (default: the paper's directory)")
	reviewCmd.Flags().StringVar(&reviewJudge, "judge", "", "Run a single judge by name instead of the full panel")
	reviewCmd.Flags().BoolVar(&reviewLogPrompts, "log-prompts", false, "Write every outgoing prompt to the logs directory")
	reviewCmd.Flags().BoolVarP(&reviewVerbose, "verbose", "v", false, "Print resolved settings and timing")

	RootCmd.AddCommand(reviewCmd)
}
