package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/paperjury/paperjury/internal/application"
	"github.com/paperjury/paperjury/internal/domain/session"
	"github.com/paperjury/paperjury/internal/infrastructure/config"
	"github.com/paperjury/paperjury/internal/infrastructure/wiring"
	"github.com/spf13/cobra"
)

var (
	improveConfigPath  string
	improveOutputDir   string
	improveRounds      int
	improveInteractive bool
	improveLogPrompts  bool
	improveVerbose     bool
)

var improveCmd = &cobra.Command{
	Use:   "improve <paper>",
	Short: "Iteratively improve a paper from panel reviews",
	Long: `Improve runs review/plan/revise rounds over the paper. Every round reviews
the current draft with the full panel, turns the reviews into a prioritized
improvement plan, and rewrites the paper accordingly. Artifacts land in a
timestamped session directory; the last revision is copied to
<paper>_final_improved.tex.

With --interactive, each plan is shown before it is applied and the session
asks after every round whether to continue.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if improveRounds < 1 {
			return NewCLIError(
				fmt.Sprintf("invalid rounds value %d", improveRounds),
				"Use --rounds with a value of 1 or more",
				nil,
			)
		}
		paperPath := args[0]

		cfg, err := config.Load(improveConfigPath)
		if err != nil {
			return MapError(err)
		}

		services, err := wiring.BuildAppServices(cfg, paperPath, wiring.Options{
			OutputDir:  improveOutputDir,
			LogPrompts: improveLogPrompts,
			Progress:   progressPrinter(),
		})
		if err != nil {
			return MapError(err)
		}
		printRunDetails(cfg, services, improveVerbose)

		started := time.Now()
		ctx := cmd.Context()

		var outcome session.Outcome
		if improveInteractive {
			approver := newConsoleApprover(os.Stdin, os.Stdout)
			outcome, err = services.Improvement.RunInteractive(ctx, paperPath, approver)
		} else {
			outcome, err = services.Improvement.Run(ctx, paperPath, improveRounds)
		}
		if err != nil {
			return MapError(err)
		}

		printOutcome(outcome)
		if improveVerbose {
			fmt.Printf("Completed in %s\n", time.Since(started).Round(100*time.Millisecond))
		}
		return nil
	},
}

func printOutcome(outcome session.Outcome) {
	fmt.Println(headerStyle.Render("Improvement session complete"))
	fmt.Printf("Session directory: %s\n", outcome.SessionDir)
	if outcome.Quit {
		fmt.Printf("Stopped after %d completed round(s); latest paper: %s\n", outcome.Rounds, outcome.FinalPath)
		return
	}
	fmt.Printf("Rounds completed: %d\n", outcome.Rounds)
	fmt.Printf("Final paper: %s\n", outcome.FinalPath)
}

// planPreviewLimit caps how much of a plan is echoed to the terminal. The
// full plan is always on disk.
const planPreviewLimit = 2000

// consoleApprover collects interactive session decisions from line-oriented
// input.
type consoleApprover struct {
	reader *bufio.Reader
	out    io.Writer
}

func newConsoleApprover(in io.Reader, out io.Writer) *consoleApprover {
	return &consoleApprover{reader: bufio.NewReader(in), out: out}
}

func (a *consoleApprover) ApprovePlan(round int, planPath, plan string) (application.PlanDecision, error) {
	fmt.Fprintln(a.out, headerStyle.Render(fmt.Sprintf("Improvement plan - round %d", round)))
	fmt.Fprintln(a.out, planPreview(plan))
	fmt.Fprintln(a.out, dimStyle.Render("Full plan: "+planPath))

	for {
		fmt.Fprint(a.out, "Apply this plan? [y/n/q]: ")
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("failed to read plan decision: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return application.PlanAccepted, nil
		case "n", "no":
			return application.PlanRejected, nil
		case "q", "quit":
			return application.PlanQuit, nil
		}
		fmt.Fprintln(a.out, "Please enter 'y', 'n', or 'q'.")
	}
}

func (a *consoleApprover) ContinueRounds(round int, stats session.ChangeStats) (bool, error) {
	fmt.Fprintf(a.out, "Round %d applied (%s).\n", round, stats)
	for {
		fmt.Fprint(a.out, "Run another improvement round? [y/n]: ")
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return false, fmt.Errorf("failed to read continue decision: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(a.out, "Please enter 'y' or 'n'.")
	}
}

func planPreview(plan string) string {
	if utf8.RuneCountInString(plan) <= planPreviewLimit {
		return plan
	}
	runes := []rune(plan)
	return string(runes[:planPreviewLimit]) + "\n... (truncated; the plan file has the rest)"
}

func init() {
	improveCmd.Flags().StringVarP(&improveConfigPath, "config", "c", "paperjury.yaml", "Path to the panel configuration file")
	improveCmd.Flags().StringVarP(&improveOutputDir, "output", "o", "", "Directory for the session (default: the paper's directory)")
	improveCmd.Flags().IntVarP(&improveRounds, "rounds", "r", 3, "Number of automatic improvement rounds")
	improveCmd.Flags().BoolVarP(&improveInteractive, "interactive", "i", false, "Approve each plan and round on the terminal")
	improveCmd.Flags().BoolVar(&improveLogPrompts, "log-prompts", false, "Write every outgoing prompt to the logs directory")
	improveCmd.Flags().BoolVarP(&improveVerbose, "verbose", "v", false, "Print resolved settings and timing")

	RootCmd.AddCommand(improveCmd)
}
