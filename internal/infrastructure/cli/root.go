package cli

import (
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "paperjury",
	Version: Version,
	Short:   "LLM peer review and revision for academic papers",
	Long: `Paperjury runs a configurable panel of LLM judges over an academic paper.
It helps authors answer:
1. What would reviewers say about this draft?
2. What should change first?
3. What does the revised paper look like?`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	return RootCmd.Execute()
}
