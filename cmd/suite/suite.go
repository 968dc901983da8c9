// Package suite implements the suite command: replay a CSV of validation
// scenarios against the engine and report per-scenario outcomes and the
// overall accuracy.
package suite

import (
	"fmt"

	"github.com/spf13/cobra"

	"cardrec/cmd/root"
	"cardrec/internal/scenario"
)

var (
	inputFile  string
	outputFile string
	target     float64

	// Cmd is the suite command
	Cmd = &cobra.Command{
		Use:   "suite",
		Short: "Run a validation scenario suite",
		Long: `Replay every scenario in a CSV file against the recommendation engine,
comparing the top pick and its reward to the expected values, and print the
overall accuracy.`,
		Run: suiteFunc,
	}
)

func init() {
	Cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Scenario CSV file (required)")
	Cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the report as CSV to this file")
	Cmd.Flags().Float64Var(&target, "target", 85, "Accuracy target percentage")
	_ = Cmd.MarkFlagRequired("input")
}

func suiteFunc(cmd *cobra.Command, args []string) {
	cat, err := root.LoadCatalog()
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load catalog")
	}
	ranker := root.NewRanker(cat)

	scenarios, err := scenario.LoadScenarios(inputFile)
	if err != nil {
		root.Log.WithError(err).Fatal("Failed to load scenarios")
	}

	runner := scenario.NewRunner(ranker, root.Log)
	report, err := runner.Run(scenarios)
	if err != nil {
		root.Log.WithError(err).Fatal("Scenario suite failed")
	}

	fmt.Printf("%-8s %-36s %-28s %-28s %-8s\n", "ID", "SCENARIO", "EXPECTED", "GOT", "STATUS")
	for _, res := range report.Results {
		fmt.Printf("%-8s %-36s %-28s %-28s %-8s\n", res.TestID, res.Name, res.Expected, res.Got, res.Status)
	}
	accuracy := report.Accuracy()
	fmt.Printf("\nOverall accuracy: %.1f%%\n", accuracy)
	if accuracy < target {
		root.Log.WithField("target", target).Warn("Accuracy below target, inspect failed scenarios")
	}

	if outputFile != "" {
		if err := scenario.WriteReport(outputFile, report); err != nil {
			root.Log.WithError(err).Fatal("Failed to write report")
		}
		root.Log.WithField("file", outputFile).Info("Report written")
	}
}
