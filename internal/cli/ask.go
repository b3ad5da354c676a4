// internal/cli/ask.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jclermont/advisor/internal/advisor"
	"github.com/jclermont/advisor/internal/llm"
	"github.com/jclermont/advisor/internal/logging"
	"github.com/jclermont/advisor/internal/retriever"
)

var (
	askDepartment string
	askLevel      string
	askK          int
)

// askCmd answers a single question against the indexed catalog.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a one-shot course question",
	Long:  `The 'ask' command retrieves the most relevant courses for a question, optionally filtered by department or level, and prints a grounded answer with its sources.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question is required")
		}

		cfg := getConfig()
		adv, err := advisor.FromConfig(cfg)
		if err != nil {
			return err
		}

		k := cfg.RetrieveCount()
		if askK > 0 {
			k = askK
		}
		filters := retriever.Filters{Department: askDepartment, Level: askLevel}

		result, err := adv.AskWithK(context.Background(), question, filters, k, nil)
		if cfg.Debug && result.Context != "" {
			logging.LogEvent("assembled context for %q:\n%s", question, result.Context)
		}
		if err != nil {
			if errors.Is(err, llm.ErrUnavailable) && result.RetrievedCount > 0 {
				color.Yellow("Found %d course(s) but could not generate an answer: %v", result.RetrievedCount, err)
				printSources(result.Sources)
				return nil
			}
			return err
		}

		fmt.Println(result.Answer)
		printSources(result.Sources)
		return nil
	},
}

func printSources(sources []string) {
	if len(sources) == 0 {
		return
	}
	heading := color.New(color.FgGreen, color.Bold).SprintFunc()
	fmt.Printf("\n%s %s\n", heading("Sources:"), strings.Join(sources, ", "))
}

func init() {
	askCmd.Flags().StringVar(&askDepartment, "department", "", "restrict results to a department (exact match)")
	askCmd.Flags().StringVar(&askLevel, "level", "", "restrict results to a course level (exact match)")
	askCmd.Flags().IntVarP(&askK, "k", "k", 0, "number of courses to retrieve (default from config)")
	rootCmd.AddCommand(askCmd)
}
