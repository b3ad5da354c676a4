// internal/cli/chat.go
package cli

import (
	"github.com/spf13/cobra"

	chatui "github.com/jclermont/advisor/cli"
	"github.com/jclermont/advisor/internal/retriever"
)

var (
	chatDepartment string
	chatLevel      string
)

// chatCmd represents the 'chat' command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive advising session",
	Long:  `The 'chat' command starts an interactive chat session against the indexed course catalog, keeping a bounded conversation history for follow-up questions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filters := retriever.Filters{Department: chatDepartment, Level: chatLevel}
		return chatui.StartChat(getConfig(), filters)
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatDepartment, "department", "", "restrict retrieval to a department (exact match)")
	chatCmd.Flags().StringVar(&chatLevel, "level", "", "restrict retrieval to a course level (exact match)")
	rootCmd.AddCommand(chatCmd)
}
