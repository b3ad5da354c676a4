// internal/cli/show_config.go
package cli

import (
	"fmt"

	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var showConfigRaw bool

// showConfigCmd prints the merged configuration (flags > config > defaults).
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON config is loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		file := viper.ConfigFileUsed()
		if file == "" {
			fmt.Println("No config file loaded (using defaults).")
		} else {
			fmt.Printf("Config file: %s\n\n", file)
		}

		cfg := getConfig()
		if showConfigRaw {
			pp.Println(cfg)
			return
		}

		fmt.Println("Current configuration:")
		fmt.Printf("  Debug:             %v\n", cfg.Debug)
		fmt.Printf("  Embedding Host:    %s\n", cfg.EmbeddingHost)
		fmt.Printf("  Embedding Model:   %s\n", cfg.EmbeddingModel)
		fmt.Printf("  LLM Host:          %s\n", cfg.LLMHost)
		fmt.Printf("  LLM Model:         %s\n", cfg.LLMModel)
		fmt.Printf("  Data Path:         %s\n", cfg.DataFilePath())
		fmt.Printf("  Index Dir:         %s\n", cfg.IndexDirPath())
		fmt.Printf("  Retrieve K:        %d\n", cfg.RetrieveCount())
		fmt.Printf("  Over-fetch Factor: %d\n", cfg.OverFetch())
		fmt.Printf("  History Turns:     %d\n", cfg.HistoryCap())
		fmt.Printf("  Request Timeout:   %s\n", cfg.RequestTimeout())
	},
}

func init() {
	showConfigCmd.Flags().BoolVar(&showConfigRaw, "raw", false, "dump the full config struct")
	showCmd.AddCommand(showConfigCmd)
}
