package cli

import (
	"encoding/json"
	"fmt"

	"github.com/mobile-next/windowthrottle/utils"
	"github.com/spf13/cobra"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "windowthrottle",
	Short: "Coalesces viewport resize and scroll events into throttled notifications",
	Long: `A service that turns bursts of raw resize and scroll events reported by
remote windows into at most one notification per frame, with end-of-burst
notifications and activity markers.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		utils.Error("failed to encode output: %v", err)
		return
	}
	fmt.Println(string(jsonData))
}
