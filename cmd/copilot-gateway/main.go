// Command copilot-gateway runs the local HTTP gateway (C10), wiring C6-C9
// together. Grounded on erilofe-octrafic-cli's cmd/octrafic/main.go
// cobra+godotenv bootstrap: `_ = godotenv.Load()` before rootCmd.Execute(),
// a persistent flag set via init(), and the logger initialized once, after
// flag parsing, in the root command's PersistentPreRun.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/copilot-gateway/gateway/pkg/gatewaylog"
)

var rootCmd = &cobra.Command{
	Use:   "copilot-gateway",
	Short: "A local gateway translating ChatCompletions/Anthropic/Responses dialects against a Copilot-compatible upstream.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := gatewaylog.Init(debugEnabled); err != nil {
			fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
			os.Exit(1)
		}
	},
}

var debugEnabled bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "enable debug-level logging")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(modelsCmd)
}

func main() {
	_ = godotenv.Load()

	defer gatewaylog.Sync()

	if err := rootCmd.Execute(); err != nil {
		gatewaylog.Error(err.Error())
		os.Exit(1)
	}
}
