package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "answer-gateway",
	Short: "Streaming answer gateway for the Popular Science widget",
	Long: `answer-gateway serves chat, single-question and UI generation endpoints.
Answers stream from OpenAI or Anthropic when a key is configured and degrade
to canned, topic-matched text when none is.

Configuration comes from defaults, an optional YAML file (--config or
$GATEWAY_CONFIG), environment variables, and, when PARAM_PREFIX is set,
AWS SSM Parameter Store.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, lambdaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}
