// Command advisor is the AI Crypto Advisor CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"crypto-advisor/internal/cli"
	"crypto-advisor/internal/logging"
)

func main() {
	logger := logging.NewLoggerWithConfig(logging.DefaultLogConfig())

	rootCmd := cli.NewRootCmd(logger)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
