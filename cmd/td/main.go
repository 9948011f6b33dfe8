// Package main implements the td CLI tool.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "td",
	Short:         "TodoPro - a todo board that stays in sync with its gateway",
	SilenceUsage:  true,
	SilenceErrors: false,
}

var rootServer string

func init() {
	rootCmd.PersistentFlags().StringVar(&rootServer, "server", "", "Gateway URL (overrides config and $TODOPRO_SERVER)")
}
