package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "scribe",
	Short: "scribe - LLM-routed technical document drafting service",
	Long: `scribe turns a one-line feature or change request into a structured
technical document (RFC) through clarifying questions, collected answers,
and template-based assembly, routing generation across multiple LLM
backends with failover and cost accounting.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
