package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "percolate",
	Short: "Percolate generates reviewed Python code for coffee brewing calculations",
	Long: `Percolate chains four role agents (generator, analyzer, optimizer,
user proxy) into a bounded conversation that generates, reviews, and
optimizes small Python programs for coffee brewing calculations.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("model-config", "model_config.yaml", "Path to the model configuration file")
}
