package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/martinemde/percolate/config"
	"github.com/martinemde/percolate/workflow"
)

var runCmd = &cobra.Command{
	Use:   "run <requirement>",
	Short: "Run one code generation workflow and print the result",
	Long: `Runs the full generate-review-optimize-decide workflow for the given
requirement, streaming agent output as it arrives. Exits non-zero unless
the user proxy approved the final code.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		requirement := strings.Join(args, " ")
		modelConfigPath, _ := cmd.Flags().GetString("model-config")
		quiet, _ := cmd.Flags().GetBool("quiet")

		settings, err := config.Load()
		if err != nil {
			return err
		}
		mf, err := config.LoadModelFile(modelConfigPath)
		if err != nil {
			return err
		}
		settings.Merge(mf)
		logger := settings.Logger()

		client, provider, model, err := settings.NewClient()
		if err != nil {
			return err
		}
		defer client.Close()

		coord := workflow.NewCoordinator(client, settings.WorkflowConfig(provider, model, logger))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range coord.Events() {
				if quiet {
					continue
				}
				switch msg.Kind {
				case workflow.KindStreamChunk:
					fmt.Print(msg.Content)
				case workflow.KindNormal:
					if msg.Source != workflow.SourceUser {
						fmt.Printf("\n--- %s ---\n", msg.Source)
					}
				case workflow.KindToolCall:
					fmt.Printf("\n[tool] %s\n", msg.Content)
				}
			}
		}()

		result, runErr := coord.Run(ctx, requirement)
		<-done

		fmt.Printf("\n\nState: %s", result.State)
		if result.Reason != "" {
			fmt.Printf(" (%s)", result.Reason)
		}
		fmt.Printf("\nIterations: %d\n", result.Iterations)

		if result.Artifact != "" {
			banner := "Final code"
			if !result.Approved() {
				banner = "Last draft (unapproved)"
			}
			fmt.Printf("\n%s:\n\n%s\n", banner, result.Artifact)
		}

		if runErr != nil {
			return runErr
		}
		if !result.Approved() {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress streamed agent output")
}
