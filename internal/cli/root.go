package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	outputFormat string
	verbose      bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	envConfig := os.Getenv("CODEQUEST_CONFIG")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	rootCmd := &cobra.Command{
		Use:   "codequest",
		Short: "CLI for the CodeQuest trivia game",
		Long: `codequest is the command-line surface of the CodeQuest trivia game.

It plays rounds interactively, manages users and the question bank,
shows the XP ranking, and runs database migrations.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "Config file path (env: CODEQUEST_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	// Add subcommands
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newUserCmd())
	rootCmd.AddCommand(newRankingCmd())
	rootCmd.AddCommand(newQuestionCmd())
	rootCmd.AddCommand(newMigrateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
