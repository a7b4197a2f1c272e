package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agit-dev/agit/pkg/config"
	"github.com/agit-dev/agit/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "agit",
	Short: "agit - a version-control engine for AI agent state",
	Long: `agit versions an AI agent's memory and world_state the way git
versions source code: every tool call, LLM response, or rollback becomes
a commit, branches isolate speculative attempts, and commits merge back
together with a three-way field-level merge.`,
	Version: fmt.Sprintf("%s (commit %s)", Version, Commit),
	// Values from config.Load (the config file, with config.Defaults()
	// for fields it leaves unset) fill in any flag the user did not set
	// explicitly; explicit flags always win.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dataDir := dataDirFlag(cmd)
		cfg, err := config.Load(config.Path(dataDir))
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if !cmd.Flags().Changed("author") && cfg.Author != "" {
			cmd.Flags().Set("author", cfg.Author)
		}
		if !cmd.Flags().Changed("log-level") && cfg.LogLevel != "" {
			cmd.Flags().Set("log-level", cfg.LogLevel)
		}
		if !cmd.Flags().Changed("log-json") && cfg.LogJSON {
			cmd.Flags().Set("log-json", "true")
		}
		if !cmd.Flags().Changed("gc-every") && cfg.GCEvery != 0 {
			cmd.Flags().Set("gc-every", fmt.Sprintf("%d", cfg.GCEvery))
		}
		initLogging(cmd)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "./agit-data", "Repository data directory (':memory:' for an ephemeral repo)")
	rootCmd.PersistentFlags().String("author", defaultAuthor(), "Author recorded on commits this command makes")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().Int("gc-every", 0, "Auto-run GC after every Nth commit made through the engine (0 disables)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(revertCmd)
	rootCmd.AddCommand(gcCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(retryCmd)
	rootCmd.AddCommand(swarmCmd)
}

func initLogging(cmd *cobra.Command) {
	logLevel, _ := cmd.Flags().GetString("log-level")
	logJSON, _ := cmd.Flags().GetBool("log-json")
	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func defaultAuthor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "agit"
}
