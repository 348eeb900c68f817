package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "researchctl",
		Short: "CLI client for the research service REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "research service base URL")

	researchCmd := &cobra.Command{
		Use:   "research <query>",
		Short: "Run a research workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, _ := cmd.Flags().GetString("session")
			numSources, _ := cmd.Flags().GetInt("sources")
			return runResearch(apiFlag, args[0], sessionID, numSources, os.Stdout)
		},
	}
	researchCmd.Flags().StringP("session", "s", "", "existing session ID to continue")
	researchCmd.Flags().IntP("sources", "n", 0, "number of sources (0 lets the planner decide)")
	rootCmd.AddCommand(researchCmd)

	followUpCmd := &cobra.Command{
		Use:   "follow-up <query>",
		Short: "Ask a follow-up question against a session's sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, _ := cmd.Flags().GetString("session")
			if sessionID == "" {
				return fmt.Errorf("--session required")
			}
			return runFollowUp(apiFlag, args[0], sessionID, os.Stdout)
		},
	}
	followUpCmd.Flags().StringP("session", "s", "", "session ID (required)")
	rootCmd.AddCommand(followUpCmd)

	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage research sessions",
	}
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsList(apiFlag, os.Stdout)
		},
	})
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessionsDelete(apiFlag, args[0], os.Stdout)
		},
	})
	rootCmd.AddCommand(sessionsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
