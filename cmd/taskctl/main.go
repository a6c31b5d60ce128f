package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "taskctl",
		Short:         "taskctl - command-line client for the taskmanager API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", envOr("TASKMANAGER_URL", "http://localhost:8080"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.credentials, "credentials", defaultCredentialsPath(), "Credentials file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(signUpCmd(opts))
	rootCmd.AddCommand(signInCmd(opts))
	rootCmd.AddCommand(signOutCmd(opts))
	rootCmd.AddCommand(whoamiCmd(opts))
	rootCmd.AddCommand(tasksCmd(opts))
	rootCmd.AddCommand(subtasksCmd(opts))
	rootCmd.AddCommand(suggestCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
