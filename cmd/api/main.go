package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/collabtrack/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "collabtrack",
		Short: "CollabTrack API Server",
		Long:  `CollabTrack is a collaborative project and task tracking service with shared projects, embedded task checklists and in-app notifications.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewNotificationsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
