package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nimbus",
	Short: "Nimbus is an in-memory emulator for a family of AWS data-plane services.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
