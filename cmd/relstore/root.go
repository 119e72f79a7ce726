package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "relstore",
	Short: "Schema-validated object store with relationship-aware documents",
	Long: `Relstore is a self-hosted object store.

Submitted resources are validated against per-type schemas, stored
canonically, and served as linked documents with forward and reverse
relationships resolved on read.

Quick start:
  relstore serve     # Start the server
  relstore validate  # Validate configuration`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "relstore.yaml", "config file path")
}
