package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relstore/relstore/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("configuration invalid: %w", err)
		}

		fmt.Println("Configuration valid")
		fmt.Printf("  Listen: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
		fmt.Printf("  Database: %s (%s)\n", cfg.Database.Driver, cfg.Database.DSN)
		if cfg.Schemas.URL != "" {
			fmt.Printf("  Schema source: %s\n", cfg.Schemas.URL)
		} else {
			fmt.Println("  Schema source: built-in only")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
