package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/relstore/relstore/bootstrap"
	"github.com/relstore/relstore/config"
)

var (
	hotReload bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the store server",
	Long: `Start the relstore server.

The server will:
  - Load configuration from relstore.yaml (or --config)
  - Or load configuration from RELSTORE_* environment variables
  - Open the resource database
  - Serve the store API, auth endpoints, and metrics

Environment variables (for Docker deployments):
  RELSTORE_DATABASE_DRIVER  - Persistence driver: sqlite or memory
  RELSTORE_DATABASE_DSN     - Database path (default: relstore.db)
  RELSTORE_SERVER_PORT      - Server port (default: 8080)
  RELSTORE_SCHEMAS_URL      - Base URL of the remote schema source
  RELSTORE_LOG_LEVEL        - Log level: debug, info, warn, error

Examples:
  relstore serve
  relstore serve --config /etc/relstore/config.yaml
  relstore serve --hot-reload=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&hotReload, "hot-reload", true, "enable hot reload of configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	hasConfigFile := false
	if _, err := os.Stat(cfgFile); err == nil {
		hasConfigFile = true
	}

	var (
		app *bootstrap.App
		err error
	)
	if hotReload && hasConfigFile {
		app, err = bootstrap.NewWithHotReload(cfgFile)
	} else {
		var cfg *config.Config
		cfg, err = config.LoadWithFallback(cfgFile)
		if err == nil {
			app, err = bootstrap.New(cfg)
		}
	}
	if err != nil {
		return err
	}

	return app.Run()
}
