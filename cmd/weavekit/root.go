package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/drblury/weavekit/config"
	"github.com/drblury/weavekit/internal/server"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commitSHA = ""
)

func versionString() string {
	if commitSHA != "" {
		return version + "+" + commitSHA
	}
	return version
}

type appState struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger
}

type appKey struct{}

func appFrom(cmd *cobra.Command) (*appState, error) {
	app, ok := cmd.Context().Value(appKey{}).(*appState)
	if !ok {
		return nil, errors.New("internal error: app state missing from command context")
	}
	return app, nil
}

// newServer assembles the application described by the loaded config.
func (a *appState) newServer() (*server.Server, error) {
	return server.New(a.cfg, a.logger)
}

func newRootCmd() *cobra.Command {
	app := &appState{}

	root := &cobra.Command{
		Use:   "weavekit",
		Short: "Serve and document the weavekit items API",
		Long: "weavekit serves the demo items API with request validation and\n" +
			"exports the OpenAPI document assembled from its registered endpoints.\n\n" +
			"Configuration is read from --config and WEAVEKIT_ environment variables,\n" +
			"e.g. WEAVEKIT_SERVER_ADDR=:9090 or WEAVEKIT_LOG_LEVEL=debug.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(app.configPath)
			if err != nil {
				return err
			}
			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			app.cfg, app.logger = cfg, logger

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(context.WithValue(ctx, appKey{}, app))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "Path to a YAML config file")

	root.SetVersionTemplate("{{.Version}}\n")
	root.Version = versionString()

	root.AddCommand(newServeCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newRoutesCmd())
	root.AddCommand(newVersionCmd())
	return root
}
