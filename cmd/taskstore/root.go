package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HendryAvila/taskstore/internal/config"
	taskserver "github.com/HendryAvila/taskstore/internal/server"
	"github.com/HendryAvila/taskstore/internal/storage"
	"github.com/HendryAvila/taskstore/internal/tasks"
)

// serveStdio is a package-level var so tests can run serve without stdin.
var serveStdio = func(s *server.MCPServer) error { return server.ServeStdio(s) }

func newRootCommand() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:   "taskstore",
		Short: "Persistent task backlog for AI agents, served over MCP",
		Long: "taskstore keeps a durable backlog of tasks that agents add, list, search,\n" +
			"update and delete through MCP tools. Storage is PostgreSQL or SQLite.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("database-url", "", "database URL (postgres://..., sqlite://<path>, sqlite::memory:); overrides POSTGRES_URL and DATABASE_URL")
	flags.String("log-level", "", "log level: debug, info, warn or error (env TASKS_LOG_LEVEL)")
	_ = v.BindPFlag(config.KeyURLOverride, flags.Lookup("database-url"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	root.AddCommand(
		newServeCommand(v),
		newMigrateCommand(v),
		newVersionCommand(),
	)
	return root
}

func newServeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			// stdout belongs to the MCP transport; logs go to stderr.
			logger := newLogger(cfg.LogLevel, cmd.ErrOrStderr())

			s, cleanup, err := taskserver.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			logger.Info("serving MCP on stdio", "version", taskserver.Version)
			return serveStdio(s)
		},
	}
}

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tasks table and indexes if they are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(v)
			logger := newLogger(cfg.LogLevel, cmd.ErrOrStderr())

			provider := storage.NewProvider(cfg, logger)
			defer func() { _ = provider.Close() }()

			store := tasks.New(provider, tasks.OptionsFromConfig(cfg, logger))
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if err := store.EnsureSchema(ctx); err != nil {
				if errors.Is(err, tasks.ErrNotConfigured) {
					return errors.New("no database configured: pass --database-url or set DATABASE_URL")
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "taskstore v%s\n", taskserver.Version)
		},
	}
}

// newLogger builds a text logger at the named level; unknown names mean info.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
