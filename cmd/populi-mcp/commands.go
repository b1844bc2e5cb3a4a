package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	mcpGoServer "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/i2y/populi-mcp/configs"
	"github.com/i2y/populi-mcp/internal/adapter/inbound/mcphttp"
	"github.com/i2y/populi-mcp/internal/domain"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "0.1.0"

const (
	transportStdio = "stdio"
	transportSSE   = "sse"
)

func newRootCommand(fsys afero.Fs) *cobra.Command {
	var transport string
	rootCmd := &cobra.Command{
		Use:   "populi-mcp",
		Short: "MCP server exposing Populi and GitHub Classroom as agent tools",
		Long: `populi-mcp serves read-only Populi and GitHub Classroom operations to an MCP host
and exports Populi course rosters for GitHub Classroom roster import.

Credentials are read from POPULI_BASE_URL, POPULI_API_KEY and GITHUB_TOKEN.
Without a subcommand it serves over stdio.`,
		Example: `  # Serve over stdio (for desktop agent hosts)
  populi-mcp

  # Serve over SSE with the admin server
  populi-mcp serve --transport sse

  # Export a roster to a file
  populi-mcp roster --term 10 --course 55 --output roster.csv`,
		SilenceUsage: true,
		Version:      version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), fsys, transport)
		},
	}
	rootCmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport mode: stdio or sse")

	rootCmd.AddCommand(
		newServeCommand(fsys),
		newRosterCommand(fsys),
		newToolsCommand(fsys),
	)
	return rootCmd
}

func newServeCommand(fsys afero.Fs) *cobra.Command {
	var transport string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools to an MCP host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), fsys, transport)
		},
	}
	cmd.Flags().StringVar(&transport, "transport", transportStdio, "Transport mode: stdio or sse")
	return cmd
}

func newRosterCommand(fsys afero.Fs) *cobra.Command {
	var (
		in     domain.ExportRosterInput
		ident  string
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Export a Populi course roster for GitHub Classroom",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configs.Load(fsys)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, newLogger(fsys, cfg, false))
			if err != nil {
				return err
			}

			in.Identifier = domain.IdentifierPolicy(ident)
			in.Format = domain.RosterFormat(format)
			out, err := a.roster.Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			}
			if err := afero.WriteFile(fsys, output, []byte(out+"\n"), 0o644); err != nil {
				return fmt.Errorf("failed to write roster to %s: %w", output, err)
			}
			a.logger.Info("Roster written.", slog.String("path", output))
			return nil
		},
	}
	cmd.Flags().Int64Var(&in.AcademicTermID, "term", 0, "Academic term ID")
	cmd.Flags().Int64Var(&in.CourseOfferingID, "course", 0, "Course offering ID")
	cmd.Flags().StringVar(&ident, "identifier", string(domain.IdentifierVisibleStudentID), "Roster identifier: visible_student_id, person_id or display_name")
	cmd.Flags().StringVar(&format, "format", string(domain.FormatCSV), "Output format: csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	_ = cmd.MarkFlagRequired("term")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func newToolsCommand(fsys afero.Fs) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := configs.Load(fsys)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, newLogger(fsys, cfg, false))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.registry.Tools())
		},
	}
}

func runServe(ctx context.Context, fsys afero.Fs, transport string) error {
	if transport != transportStdio && transport != transportSSE {
		return fmt.Errorf("invalid transport mode %q: want %s or %s", transport, transportStdio, transportSSE)
	}

	// === Configuration ===
	cfg, err := configs.Load(fsys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return err
	}

	// === Logging ===
	logger := newLogger(fsys, cfg, transport == transportStdio)
	slog.SetDefault(logger)
	logger.Info("Logger initialized.", slog.String("level", cfg.ParsedLogLevel().String()), slog.String("transport", transport))

	// === OpenTelemetry Initialization ===
	shutdownOtel, err := startTracing(ctx, tracingSettings{
		Endpoint:       cfg.OtelExporterOtlpEndpoint,
		Insecure:       cfg.OtelExporterOtlpInsecure,
		ServiceName:    cfg.ServerName,
		ServiceVersion: version,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry.", slog.Any("error", err))
		return err
	}
	defer func() {
		if err := shutdownOtel(context.Background()); err != nil {
			logger.Error("Failed to shutdown OpenTelemetry TracerProvider.", slog.Any("error", err))
		}
	}()

	// === Dependency Injection ===
	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dependencies.", slog.Any("error", err))
		return err
	}

	// === MCP Server (mark3labs/mcp-go) ===
	mcpSrv := mcpGoServer.NewMCPServer(
		cfg.ServerName,
		version,
		mcpGoServer.WithToolCapabilities(false),
	)
	registered := a.registry.Register(mcpSrv, cfg.DisabledTools)
	logger.Info("MCP server initialized.", slog.String("name", cfg.ServerName), slog.Int("tool_count", len(registered)))

	switch transport {
	case transportStdio:
		logger.Info("Starting in STDIO mode")
		stdioServer := mcpGoServer.NewStdioServer(mcpSrv)
		if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("STDIO server error", slog.Any("error", err))
			return err
		}
		return nil

	default:
		return serveSSE(ctx, a, mcpSrv, registered)
	}
}

func serveSSE(ctx context.Context, a *app, mcpSrv *mcpGoServer.MCPServer, registered []string) error {
	cfg, logger := a.cfg, a.logger
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	logger.Info("Starting in SSE mode")
	sseServer := mcpGoServer.NewSSEServer(mcpSrv, mcpGoServer.WithBaseURL("http://"+cfg.ListenAddr))

	// === Admin HTTP Server Setup ===
	adminMux := http.NewServeMux()
	mcphttp.NewHandlers(a.registry, registered, logger).RegisterAdminRoutes(adminMux)
	adminServer := &http.Server{
		Addr:    cfg.AdminAddr,
		Handler: adminMux,
	}
	go func() {
		logger.Info("Admin HTTP server starting.", slog.String("address", adminServer.Addr))
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Admin HTTP server failed to start.", slog.Any("error", err))
		}
	}()

	// === MCP SSE Server Startup ===
	go func() {
		logger.Info("MCP SSE server starting.", slog.String("address", cfg.ListenAddr))
		if err := sseServer.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("MCP SSE server failed to start.", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	// === Server Shutdown ===
	logger.Info("Shutting down servers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Admin HTTP server graceful shutdown failed.", slog.Any("error", err))
	}
	if err := sseServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("MCP SSE server graceful shutdown failed.", slog.Any("error", err))
	}
	logger.Info("Servers shut down gracefully.")
	return nil
}
