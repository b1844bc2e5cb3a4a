package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/afero"

	"github.com/i2y/populi-mcp/configs"
	"github.com/i2y/populi-mcp/internal/adapter/outbound/credentials"
	"github.com/i2y/populi-mcp/internal/adapter/outbound/github"
	"github.com/i2y/populi-mcp/internal/adapter/outbound/httpinvoker"
	"github.com/i2y/populi-mcp/internal/adapter/outbound/populi"
	"github.com/i2y/populi-mcp/internal/usecase"
)

// app is the wired dependency graph shared by every command.
type app struct {
	cfg      *configs.Config
	logger   *slog.Logger
	registry *usecase.Registry
	roster   *usecase.ExportRosterUseCase
}

// newLogger builds the process logger. In stdio mode the protocol owns stdout,
// so logs go to the configured file, or nowhere if it cannot be opened.
func newLogger(fsys afero.Fs, cfg *configs.Config, toFile bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.ParsedLogLevel()}
	if !toFile {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	logFile, err := fsys.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, opts))
	}
	return slog.New(slog.NewTextHandler(logFile, opts))
}

// newApp wires the upstream clients, the operation handlers and the registry.
func newApp(cfg *configs.Config, logger *slog.Logger) (*app, error) {
	// Zero timeout leaves requests bounded only by the caller's context.
	httpClient := &http.Client{
		Timeout: cfg.HTTPClientTimeout,
	}
	logger.Debug("HTTP Client configured.", slog.Duration("timeout", cfg.HTTPClientTimeout))

	invoker := httpinvoker.New(httpClient, logger)
	resolver := credentials.New(cfg.CredentialSettings(), logger)
	populiAPI := populi.New(invoker, resolver, logger)
	classroomAPI := github.NewClassroomClient(invoker, resolver, logger)

	roster := usecase.NewExportRosterUseCase(populiAPI, logger)
	registry, err := usecase.NewRegistry(
		usecase.NewPopuliTools(populiAPI, logger),
		roster,
		usecase.NewClassroomTools(classroomAPI, logger),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build tool registry: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		roster:   roster,
	}, nil
}
