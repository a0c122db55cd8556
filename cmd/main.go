package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marcocampos/hows/internal/config"
	"github.com/marcocampos/hows/internal/server"
)

type options struct {
	configPath       string
	logLevel         string
	logFormat        string
	interpreter      string
	scriptExtensions []string
	templateDir      string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "hows",
		Short:         "hows: a minimal HTTP static-file server",
		Version:       server.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(cmd.OutOrStdout(), opts.logLevel, opts.logFormat)
			return run(cmd.Context(), opts, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", config.DefaultFileName, "Settings file, created with defaults when missing")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "json", "Log format (json, text)")
	flags.StringVar(&opts.interpreter, "interpreter", "php", "Command used to render script files")
	flags.StringSliceVar(&opts.scriptExtensions, "script-ext", []string{"php"}, "Extensions rendered by the interpreter")
	flags.StringVar(&opts.templateDir, "templates", "", "Directory with dirlist.html and error.html overrides")
	return cmd
}

func setupLogger(w io.Writer, level, format string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return slog.New(slog.NewJSONHandler(w, handlerOpts))
}

// newServer loads the settings, prepares the web root and wires the site
// into a listener-ready server.
func newServer(opts *options, logger *slog.Logger) (*server.HTTPServer, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", opts.configPath, "config", cfg.String())

	webRoot := cfg.WebRoot(opts.configPath)
	if err := os.MkdirAll(webRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create web root %s: %w", webRoot, err)
	}

	templates, err := server.LoadTemplates(opts.templateDir)
	if err != nil {
		return nil, err
	}

	site, err := server.NewSite(cfg, webRoot, logger)
	if err != nil {
		return nil, err
	}
	site.Runner = server.NewExecRunner(opts.interpreter)
	site.ScriptExtensions = opts.scriptExtensions
	site.Templates = templates

	logger.Info("serving files", "directory", site.WebRoot, "allow_dir_list", cfg.AllowDirList)
	return server.NewHTTPServer(cfg.Addr(), site, logger), nil
}

func run(ctx context.Context, opts *options, logger *slog.Logger) error {
	srv, err := newServer(opts, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			srv.Close()
		case <-done:
		}
	}()

	return srv.ListenAndServe()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
