package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mintaslang/dew/internal/config"
	"github.com/mintaslang/dew/internal/logging"
	"github.com/mintaslang/dew/internal/server"
	"github.com/mintaslang/dew/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	Long: `Start the server with the configured routes and static mappings.

Handlers come from an embedding host; standalone, serve answers static
files and templates, which is enough for previewing a site.

Examples:
  dew serve
  dew serve --port 3000
  dew serve --static /=./public --static /assets/=./assets
  dew serve --fast-reload`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "127.0.0.1", "Host to bind to")
	serveCmd.Flags().String("template-dir", "templates", "Template directory")
	serveCmd.Flags().Bool("fast-reload", false, "Invalidate templates on change")
	serveCmd.Flags().StringSlice("static", nil, "Static mapping as prefix=dir (repeatable)")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.template_dir", serveCmd.Flags().Lookup("template-dir"))
	viper.BindPFlag("server.fast_reload", serveCmd.Flags().Lookup("fast-reload"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	srv := server.New(cfg, logger, nil)

	statics, _ := cmd.Flags().GetStringSlice("static")
	for _, mapping := range statics {
		prefix, dir, found := strings.Cut(mapping, "=")
		if !found {
			return fmt.Errorf("static mapping %q must be prefix=dir", mapping)
		}
		srv.AddStatic(prefix, dir)
	}
	srv.AddMiddleware("logger")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Server.FastReload {
		tw, err := watcher.New(cfg.Server.TemplateDir, srv.Renderer(), logger)
		if err != nil {
			logger.Warn(ctx, err, "template watching disabled")
		} else {
			tw.Start(ctx)
			defer tw.Stop()
		}
	}

	return srv.ListenAndServe(ctx)
}
