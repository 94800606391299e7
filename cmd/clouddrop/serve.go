package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vortex-oo/clouddrop/internal/config"
	"github.com/vortex-oo/clouddrop/internal/errors"
	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/server"
	"github.com/vortex-oo/clouddrop/pkg/uploader"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload widget",
		Long: `Serve the CloudDrop widget over HTTP.

Each browser tab gets a live session. Dropped files are staged on disk
(or in S3) until they are uploaded to the CloudDrop API.

Examples:
  clouddrop serve
  clouddrop serve --addr=0.0.0.0:8080
  clouddrop serve --config=./clouddrop.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to clouddrop.json (default ./clouddrop.json if present)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address host:port (overrides the config)")

	return cmd
}

func runServe(ctx context.Context, configPath, addr string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		if err := applyAddr(cfg, addr); err != nil {
			return err
		}
	}

	logger := newLogger(cfg.LogLevel(), cfg.Log.Format).With("app", cfg.Name)
	slog.SetDefault(logger)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	go dropzone.RunCleanup(ctx, store, cfg.CleanupInterval(), cfg.TempExpiry(), func(err error) {
		logger.Warn("staging cleanup failed", "error", err)
	})

	srv := server.New(serverConfig(cfg, logger), store)

	printBanner()
	fmt.Println("  serve")
	fmt.Println()
	success("Listening on %s", cfg.URL())
	info("Staging: %s", describeStore(cfg))
	if cfg.Metrics.Disabled {
		warn("Metrics endpoint disabled")
	} else {
		info("Metrics: %s%s", cfg.URL(), cfg.Metrics.Path)
	}
	fmt.Println()

	if err := srv.Run(ctx); err != nil {
		return err
	}
	fmt.Println("\n  Shutting down...")
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.LoadOrDefault(".")
}

// applyAddr overrides the listen host and port from a host:port string.
func applyAddr(cfg *config.Config, addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.New("E122").WithDetail("Invalid address " + strconv.Quote(addr) + ": " + err.Error())
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return errors.New("E122").WithDetail("Invalid port " + strconv.Quote(portStr))
	}
	cfg.Server.Host = host
	cfg.Server.Port = port
	return cfg.Validate()
}

func openStore(ctx context.Context, cfg *config.Config) (dropzone.Store, error) {
	switch cfg.Staging.Driver {
	case config.DriverS3:
		s3cfg := cfg.Staging.S3
		store, err := dropzone.NewS3StoreFromEnv(ctx, s3cfg.Bucket, s3cfg.Prefix, s3cfg.Region, cfg.Upload.MaxFileSize)
		if err != nil {
			return nil, errors.New("E120").WithDetail("Could not configure S3 staging").Wrap(err)
		}
		return store, nil
	default:
		store, err := dropzone.NewDiskStore(cfg.Staging.Dir, cfg.Upload.MaxFileSize)
		if err != nil {
			return nil, errors.New("E120").WithDetail("Could not create staging directory " + cfg.Staging.Dir).Wrap(err)
		}
		return store, nil
	}
}

func describeStore(cfg *config.Config) string {
	if cfg.Staging.Driver == config.DriverS3 {
		return "s3://" + cfg.Staging.S3.Bucket + "/" + cfg.Staging.S3.Prefix
	}
	return cfg.Staging.Dir
}

// serverConfig maps clouddrop.json onto the server configuration.
func serverConfig(cfg *config.Config, logger *slog.Logger) *server.Config {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	scfg := server.DefaultConfig()
	scfg.Address = cfg.Address()
	scfg.ShutdownTimeout = cfg.ShutdownTimeout()
	scfg.Session.ReadTimeout = cfg.ReadTimeout()
	scfg.Session.MaxEventQueue = cfg.Session.MaxEventQueue
	scfg.Session.ClipboardTimeout = cfg.ClipboardTimeout()
	scfg.Session.UploadTimeout = cfg.UploadTimeout()
	scfg.Intake.MaxFileSize = cfg.Upload.MaxFileSize
	scfg.Registry = registry
	opts := []uploader.ClientOption{uploader.WithMetrics(uploader.NewMetrics(registry))}
	if cfg.Name != "" {
		opts = append(opts, uploader.WithTracerName(cfg.Name))
	}
	scfg.Uploader = uploader.NewClient(uploader.DefaultBaseURL, opts...)
	scfg.Logger = logger
	if cfg.Metrics.Disabled {
		scfg.MetricsPath = ""
	} else {
		scfg.MetricsPath = cfg.Metrics.Path
	}
	return scfg
}
