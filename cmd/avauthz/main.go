// Package main is the entry point for the avauthz decision service.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vyrodovalexey/avauthz/internal/authz"
	"github.com/vyrodovalexey/avauthz/internal/observability"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	listenAddr  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags)
	defer func() { _ = logger.Sync() }()

	cfg := loadConfig(flags.configPath, logger)
	engine, err := authz.NewEngine(cfg, authz.WithLogger(logger))
	if err != nil {
		logger.Error("failed to build authorization engine", observability.Error(err))
		os.Exit(1)
	}

	loader := authz.NewLoader(flags.configPath, engine, logger)
	if err := loader.Start(); err != nil {
		logger.Error("failed to watch configuration", observability.Error(err))
		os.Exit(1)
	}
	defer loader.Stop()

	runServer(flags.listenAddr, engine, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("AVAUTHZ_CONFIG_PATH", "configs/policies.yaml"),
		"Path to policy configuration file")
	listenAddr := flag.String("listen", getEnvOrDefault("AVAUTHZ_LISTEN_ADDR", ":8091"),
		"Listen address for the decision API")
	logLevel := flag.String("log-level", getEnvOrDefault("AVAUTHZ_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("AVAUTHZ_LOG_FORMAT", "json"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		listenAddr:  *listenAddr,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

// printVersion prints version information and exits.
func printVersion() {
	fmt.Printf("avauthz version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger.
func initLogger(flags cliFlags) observability.Logger {
	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// loadConfig loads and validates the policy configuration.
func loadConfig(path string, logger observability.Logger) *authz.Config {
	cfg, err := authz.LoadConfig(path)
	if err != nil {
		logger.Error("failed to load configuration",
			observability.String("path", path),
			observability.Error(err),
		)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		observability.String("path", path),
		observability.Int("policies", len(cfg.Policies)),
	)

	return cfg
}

// runServer runs the decision API until SIGINT/SIGTERM.
func runServer(addr string, engine *authz.Engine, logger observability.Logger) {
	mux := http.NewServeMux()
	mux.Handle("POST /v1/check", newCheckHandler(engine, logger))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("decision service listening", observability.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", observability.Error(err))
			os.Exit(1)
		}
	case sig := <-sigCh:
		logger.Info("shutting down", observability.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", observability.Error(err))
		}
	}
}

// getEnvOrDefault returns an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
