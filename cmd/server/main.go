/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the time-value-of-money engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load TOML configuration (or defaults) and apply flag overrides
  2. Build the logrus logger
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  --config     TOML configuration file (default: built-in defaults)
  --port       HTTP server port (overrides server.port)
  --db         SQLite database path (overrides database.path)
               Use ":memory:" for in-memory database
  --log-level  Log level (overrides log.level)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with a config file
  ./server --config=./configs/server.toml

  # Run with in-memory database
  ./server --db=":memory:"

  # Run on different port with debug logging
  ./server --port=3000 --log-level=debug

ENVIRONMENT:
  $VARS in the config path and in database.path are expanded.

SEE ALSO:
  - config/config.go: Configuration schema and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/tvm-engine/api"
	"github.com/warp/tvm-engine/config"
	"github.com/warp/tvm-engine/store/sqlite"
)

const shutdownTimeout = 30 * time.Second

var (
	cfgFile  string
	port     int
	dbPath   string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Time-value-of-money engine",
	Long: `HTTP service for annuity, rate and cash-flow calculations.

Functions:
  fv, pv, pmt, nper, ipmt, ppmt  - closed-form annuity values
  rate, irr                      - Newton-Raphson solvers
  npv, mirr                      - cash-flow valuation
  amortization                   - payment schedules`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: built-in defaults)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, err
		}
	}

	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("db") {
		cfg.Database.Path = dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cfg *config.Config) error {
	logger := cfg.NewLogger()

	// Initialize store
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, api.Options{
		SolverTimeout: cfg.Solver.Timeout.Duration,
		MaxIter:       cfg.Solver.MaxIter,
		Logger:        logger,
	})

	// Create router
	router := api.NewRouter(handler, cfg.Server.CORS.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.Address(),
			"database": cfg.Database.Path,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
