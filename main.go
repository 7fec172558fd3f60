package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soilq/soilq-api/cart"
	"github.com/soilq/soilq-api/catalog"
	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/controllers"
	"github.com/soilq/soilq-api/middleware"
	"github.com/soilq/soilq-api/services"
	"github.com/soilq/soilq-api/soil"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	measurement soil.Measurement
)

var rootCmd = &cobra.Command{
	Use:   "soilq-api",
	Short: "SoilQ API - soil assessment and agri-input shop backend",
	// configuration and logging for every subcommand
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		config.SetConfig(cfg)

		logger, err = config.InitLogger(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return connectAndMigrate()
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in product catalog into an empty products table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := connectAndMigrate(); err != nil {
			return err
		}
		n, err := catalog.New(config.GetDB()).Seed(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d products\n", n)
		return nil
	},
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess one soil test and print the result as JSON",
	// needs no database, only a logger
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = config.InitLogger("warn")
		return err
	},
	RunE: runAssess,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, assessCmd)

	f := assessCmd.Flags()
	f.Float64Var(&measurement.Nitrogen, "nitrogen", 0, "Nitrogen in mg/kg")
	f.Float64Var(&measurement.Phosphorus, "phosphorus", 0, "Phosphorus in mg/kg")
	f.Float64Var(&measurement.Potassium, "potassium", 0, "Potassium in mg/kg")
	f.Float64Var(&measurement.PH, "ph", 0, "Soil pH (0-14)")
	f.Float64Var(&measurement.Moisture, "moisture", 0, "Moisture in percent")
	for _, name := range []string{"nitrogen", "phosphorus", "potassium", "ph", "moisture"} {
		_ = assessCmd.MarkFlagRequired(name)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAssess(cmd *cobra.Command, args []string) error {
	if err := services.ValidateMeasurement(measurement); err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(soil.Assess(measurement))
}

func connectAndMigrate() error {
	if err := config.ConnectDatabase(cfg); err != nil {
		return err
	}
	if err := config.AutoMigrate(config.GetDB()); err != nil {
		return err
	}
	zap.L().Info("database migration completed")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := connectAndMigrate(); err != nil {
		return err
	}
	if _, err := catalog.New(config.GetDB()).Seed(ctx); err != nil {
		return err
	}
	if _, err := services.InitStorage(ctx, cfg); err != nil {
		return fmt.Errorf("failed to set up report storage: %w", err)
	}

	if cfg.RedisURL != "" {
		store, err := cart.NewRedisStoreFromURL(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer store.Close()
		controllers.SetCartStore(store)
		zap.L().Info("cart sessions stored in redis")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(cfg, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.GoEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
