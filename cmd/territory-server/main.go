package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/apiserver"
	"github.com/opencanvass/territory/internal/auth"
	"github.com/opencanvass/territory/internal/auth/jwt"
	"github.com/opencanvass/territory/internal/common/config"
	"github.com/opencanvass/territory/internal/database"
	"github.com/opencanvass/territory/internal/notifier"
	"github.com/opencanvass/territory/pkg/logger"
	"github.com/opencanvass/territory/pkg/metrics"
	"github.com/opencanvass/territory/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of territory-server",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("territory-server version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "territory-server",
		Short: "Territory canvassing tracker",
		Long:  `Territory server tracks canvassing territories, field trips, assignments and due-date notifications`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "configs/territory.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("starting territory-server",
		zap.String("version", version.Get()),
		zap.Int("port", cfg.Port))

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := bootstrap(db, cfg, zapLogger); err != nil {
		zapLogger.Fatal("failed to bootstrap database", zap.Error(err))
	}

	jwtService, err := jwt.NewService(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
		Duration:  cfg.JWT.Duration,
	})
	if err != nil {
		zapLogger.Fatal("invalid jwt configuration", zap.Error(err))
	}

	m := metrics.New(cfg.Metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scanner := notifier.NewScanner(db, zapLogger, m, cfg.Scanner.Interval)
	scanner.Start(ctx)
	defer scanner.Stop()

	router := apiserver.NewRouter(apiserver.Deps{
		Config:     cfg,
		DB:         db,
		Logger:     zapLogger,
		JWTService: jwtService,
		Metrics:    m,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()
	zapLogger.Info("server listening", zap.String("addr", srv.Addr))

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("forced shutdown", zap.Error(err))
	}
}

// bootstrap seeds the first administrator and the sample data on a fresh
// installation.
func bootstrap(db database.Database, cfg *config.ServerConfig, zapLogger *zap.Logger) error {
	admin := cfg.SuperAdmin
	if admin.Email == "" || admin.Password == "" {
		zapLogger.Info("no super admin configured, skipping bootstrap")
		return nil
	}
	if admin.Name == "" {
		admin.Name = "Administrator"
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return err
	}
	created, err := database.Bootstrap(context.Background(), db, admin.Name, admin.Email, hash)
	if err != nil {
		return err
	}
	if created {
		zapLogger.Warn("bootstrap administrator created, change the password after first login",
			zap.String("email", admin.Email))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
