package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"authn-simple/internal/address"
	"authn-simple/internal/config"
	apphttp "authn-simple/internal/http"
	"authn-simple/internal/passwd"
	"authn-simple/internal/repository/sqlite"
	"authn-simple/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the authentication server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authn, err := buildAuthenticator(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("initialise authenticator: %v", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	apphttp.NewHandler(authn, logger, registry, cfg.Server.Prefix).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
	return nil
}

func buildAuthenticator(ctx context.Context, cfg config.Config, logger *logrus.Logger) (*service.Authenticator, error) {
	table, err := buildPasswordTable(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.WithField("users", table.Usernames()).Debugf("users configured [%d]", table.Len())

	var gate *service.AddressGate
	if cfg.IP != "" {
		checker, err := address.NewChecker(cfg.IP)
		if err != nil {
			return nil, fmt.Errorf("ip allowlist: %w", err)
		}
		gate = service.NewAddressGate(checker)
		logger.Debugf("restricting logins to %s", cfg.IP)
	}

	return service.NewAuthenticator(service.Config{
		Passwords: table,
		Verifier:  passwd.NewVerifier(),
		Gate:      gate,
		Mechanism: cfg.Mechanism,
		Logger:    logger,
	}), nil
}

func buildPasswordTable(ctx context.Context, cfg config.Config) (service.PasswordTable, error) {
	if cfg.Users.Source != config.UserSourceSQLite {
		return service.NewPasswordTable(cfg.UserList, cfg.PasswordFor)
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return service.PasswordTable{}, fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	users := sqlite.NewUserRepository(db)
	if err := users.Init(ctx); err != nil {
		return service.PasswordTable{}, fmt.Errorf("init user repository: %w", err)
	}
	records, err := users.List(ctx)
	if err != nil {
		return service.PasswordTable{}, fmt.Errorf("list users: %w", err)
	}
	return service.PasswordTableFromRecords(records)
}
