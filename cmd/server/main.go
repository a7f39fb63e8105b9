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

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/timetracker-api/internal/config"
	"github.com/yukikurage/timetracker-api/internal/database"
	"github.com/yukikurage/timetracker-api/internal/logger"
	"github.com/yukikurage/timetracker-api/internal/models"
	"github.com/yukikurage/timetracker-api/internal/repository"
	"github.com/yukikurage/timetracker-api/internal/router"
	"github.com/yukikurage/timetracker-api/internal/services"
	"go.uber.org/zap"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "timetracker-api",
	Short: "Time tracking API server",
	Long: `timetracker-api serves projects, tasks and time entries with an
approval workflow, rate snapshots and reports.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck
		log.Info("migrations applied", zap.String("driver", cfg.DBDriver))
		return nil
	},
}

var (
	superuserEmail    string
	superuserPassword string
	superuserName     string
)

var createSuperuserCmd = &cobra.Command{
	Use:   "create-superuser",
	Short: "Create an administrator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		notifier := services.NewNotifier(cfg, log)
		userService := services.NewUserService(repository.NewUserRepository(database.GetDB()), notifier, false, log)
		user, err := userService.CreateSuperuser(services.CreateUserInput{
			Email:       superuserEmail,
			Password:    superuserPassword,
			FullName:    superuserName,
			Role:        models.RoleAdmin,
			IsSuperuser: true,
		}, false)
		if err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}

		log.Info("superuser created", zap.Uint64("user_id", user.ID), zap.String("email", user.Email))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file")

	createSuperuserCmd.Flags().StringVar(&superuserEmail, "email", "", "account email")
	createSuperuserCmd.Flags().StringVar(&superuserPassword, "password", "", "account password")
	createSuperuserCmd.Flags().StringVar(&superuserName, "name", "", "full name")
	_ = createSuperuserCmd.MarkFlagRequired("email")
	_ = createSuperuserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, createSuperuserCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration, installs the process logger, connects to
// the database and runs migrations.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	if err := database.Connect(cfg); err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(database.GetDB()); err != nil {
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	return cfg, log, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	gin.SetMode(cfg.GinMode)

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	engine := router.New(router.Deps{
		Config:   cfg,
		DB:       database.GetDB(),
		Sessions: store,
		Notifier: services.NewNotifier(cfg, log),
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTPAddr), zap.String("session_store", cfg.SessionStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.SessionStore == "redis" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(10, "tcp", redisAddr, "", []byte(cfg.SessionSecret))
		if err != nil {
			return nil, fmt.Errorf("create redis session store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
