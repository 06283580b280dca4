package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/carebook/carebook/internal/config"
	"github.com/carebook/carebook/internal/domain/cart"
	"github.com/carebook/carebook/internal/domain/identity"
	"github.com/carebook/carebook/internal/domain/orders"
	"github.com/carebook/carebook/internal/domain/pharmacy"
	"github.com/carebook/carebook/internal/domain/scheduling"
	"github.com/carebook/carebook/internal/platform/auth"
	"github.com/carebook/carebook/internal/platform/db"
	"github.com/carebook/carebook/internal/platform/middleware"
	"github.com/carebook/carebook/internal/platform/seed"
)

func main() {
	root := &cobra.Command{
		Use:   "carebook-server",
		Short: "Appointment booking and online pharmacy API",
	}
	root.AddCommand(serveCmd(), migrateCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsDev() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			tokens := auth.TokenConfig{
				Secret: []byte(cfg.JWTSecret),
				TTL:    time.Duration(cfg.TokenTTLMinutes) * time.Minute,
			}

			identitySvc := identity.NewService(identity.NewUserRepoPG(pool), tokens)
			schedulingSvc := scheduling.NewService(scheduling.NewDoctorRepoPG(pool), scheduling.NewAppointmentRepoPG(pool))
			pharmacySvc := pharmacy.NewService(pharmacy.NewMedicineRepoPG(pool))
			cartStore := cart.NewStore(cfg.CartStateFile)
			txRunner := func(ctx context.Context, fn func(ctx context.Context) error) error {
				return db.WithTx(ctx, pool, fn)
			}
			ordersSvc := orders.NewService(orders.NewOrderRepoPG(pool), pharmacySvc, cartStore, txRunner)

			e := echo.New()
			e.HideBanner = true
			e.Use(middleware.Recovery(log.Logger))
			e.Use(middleware.RequestID())
			e.Use(middleware.Logger(log.Logger))
			e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
				AllowOrigins: cfg.CORSOrigins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
			}))
			e.Use(middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerSecond: cfg.RateLimitRPS,
				BurstSize:         cfg.RateLimitBurst,
			}))

			e.GET("/health", func(c echo.Context) error {
				return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
			})
			e.GET("/health/db", db.HealthHandler(pool))

			var authn echo.MiddlewareFunc
			if cfg.IsDev() && cfg.JWTSecret == "" {
				log.Warn().Msg("no JWT secret configured, using development auth")
				authn = auth.DevAuthMiddleware()
			} else {
				authn = auth.JWTMiddleware(tokens)
			}

			api := e.Group("/api/v1")
			authenticated := api.Group("", authn, auth.RequireAuthenticated())
			admin := api.Group("", authn, auth.RequireRole(auth.RoleAdmin))

			identity.NewHandler(identitySvc).RegisterRoutes(api, authenticated)
			scheduling.NewHandler(schedulingSvc).RegisterRoutes(api, authenticated, admin)
			pharmacy.NewHandler(pharmacySvc).RegisterRoutes(api, admin)
			cart.NewHandler(cartStore, pharmacySvc).RegisterRoutes(authenticated)
			orders.NewHandler(ordersSvc).RegisterRoutes(authenticated, admin)

			go func() {
				addr := ":" + cfg.Port
				log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
				if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("server stopped")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			<-quit

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}

func migrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	withMigrator := func(run func(ctx context.Context, m *db.Migrator) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()
			return run(ctx, db.NewMigrator(pool, cfg.MigrationsDir))
		}
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator) error {
			count, err := m.Up(ctx)
			if err != nil {
				return err
			}
			log.Info().Int("applied", count).Msg("migrations complete")
			return nil
		}),
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: withMigrator(func(ctx context.Context, m *db.Migrator) error {
			statuses, err := m.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d  %-40s %s\n", s.Version, s.Name, state)
			}
			return nil
		}),
	})

	return migrate
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo doctors, accounts, and medicines into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			tokens := auth.TokenConfig{
				Secret: []byte(cfg.JWTSecret),
				TTL:    time.Duration(cfg.TokenTTLMinutes) * time.Minute,
			}
			seeder := seed.NewSeeder(
				identity.NewService(identity.NewUserRepoPG(pool), tokens),
				scheduling.NewService(scheduling.NewDoctorRepoPG(pool), scheduling.NewAppointmentRepoPG(pool)),
				pharmacy.NewService(pharmacy.NewMedicineRepoPG(pool)),
			)
			res, err := seeder.Run(ctx)
			if err != nil {
				return err
			}
			log.Info().
				Int("users", res.Users).
				Int("doctors", res.Doctors).
				Int("appointments", res.Appointments).
				Int("medicines", res.Medicines).
				Msg("seed complete")
			return nil
		},
	}
}
