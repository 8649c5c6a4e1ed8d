// Command careq-server runs the OPD booking and live queue API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/careq/careq/internal/config"
	"github.com/careq/careq/internal/domain/booking"
	"github.com/careq/careq/internal/domain/doctor"
	"github.com/careq/careq/internal/domain/hospital"
	"github.com/careq/careq/internal/domain/notification"
	"github.com/careq/careq/internal/domain/queue"
	"github.com/careq/careq/internal/domain/record"
	"github.com/careq/careq/internal/platform/auth"
	"github.com/careq/careq/internal/platform/db"
	"github.com/careq/careq/internal/platform/jobs"
	"github.com/careq/careq/internal/platform/middleware"
	"github.com/careq/careq/internal/platform/realtime"
	"github.com/careq/careq/pkg/location"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "careq-server",
		Short: "OPD booking and live queue API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// queueStreamAdapter exposes the queue service to the realtime gateway,
// avoiding a dependency from the platform package onto domain types.
type queueStreamAdapter struct {
	svc *queue.Service
}

func (a *queueStreamAdapter) Snapshot(ctx context.Context, queueID uuid.UUID) (interface{}, error) {
	return a.svc.Get(ctx, queueID)
}

func (a *queueStreamAdapter) AdvanceNext(ctx context.Context, queueID uuid.UUID) error {
	return a.svc.AdvanceNext(ctx, queueID)
}

func (a *queueStreamAdapter) SetItemStatus(ctx context.Context, queueID uuid.UUID, tokenNumber int, status string) error {
	return a.svc.SetItemStatus(ctx, queueID, tokenNumber, status)
}

func (a *queueStreamAdapter) CheckAlerts(ctx context.Context, queueID uuid.UUID) error {
	return a.svc.CheckAlerts(ctx, queueID)
}

// crowdPayload is the crowd-update event body.
type crowdPayload struct {
	HospitalID uuid.UUID `json:"hospitalId"`
	Booked     int       `json:"booked"`
	queue.CrowdLevel
}

// crowdReporter classifies a hospital's load from today's booked
// appointment count. An unknown hospital yields NotFound, which the
// gateway drops without broadcasting.
type crowdReporter struct {
	bookings *booking.Service
}

func (r *crowdReporter) CrowdFor(ctx context.Context, hospitalID uuid.UUID) (interface{}, error) {
	booked, err := r.bookings.CountForHospitalDay(ctx, hospitalID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return crowdPayload{
		HospitalID: hospitalID,
		Booked:     booked,
		CrowdLevel: queue.ClassifyCrowd(booked),
	}, nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	}

	// Realtime hub
	hub := realtime.NewHub(logger)

	// Repositories
	hospitalRepo := hospital.NewRepoPG(pool)
	doctorRepo := doctor.NewRepoPG(pool)
	queueRepo := queue.NewRepoPG(pool)
	bookingRepo := booking.NewRepoPG(pool)
	notificationRepo := notification.NewRepoPG(pool)
	recordRepo := record.NewRepoPG(pool)

	// Services
	hospitalSvc := hospital.NewService(hospitalRepo)
	doctorSvc := doctor.NewService(doctorRepo)
	queueSvc := queue.NewService(queueRepo, hub, logger)
	bookingSvc := booking.NewService(bookingRepo, hospitalRepo, doctorRepo)
	notificationSvc := notification.NewService(notificationRepo, hub, logger)
	recordSvc := record.NewService(recordRepo, notificationSvc)

	// Realtime gateway
	gateway := realtime.NewGateway(hub,
		&queueStreamAdapter{svc: queueSvc},
		&crowdReporter{bookings: bookingSvc},
		logger)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})

	apiV1 := e.Group("/api/v1")

	hospital.NewHandler(hospitalSvc).RegisterRoutes(apiV1)
	doctor.NewHandler(doctorSvc).RegisterRoutes(apiV1)
	queue.NewHandler(queueSvc).RegisterRoutes(apiV1)
	booking.NewHandler(bookingSvc).RegisterRoutes(apiV1)
	notification.NewHandler(notificationSvc).RegisterRoutes(apiV1)
	record.NewHandler(recordSvc).RegisterRoutes(apiV1)

	apiV1.GET("/locations/states", func(c echo.Context) error {
		return c.JSON(http.StatusOK, location.States())
	})
	apiV1.GET("/locations/states/:state/districts", func(c echo.Context) error {
		districts := location.Districts(c.Param("state"))
		if len(districts) == 0 {
			return echo.NewHTTPError(http.StatusNotFound, "unknown state")
		}
		return c.JSON(http.StatusOK, districts)
	})

	gateway.RegisterRoutes(e.Group(""))

	// Nightly housekeeping
	runner := jobs.NewRunner(logger)
	if err := runner.Register(cfg.QueueCloseSpec, "close-stale-queues", func(ctx context.Context) error {
		_, err := queueSvc.CloseStale(ctx)
		return err
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule queue close job")
	}
	runner.Start()
	defer runner.Stop()

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
