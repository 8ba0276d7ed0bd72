package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"facility-booking-backend/config"
	"facility-booking-backend/controllers"
	"facility-booking-backend/events"
	"facility-booking-backend/logger"
	"facility-booking-backend/metrics"
	"facility-booking-backend/routes"
	"facility-booking-backend/services"
)

func main() {
	cfg, loadedDotenv, err := config.Load()
	if err != nil {
		logger.NewLogger("info").Fatal("invalid configuration", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	if !loadedDotenv {
		log.Warn(".env not found; continuing with environment variables")
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid timezone", "error", err)
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("database connect failed", "error", err)
	}
	log.Info("database connected and migrated", "driver", cfg.DBDriver)

	if cfg.SeedFile != "" {
		dir, err := config.LoadDirectory(cfg.SeedFile)
		if err != nil {
			log.Fatal("load seed file", "file", cfg.SeedFile, "error", err)
		}
		if err := config.SeedDirectory(db, dir); err != nil {
			log.Fatal("seed directory", "file", cfg.SeedFile, "error", err)
		}
		log.Info("directory seeded", "file", cfg.SeedFile)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitURL != "" {
		rp, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			log.Fatal("connect rabbitmq", "error", err)
		}
		publisher = rp
		log.Info("publishing booking events", "exchange", cfg.BookingExchange)
	}
	defer func() { _ = publisher.Close() }()

	m := metrics.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	// Initialize services
	facilitySvc := services.NewFacilityService(db)
	passSvc := services.NewPassService(db, loc)
	bookingSvc := services.NewBookingService(db, facilitySvc, passSvc, loc, publisher, log, m)
	reorderSvc := services.NewReorderService(db, log, m)
	querySvc := services.NewQueryService(db, reorderSvc, loc, log)

	// Initialize controllers
	bookingController := controllers.NewBookingController(bookingSvc, querySvc, reorderSvc, loc)
	passController := controllers.NewMemberProductController(passSvc)
	facilityController := controllers.NewFacilityController(facilitySvc)

	router, err := routes.SetupRouter(cfg, log, m, bookingController, passController, facilityController)
	if err != nil {
		log.Fatal("build router", "error", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout / 2,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		return
	}
	log.Info("server stopped gracefully")
}
