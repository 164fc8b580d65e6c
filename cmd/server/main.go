package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/ride-booking/internal/config"
	"github.com/iliyamo/ride-booking/internal/database"
	"github.com/iliyamo/ride-booking/internal/handler"
	"github.com/iliyamo/ride-booking/internal/logging"
	"github.com/iliyamo/ride-booking/internal/middleware"
	"github.com/iliyamo/ride-booking/internal/notify"
	"github.com/iliyamo/ride-booking/internal/queue"
	"github.com/iliyamo/ride-booking/internal/repository"
	"github.com/iliyamo/ride-booking/internal/router"
	"github.com/iliyamo/ride-booking/internal/service"
	"github.com/iliyamo/ride-booking/internal/validation"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log := logging.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("schema migration failed")
		}
		log.Info().Msg("schema applied")
	}

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable: cache, rate limit and otp disabled")
	} else {
		defer rdb.Close()
	}

	publisher := queue.NewPublisher(cfg.RabbitURL, cfg.RabbitDialTimeout)
	defer publisher.Close()
	outbox := queue.NewOutbox(publisher, 1024, 5*time.Second)
	notifier := notify.NewLogNotifier()
	v := validation.New()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	routes := repository.NewRouteRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	rides := repository.NewRideRepo(db)
	seats := repository.NewSeatRepo(db)
	bookings := repository.NewBookingRepo(db)
	activity := repository.NewActivityLogRepo(db)
	messages := repository.NewMessageRepo(db)
	addresses := repository.NewAddressRepo(db)
	hotels := repository.NewHotelRepo(db)
	employees := repository.NewEmployeeRepo(db)
	payrolls := repository.NewPayrollRepo(db)

	coordinator := service.NewCoordinator(db, users, rides, seats, bookings, v, outbox, activity)
	ledger := service.NewLedger(bookings, rides, activity)
	rideSvc := service.NewRideService(db, routes, vehicles, users, rides, seats, v, activity)
	messageSvc := service.NewMessageService(messages, notifier)
	staffSvc := service.NewStaffService(employees, payrolls, v, activity)
	var otpStore service.OTPStore
	if rdb != nil {
		otpStore = service.NewRedisOTPStore(rdb, "otp")
	}
	otpSvc := service.NewOTPService(otpStore, notifier, cfg.OTPTTL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger())
	e.Use(echomw.Recover())

	authH := handler.NewAuthHandler(cfg, users, tokens, v)
	catalogH := handler.NewCatalogHandler(routes, vehicles, users, v)
	rideH := handler.NewRideHandler(rideSvc, rides, seats)
	bookingH := handler.NewBookingHandler(coordinator, ledger)
	adminH := handler.NewAdminHandler(activity, messages, messageSvc)

	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, authH, handler.NewOTPHandler(otpSvc, v), cfg.JWTSecret)
	router.RegisterPublic(e, catalogH, rideH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterBooking(e, bookingH, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	router.RegisterAdmin(e, router.AdminHandlers{
		Auth: authH, Catalog: catalogH, Rides: rideH, Bookings: bookingH, Admin: adminH,
		Office: handler.NewOfficeHandler(addresses, hotels, users, activity, v),
		Staff:  handler.NewStaffHandler(staffSvc, employees, v),
	}, cfg.JWTSecret)

	// Stopped after the HTTP server so late bookings are still flushed.
	outboxCtx, stopOutbox := context.WithCancel(context.Background())
	defer stopOutbox()
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		outbox.Run(outboxCtx)
	}()
	go func() {
		defer wg.Done()
		consumer := queue.NewConsumer(cfg.RabbitURL, notifier, cfg.AdminPhones)
		consumer.DialTimeout = cfg.RabbitDialTimeout
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("booking consumer stopped")
		}
	}()
	go func() {
		defer wg.Done()
		messageSvc.RunScheduler(ctx, cfg.SchedulerInterval)
	}()

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	stopOutbox()
	wg.Wait()
}
