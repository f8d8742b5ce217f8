package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-booking/internal/booking"
	"github.com/iliyamo/train-seat-booking/internal/config"
	"github.com/iliyamo/train-seat-booking/internal/database"
	"github.com/iliyamo/train-seat-booking/internal/handler"
	"github.com/iliyamo/train-seat-booking/internal/middleware"
	"github.com/iliyamo/train-seat-booking/internal/queue"
	"github.com/iliyamo/train-seat-booking/internal/repository"
	"github.com/iliyamo/train-seat-booking/internal/router"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	seatRepo := repository.NewSeatRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	// Seed the coach on first start.  An already-populated inventory is
	// left untouched so restarts never clobber bookings.
	if err := seedSeats(seatRepo, cfg); err != nil {
		log.Fatalf("seed seats: %v", err)
	}

	if n, err := tokenRepo.PurgeExpired(context.Background(), 24*time.Hour); err != nil {
		log.Printf("purge refresh tokens: %v", err)
	} else if n > 0 {
		log.Printf("purged %d expired refresh tokens", n)
	}

	uow := repository.NewUnitOfWork(db, seatRepo, bookingRepo)
	coord := booking.NewCoordinator(uow, cfg.MaxPerBooking)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	seatHandler := handler.NewSeatHandler(seatRepo, coord, cfg.Layout)
	bookingHandler := handler.NewBookingHandler(coord, bookingRepo)

	// Booking events are consumed in-process and written to a log file.
	// The consumer reconnects on its own; a missing broker only costs
	// the audit trail.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	// Redis backs both the response cache on the public seat endpoints
	// and the global token-bucket rate limiter.
	rdb := config.NewRedisClient()
	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled {
		e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	}
	cacheCfg := config.LoadCacheConfig()
	var seatReads []echo.MiddlewareFunc
	if cacheCfg.Enabled {
		seatReads = append(seatReads, middleware.NewRedisCache(cacheCfg, rdb))
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterSeats(e, seatHandler, seatReads...)
	router.RegisterBookings(e, bookingHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, seatHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, seats=%d, cap=%d)", addr, cfg.Env, cfg.Layout.TotalSeats(), cfg.MaxPerBooking)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// seedSeats inserts the configured layout when the seats table is
// empty.
func seedSeats(seats *repository.SeatRepo, cfg config.Config) error {
	ctx := context.Background()
	n, err := seats.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Printf("seeding %d seats (%d rows)", cfg.Layout.TotalSeats(), cfg.Layout.Rows())
	return seats.CreateBulk(ctx, cfg.Layout.Seats())
}
