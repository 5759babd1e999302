package main // Entry point package

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

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/router"
	"github.com/iliyamo/hotel-booking/internal/service"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("server: %v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	rlCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		return err
	}
	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		return err
	}
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		return err
	}
	rdb := config.NewRedisClient(redisCfg) // nil disables cache and rate limit
	if rdb != nil {
		defer rdb.Close()
	}

	keyFunc, closeKeys, err := newKeyfunc(cfg)
	if err != nil {
		return err
	}
	defer closeKeys()

	users := repository.NewUserRepo(db)
	hotels := repository.NewHotelRepo(db)
	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)

	var publisher booking.Publisher
	if p := service.NewQueuePublisher(cfg.RabbitMQURL); p != nil {
		publisher = p
	}
	engine := booking.NewEngine(bookings, rooms, publisher)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				log.Printf("%s %s %d %s err=%v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			log.Printf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	limit := middleware.NewTokenBucket(rlCfg, rdb)
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	auth := router.Authenticated(keyFunc, users)

	bh := handler.NewBookingHandler(engine, hotels)
	rh := handler.NewRoomHandler(rooms, hotels, engine)

	router.RegisterRoutes(e, db)
	if cfg.JWTSecret != "" {
		router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, repository.NewTokenRepo(db)), keyFunc, limit)
	}
	router.RegisterPublic(e, bh, rh, cache)
	router.RegisterGuest(e, bh, handler.NewUserHandler(users), handler.NewHotelHandler(hotels), auth, limit)
	router.RegisterOwner(e, bh, rh, auth, limit, middleware.InvalidateOnWrite(middleware.PurgeRedisCache(cacheCfg, rdb)))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})
	if cfg.RabbitMQURL != "" {
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Dir: cfg.BookingLogDir}
		g.Go(func() error {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// newKeyfunc accepts locally issued HS256 tokens when JWT_SECRET is set and
// identity provider tokens when JWKS_URL is set.  The returned func stops
// the background JWKS refresh.
func newKeyfunc(cfg config.Config) (jwt.Keyfunc, func(), error) {
	var fns []jwt.Keyfunc
	closeKeys := func() {}
	if cfg.JWTSecret != "" {
		fns = append(fns, utils.HMACKeyfunc(cfg.JWTSecret))
	}
	if cfg.JWKSURL != "" {
		jwks, end, err := utils.JWKSKeyfunc(cfg.JWKSURL, cfg.JWKSRefresh)
		if err != nil {
			return nil, nil, err
		}
		fns = append(fns, jwks)
		closeKeys = end
	}
	if len(fns) == 1 {
		return fns[0], closeKeys, nil
	}
	return utils.ChainKeyfuncs(fns...), closeKeys, nil
}
