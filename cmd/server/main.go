package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/logger"
	"github.com/iliyamo/hotel-booking/internal/middleware"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/router"
	"github.com/iliyamo/hotel-booking/internal/service"
	"github.com/iliyamo/hotel-booking/internal/tracing"
	"github.com/iliyamo/hotel-booking/internal/utils"
)

func main() {
	cfg, err := config.Load() // Load environment config
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, logCloser := logger.New(cfg.Log)
	defer logCloser.Close()
	if cfg.DevSecret {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
	}

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited")
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracer, shutdownTracing, err := tracing.Setup(cfg.Tracing, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(cctx); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else if cfg.Redis.Enabled {
		log.Warn().Str("addr", cfg.Redis.Addr).Msg("redis unreachable, cache and rate limiting fall back to local mode")
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb, log)

	events, closeEvents := startEvents(ctx, cfg, log)
	defer closeEvents.Close()

	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	e := router.New(router.Deps{
		Cfg:      cfg,
		Log:      log,
		Tokens:   tokens,
		Redis:    rdb,
		Cache:    cache,
		Users:    service.NewAccountService(model.RoleUser, store.Users, hasher, tokens, tracer, log),
		Admins:   service.NewAccountService(model.RoleAdmin, store.Admins, hasher, tokens, tracer, log),
		Hotels:   service.NewHotelService(store.Hotels, cache, tracer, log),
		Bookings: service.NewBookingService(store.Bookings, store.Hotels, store.Users, events, tracer, log),
	})

	addr := ":" + cfg.Port // Address string with port
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// openStore connects the backend selected by STORE_DRIVER and prepares its
// schema or indexes.
func openStore(ctx context.Context, cfg config.Config, log zerolog.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return repository.Store{}, err
		}
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return repository.Store{}, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info().Str("db", cfg.MongoDB).Msg("connected to MongoDB")
		return repository.NewMongoStore(db), nil

	case config.DriverMySQL:
		db, err := database.OpenMySQL(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return repository.Store{}, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return repository.Store{}, err
		}
		log.Info().Str("db", cfg.DBName).Msg("connected to MySQL")
		return repository.NewMySQLStore(db), nil

	default:
		log.Warn().Msg("using the in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil
	}
}

// startEvents returns the booking event publisher and, when configured,
// runs the consumer in the background until ctx is cancelled.
func startEvents(ctx context.Context, cfg config.Config, log zerolog.Logger) (service.EventPublisher, io.Closer) {
	var none io.Closer = closerFunc(func() error { return nil })
	if !cfg.Broker.Enabled {
		return service.NoopPublisher{}, none
	}
	pub := service.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Queue, log)
	if !cfg.Broker.StartConsume {
		return pub, none
	}

	sink, sinkCloser, err := logger.NewFile(cfg.Broker.BookingLog, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.Broker.BookingLog).Msg("booking log unavailable, consumer not started")
		return pub, none
	}
	go func() {
		err := queue.StartBookingConsumer(ctx, cfg.Broker.URL, cfg.Broker.Queue, log, sink)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("booking consumer stopped")
		}
	}()
	return pub, sinkCloser
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
