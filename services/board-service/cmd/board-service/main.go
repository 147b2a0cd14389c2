package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/dayboard/libs/config"
	"github.com/md-rashed-zaman/dayboard/libs/db"
	"github.com/md-rashed-zaman/dayboard/libs/httpx"
	"github.com/md-rashed-zaman/dayboard/libs/kafkax"
	otelx "github.com/md-rashed-zaman/dayboard/libs/otel"
	"github.com/md-rashed-zaman/dayboard/libs/runtime"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/board"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/calendar"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/consumer"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/events"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/fixture"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/handlers"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/storage"
	"github.com/md-rashed-zaman/dayboard/services/board-service/internal/timeline"
)

type sources struct {
	shifts   board.ShiftSource
	bookings board.BookingSource
	registry board.Registry
	ready    []runtime.ReadyCheck
	close    func()
}

func main() {
	if err := config.Load(""); err != nil {
		panic(err)
	}
	service := config.String("SERVICE_NAME", "board-service")
	port, err := config.Port("PORT", "8090")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	grid, err := gridFromConfig()
	if err != nil {
		panic(err)
	}

	src, err := openSources(ctx, logger)
	if err != nil {
		logger.Error("board sources unavailable", "err", err)
		panic(err)
	}
	defer src.close()

	brokers := config.String("KAFKA_BROKERS", "")
	var emitter board.Emitter = events.LogEmitter{Logger: logger}
	if len(kafkax.SplitBrokers(brokers)) > 0 {
		writer := events.NewKafkaWriter(brokers)
		defer writer.Close()
		emitter = events.NewPublisher(writer, logger)
	} else {
		logger.Warn("selection events logged only (no kafka brokers configured)")
	}

	fanout, err := config.Int("SHIFT_FETCH_CONCURRENCY", 8)
	if err != nil {
		panic(err)
	}
	loader := board.NewLoader(src.shifts, src.bookings, src.registry, logger).WithFanout(fanout)
	desk := board.NewDesk(board.NewStore(calendar.Today(time.Now())), loader, grid, emitter, logger)

	go func() {
		if err := desk.Select(ctx, desk.Selected()); err != nil && !board.IsCancelled(err) {
			logger.Error("initial board load failed", "err", err)
		}
	}()

	if len(kafkax.SplitBrokers(brokers)) > 0 {
		changeFeed := consumer.New(logger, desk, consumer.Config{
			Brokers: brokers,
			GroupID: config.String("KAFKA_GROUP_ID", service),
			Topics:  config.List("KAFKA_CHANGE_TOPICS", consumer.TopicBookingChanged+","+consumer.TopicShiftChanged),
		})
		go changeFeed.Run(ctx)
	}

	grpcPort, err := config.Port("GRPC_PORT", "9090")
	if err != nil {
		panic(err)
	}
	if err := startGrpcServer(ctx, logger, grpcPort, desk); err != nil {
		logger.Error("grpc server failed to start", "err", err)
	}

	checks := append(src.ready, runtime.ReadyCheck{Name: "board", Check: func(context.Context) error {
		if !desk.Loaded() {
			return board.ErrNotLoaded
		}
		return nil
	}})
	if len(kafkax.SplitBrokers(brokers)) > 0 {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewBoardHandler(desk, loader, logger).Register(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.BoardCORSPolicy(config.List("CORS_ORIGINS", ""))),
		rateLimit(logger),
		httpx.WithBodyLimit(64<<10),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "board")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "date", desk.Selected().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func gridFromConfig() (timeline.Grid, error) {
	start, err := config.Int("GRID_START_HOUR", timeline.DefaultStartHour)
	if err != nil {
		return timeline.Grid{}, err
	}
	end, err := config.Int("GRID_END_HOUR", timeline.DefaultEndHour)
	if err != nil {
		return timeline.Grid{}, err
	}
	step, err := config.Int("GRID_STEP_MINUTES", timeline.DefaultStepMinutes)
	if err != nil {
		return timeline.Grid{}, err
	}
	return timeline.NewGrid(start, end, step)
}

// openSources prefers FIXTURE_FILE for demos and local runs; otherwise the board reads
// Postgres and DATABASE_URL is required.
func openSources(ctx context.Context, logger *slog.Logger) (sources, error) {
	if path := config.String("FIXTURE_FILE", ""); path != "" {
		doc, err := fixture.Load(path)
		if err != nil {
			return sources{}, err
		}
		logger.Info("serving board from fixture", "path", path)
		return sources{shifts: doc, bookings: doc, registry: doc, close: func() {}}, nil
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		return sources{}, err
	}
	maxConns, err := config.Int("DB_MAX_CONNS", 10)
	if err != nil {
		return sources{}, err
	}
	pool, err := db.Open(ctx, dbURL, db.Options{MaxConns: int32(maxConns)})
	if err != nil {
		return sources{}, fmt.Errorf("db connection failed: %w", err)
	}
	return sources{
		shifts:   storage.NewShiftRepository(pool),
		bookings: storage.NewBookingRepository(pool),
		registry: storage.NewRegistryRepository(pool, config.List("BED_IDS", "")),
		ready:    []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}},
		close:    pool.Close,
	}, nil
}

// rateLimit guards the click endpoints. Redis is used when REDIS_ADDR is set so every
// instance shares one window.
func rateLimit(logger *slog.Logger) httpx.Middleware {
	perMinute, err := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if err != nil || perMinute <= 0 {
		return nil
	}
	failOpen := config.Bool("RATE_LIMIT_FAIL_OPEN", true)

	var limiter httpx.Limiter
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		redisDB, _ := config.Int("REDIS_DB", 0)
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       redisDB,
		})
		limiter = httpx.NewRedisRateLimiter(rdb, perMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "board-rl"))
		logger.Info("rate limiting enabled (redis)", "per_minute", perMinute, "redis_addr", addr)
	} else {
		limiter = httpx.NewRateLimiter(perMinute, time.Minute)
		logger.Info("rate limiting enabled (memory)", "per_minute", perMinute)
	}
	return httpx.RateLimit(limiter, logger, failOpen, http.MethodPost)
}
