// Package app wires configuration into a ready service for both binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"lso-service/internal/cache"
	"lso-service/internal/config"
	"lso-service/internal/lock"
	"lso-service/internal/models"
	"lso-service/internal/service"
	"lso-service/internal/storage"
	slogpretty "lso-service/pkg/handlers/slogPretty"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

type App struct {
	Service *service.Service
	Storage storage.Storage

	redis *redis.Client
	log   io.Closer
}

// New opens storage, applies the schema and picks redis or in-process
// cache and locks depending on cfg.Redis.Addr. logFile, when not nil, is
// closed by Close, or right away if New fails.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger, logFile io.Closer) (_ *App, err error) {
	const op = "app.New"

	a := &App{log: logFile}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	store, err := storage.New(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.Storage = store

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		c      cache.Cache
		locker lock.Locker
	)
	if cfg.Redis.Addr != "" {
		client, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.redis = client
		c = cache.NewRedis(client, cfg.Cache.TTL)
		locker = lock.NewRedisLock(client)
		log.Info("Using redis cache and locks", slog.String("addr", cfg.Redis.Addr))
	} else {
		c = cache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL)
		locker = lock.NewLocal()
		log.Info("Using in-process cache and locks")
	}

	a.Service = service.NewService(store, locker,
		service.WithCache(c),
		service.WithLogger(log.With(slog.String("component", "service"))),
		service.WithScoring(Scoring(cfg.Scoring)),
		service.WithLockTTL(cfg.Lock.TTL),
		service.WithParish(cfg.Parish),
	)

	return a, nil
}

// Scoring converts the configured points per event type code, ignoring
// unknown codes.
func Scoring(points map[string]int) map[models.EventType]int {
	out := make(map[models.EventType]int, len(points))
	for code, p := range points {
		if t := models.EventType(code); t.Valid() {
			out[t] = p
		}
	}
	return out
}

func (a *App) Close() error {
	var errs []error
	if a.Storage != nil {
		errs = append(errs, a.Storage.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.log != nil {
		errs = append(errs, a.log.Close())
	}
	return errors.Join(errs...)
}

// SetupLogger returns the logger for env. With logFile set, JSON output goes
// to a rotating file instead of stdout.
func SetupLogger(env, logFile string) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer

	if logFile != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
		out, closer = rotator, rotator
	}

	var log *slog.Logger
	switch env {
	case envLocal:
		if logFile == "" {
			log = setupPrettySlog()
			break
		}
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
		log.Warn("Unknown env, using prod logging", slog.String("env", env))
	}

	return log, closer
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
