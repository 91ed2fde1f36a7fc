package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	html "github.com/gofiber/template/html/v2"

	"zando/internal/backend"
	"zando/internal/catalog"
	"zando/internal/config"
	"zando/internal/events"
	"zando/internal/http/handlers"
	applog "zando/internal/log"
	"zando/internal/repos"
)

func main() {
	cfg := config.Load()
	lg := applog.Logger()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			lg.Warn().Err(err).Str("file", cfg.LogFile).Msg("could not open log file")
		} else {
			defer f.Close()
			applog.SetOutput(io.MultiWriter(os.Stdout, f))
			lg = applog.Logger()
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		lg.Fatal().Err(err).Msg("open session store")
	}
	defer db.Close()

	sealer, err := repos.NewSealer(cfg.SessionSecret)
	if err != nil {
		lg.Fatal().Err(err).Msg("session sealer")
	}
	users := repos.NewUserRepo(db, sealer)
	if purged, err := users.PurgeExpired(time.Now()); err != nil {
		lg.Warn().Err(err).Msg("purge expired sessions")
	} else if len(purged) > 0 {
		lg.Info().Int("sessions", len(purged)).Msg("purged expired sessions")
	}

	// Catalog cache: redis when configured, process memory otherwise
	var cache catalog.Cache = catalog.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			lg.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, caching in memory")
			_ = rdb.Close()
		} else {
			cache = catalog.NewRedisCache(rdb)
			defer rdb.Close()
		}
		cancel()
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer pub.Close()

	api := backend.New(cfg.APIBaseURL, cfg.APITimeout, cfg.APIRate)
	deps := handlers.NewDeps(api, users, cfg, cache, pub)

	// Templates & app
	engine := html.New("./web/templates", ".html")
	engine.Reload(true)
	app := handlers.NewApp(deps, handlers.AppConfig{
		Views:      engine,
		StaticDir:  cfg.StaticDir,
		AccessLog:  true,
		RateLimit:  60,
		LoginLimit: 5,
	})

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		lg.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			lg.Warn().Err(err).Msg("shutdown")
		}
	}()

	lg.Info().Str("port", cfg.Port).Str("api", cfg.APIBaseURL).Msg("listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		lg.Fatal().Err(err).Msg("listen")
	}
}
