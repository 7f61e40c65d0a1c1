package main

import (
	"context"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/evalforge/notifykit/pkg/config"
	"github.com/evalforge/notifykit/pkg/httpserver"
	"github.com/evalforge/notifykit/pkg/logger"
	"github.com/evalforge/notifykit/pkg/redis"
	"github.com/evalforge/notifykit/pkg/relay"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("relayd exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	_ = config.LoadEnv()

	var cfg relay.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(logger.WithEnvironment(os.Getenv("APP_ENV"), "relayd"))
	logger.SetAsDefault(log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []relay.ServerOption{relay.WithLogger(log)}

	// The Redis bridge is optional: without REDIS_URL the relay serves
	// only /emit and scenario traffic.
	var client goredis.UniversalClient
	if os.Getenv("REDIS_URL") != "" {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return err
		}
		c, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer c.Close()
		client = c
		opts = append(opts, relay.WithReadyCheck(redis.Healthcheck(client)))
	}

	srv := relay.NewServer(cfg, opts...)

	if client != nil {
		bridge := relay.NewBridge(client, cfg.RedisChannel, srv.Publisher(), log)
		go func() {
			if err := bridge.Run(ctx); err != nil && ctx.Err() == nil {
				log.ErrorContext(ctx, "redis bridge stopped", slog.Any("error", err))
			}
		}()
	}

	if cfg.ScenarioPath != "" {
		sc, err := relay.LoadScenario(cfg.ScenarioPath)
		if err != nil {
			return err
		}
		player := relay.NewPlayer(sc, srv.Publisher(), log)
		go func() {
			if err := player.Run(ctx); err != nil && ctx.Err() == nil {
				log.ErrorContext(ctx, "scenario player stopped", slog.Any("error", err))
			}
		}()
	}

	httpSrv := httpserver.New(
		httpserver.WithAddr(cfg.Addr),
		httpserver.WithLogger(log),
	)
	return httpSrv.Run(ctx, srv.Handler())
}
