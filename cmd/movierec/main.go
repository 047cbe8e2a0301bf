// Command movierec 启动电影推荐 HTTP 服务。
//
//	movierec -config configs/movierec.yaml
//
// 所有配置项都可以用 MOVIEREC_ 前缀的环境变量覆盖，例如
// MOVIEREC_ENGINE__MIN_RATINGS=50 或 MOVIEREC_CACHE__BACKEND=redis。
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/engine"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/logging"
	"github.com/rushteam/movierec/server"
	"github.com/rushteam/movierec/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $MOVIEREC_CONFIG)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.Cache.Backend).Msg("open cache")
	}
	if cache != nil {
		defer cache.Close()
	}

	opts := engine.Options{
		MinRatings:         cfg.Engine.MinRatings,
		TopN:               cfg.Engine.TopN,
		MinCommonUsers:     cfg.Engine.MinCommonUsers,
		PopularN:           cfg.Engine.PopularN,
		TopRatedMinRatings: cfg.Engine.TopRatedMinRatings,
		UserMinSupport:     cfg.Engine.UserMinSupport,
		Blacklist:          cfg.Engine.Blacklist,
		Cache:              cache,
		CacheTTL:           cfg.Cache.TTL(),
	}
	if cfg.Engine.PipelinePath != "" {
		pc, err := pipeline.LoadFile(cfg.Engine.PipelinePath)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Engine.PipelinePath).Msg("load pipeline")
		}
		opts.Pipeline = pc
	}

	eng, err := engine.New(engine.NewLoader(engine.FileLoadFunc(cfg.Data.RatingsPath, cfg.Data.TitlesPath)), opts)
	if err != nil {
		logging.Fatal().Err(err).Msg("create engine")
	}

	// 加载失败不退出：/healthz 返回 503，查询返回 503
	go func() {
		if err := eng.Warmup(ctx); err != nil {
			logging.Error().Err(err).Msg("warmup failed")
		}
	}()

	srv := server.New(eng, server.Config{
		Addr:              cfg.Server.Addr,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitRequests,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})
	if err := srv.Run(ctx); err != nil {
		logging.Fatal().Err(err).Msg("http server")
	}
	logging.Info().Msg("bye")
}

func openCache(ctx context.Context, cfg config.CacheConfig) (core.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		rs, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, nil
	}
}
