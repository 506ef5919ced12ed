package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/config"
	"weekly-quiz-service/internal/infra/memory"
	pgloader "weekly-quiz-service/internal/infra/postgres"
	rediscache "weekly-quiz-service/internal/infra/redis"
	"weekly-quiz-service/internal/infra/store"
	"weekly-quiz-service/internal/infra/youtube"
	"weekly-quiz-service/internal/logging"
	"weekly-quiz-service/internal/mediaref"
	transport "weekly-quiz-service/internal/transport/http"
)

const serviceName = "quiz-service"

// runtime is everything a command needs, built from config.
type runtime struct {
	cfg      config.Config
	log      *logrus.Entry
	store    *store.Store
	services transport.Services

	closers []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func loadConfig(configPath string) (config.Config, *logrus.Entry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, logging.New(serviceName, cfg.Log.Level), nil
}

// openStore connects and migrates the relational store.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	db, err := store.Open(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store.New(db), nil
}

func newRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, log: log}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt.store = st
	rt.closers = append(rt.closers, func() { _ = st.Close() })

	loc, err := cfg.Location()
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("schedule timezone: %w", err)
	}

	var loader memory.AnswerKeyLoader = st
	if cfg.Database.Driver == "postgres" {
		pool, err := pgxpool.Connect(ctx, cfg.Database.URL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("connect answer key pool: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		loader = pgloader.NewAnswerKeyLoader(pool)
	}

	ttl := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	var keys app.AnswerKeys
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { _ = client.Close() })
		keys = rediscache.NewAnswerKeyCache(client, loader, ttl)
	} else {
		keys = memory.NewAnswerKeyCache(loader, ttl)
	}

	obf, err := mediaref.NewObfuscator(cfg.Security.ObfuscationKey)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("obfuscation key: %w", err)
	}
	source := youtube.NewSource(config.TTLDuration(cfg.Audio.Timeout, 15*time.Second))
	audio := app.NewAudioProxy(obf, source, cfg.Audio.ProxyPath)

	clock := app.NewClock(loc)
	admin := app.NewAdminGate(cfg.Security.AdminSecret)
	leaderboard := app.NewLeaderboardService(st, log)
	rt.services = transport.Services{
		Questions:    app.NewQuestionService(st, st, keys, admin, clock, log),
		Scheduler:    app.NewScheduler(st, st, st, st, audio, admin, clock, cfg.Schedule.HorizonDays, log),
		Attempts:     app.NewAttemptService(st, st, st, keys, leaderboard, clock, log),
		Leaderboard:  leaderboard,
		Contributors: app.NewContributorService(st, admin, clock, log),
		Audio:        audio,
	}
	return rt, nil
}
