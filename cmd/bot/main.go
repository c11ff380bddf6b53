package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"

	"github.com/tipraffle/tipraffle-bot/internal/bot"
	"github.com/tipraffle/tipraffle-bot/internal/database"
	"github.com/tipraffle/tipraffle-bot/internal/health"
	"github.com/tipraffle/tipraffle-bot/internal/idempotency"
	"github.com/tipraffle/tipraffle-bot/internal/jobs"
	"github.com/tipraffle/tipraffle-bot/internal/jobs/handlers"
	"github.com/tipraffle/tipraffle-bot/internal/lifecycle"
	"github.com/tipraffle/tipraffle-bot/internal/parser"
	"github.com/tipraffle/tipraffle-bot/internal/pipeline"
	"github.com/tipraffle/tipraffle-bot/internal/pricing"
	"github.com/tipraffle/tipraffle-bot/internal/repository"
	"github.com/tipraffle/tipraffle-bot/pkg/config"
	"github.com/tipraffle/tipraffle-bot/pkg/graceful"
	"github.com/tipraffle/tipraffle-bot/pkg/logger"
	redisclient "github.com/tipraffle/tipraffle-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)

	log.Info("starting tipraffle bot",
		slog.String("env", cfg.AppEnv),
		slog.String("http_addr", cfg.Server.Port),
	)

	config.Watch(v, log, func(*config.Config) {
		log.Info("configuration reloaded; connection settings apply on restart")
	})

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}

	// The donation audit log is optional: without a configured database the
	// guild documents in Redis remain the only record.
	var (
		db       *sql.DB
		auditLog repository.DonationLog = repository.NoopDonationLog{}
	)
	if cfg.Database.Name != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := database.NewMigrator(db, log).ApplyDir(ctx, "migrations"); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		auditLog = repository.NewDonationLog(db, log)
	}

	guildStore := repository.NewRedisGuildStore(rdb.Client, log)

	idemStore := idempotency.NewRedisStore(rdb.Client, log)
	idem := idempotency.NewManager(idemStore, log)
	go idempotency.NewCleaner(rdb.Client, log, time.Hour).Run(ctx)

	httpClient := &http.Client{Timeout: cfg.Pricing.Timeout}
	resolver := pricing.NewResolver([]pricing.Provider{
		pricing.NewCoinGecko(httpClient, cfg.Pricing.CoinGeckoURL),
		pricing.NewCryptoCompare(httpClient, cfg.Pricing.CryptoCompareURL, cfg.Pricing.CryptoCompareKey),
		pricing.NewCoinMarketCap(httpClient, cfg.Pricing.CoinMarketCapURL, cfg.Pricing.CoinMarketCapKey),
	}, cfg.Pricing.Timeout, log)

	pipe := pipeline.New(parser.New(nil, log), resolver, guildStore, auditLog, idem, nil, log)

	b, err := bot.New(*cfg, log, pipe)
	if err != nil {
		return fmt.Errorf("init bot: %w", err)
	}
	pipe.SetSink(bot.NewNotifier(b.Telebot(), log))

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	queueClient := jobs.NewManager(redisOpt, log)
	pipe.SetDrawCloser(jobs.NewDrawCloseEnqueuer(queueClient, log))

	worker := jobs.NewWorker(redisOpt, map[string]int{
		jobs.QueueCritical: 6,
		jobs.QueueDefault:  3,
		jobs.QueueLow:      1,
	}, cfg.Jobs.Concurrency, log)
	worker.RegisterHandler(jobs.TaskTypeAchievementsRepair, handlers.NewAchievementsRepairHandler(pipe, guildStore, log))
	worker.RegisterHandler(jobs.TaskTypeCloseDraw, handlers.NewCloseDrawHandler(pipe, log))
	go func() {
		if err := worker.Run(); err != nil {
			log.Error("jobs worker stopped", slog.Any("error", err))
		}
	}()

	sched := jobs.NewScheduler(redisOpt, log)
	if err := sched.RegisterTasks(cfg.Jobs.RepairCron); err != nil {
		return fmt.Errorf("register scheduled tasks: %w", err)
	}
	sched.Run()

	checker := health.NewChecker(log)
	checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
	if db != nil {
		checker.AddCheck("database", health.NewDBChecker(db))
	}
	checker.AddCheck("bot", health.NewBotChecker(b.Telebot()))

	srv := graceful.NewServer(log, cfg.Server.Port, checker, cfg.Server.ShutdownTimeout)
	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("http sidecar stopped", slog.Any("error", err))
		}
	}()

	go b.Start()
	log.Info("tipraffle bot running")

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdown := lifecycle.NewShutdown(log)
	shutdown.Register("bot", func(context.Context) error { b.Stop(); return nil })
	shutdown.Register("jobs-worker", func(context.Context) error { worker.Shutdown(); return nil })
	shutdown.Register("scheduler", func(context.Context) error { sched.Shutdown(); return nil })
	shutdown.Register("queue-client", func(context.Context) error { return queueClient.Close() })
	shutdown.Register("redis", func(context.Context) error { return rdb.Close() })
	if db != nil {
		shutdown.Register("database", func(context.Context) error { return db.Close() })
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return shutdown.Execute(shutdownCtx)
}
