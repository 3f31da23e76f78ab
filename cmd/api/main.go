package main

import (
	"context"

	"github.com/PyNerdAlfaiz/referd-backend/internal/auth"
	"github.com/PyNerdAlfaiz/referd-backend/internal/cache"
	"github.com/PyNerdAlfaiz/referd-backend/internal/config"
	"github.com/PyNerdAlfaiz/referd-backend/internal/database"
	"github.com/PyNerdAlfaiz/referd-backend/internal/handler"
	"github.com/PyNerdAlfaiz/referd-backend/internal/logger"
	"github.com/PyNerdAlfaiz/referd-backend/internal/notify"
	"github.com/PyNerdAlfaiz/referd-backend/internal/repository"
	"github.com/PyNerdAlfaiz/referd-backend/internal/service"
	"github.com/PyNerdAlfaiz/referd-backend/internal/sweep"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"
)

type application struct {
	DB         *pgxpool.Pool
	Logger     *zap.Logger
	Config     *config.Config
	Repository *repository.Repository
	Handler    *handler.Handler
	Sweeper    *sweep.Sweeper
}

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, _ := logger.NewLogger(cfg.Env)
	defer log.Sync()
	sugar := log.Sugar()
	sugar.Infof("config loaded, env=%s", cfg.Env)

	pool, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		sugar.Fatal(err)
	}
	defer pool.Close()

	redisClient := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := cache.Ping(ctx, redisClient); err != nil {
		sugar.Fatalw("redis ping failed", "addr", cfg.Redis.Addr, "err", err)
	}
	defer redisClient.Close()

	repo := repository.NewRepository(pool)
	notifier := notify.NewRedisNotifier(redisClient, cfg.Redis.NotificationChannel)

	referralSvc := service.NewReferralService(repo, repo, log)
	applicationSvc := service.NewApplicationService(repo, repo, repo, referralSvc, notifier, log)
	jobSvc := service.NewJobService(repo, cfg.Referral.DefaultCurrency, log)

	handlerApp := &handler.Handler{
		Logger:       log,
		Repository:   repo,
		Applications: applicationSvc,
		Referrals:    referralSvc,
		Jobs:         jobSvc,
		TokenMaker:   auth.NewJWTMaker(cfg.JWT.Secret),
		AccessTTL:    cfg.JWT.AccessTokenTTL,
	}

	app := &application{
		DB:         pool,
		Logger:     log,
		Config:     cfg,
		Repository: repo,
		Handler:    handlerApp,
	}

	if cfg.Sweep.Enabled {
		lock := cache.NewLock(redisClient, cfg.Sweep.LockKey, cfg.Sweep.LockTTL)
		app.Sweeper = sweep.NewSweeper(jobSvc, lock, cfg.Sweep.Interval, log)
		go app.Sweeper.Run(ctx)
	}

	if err := app.serve(); err != nil {
		sugar.Fatal(err)
	}
}
