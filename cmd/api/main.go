package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpadp "procurement-approval/internal/adapter/http"
	"procurement-approval/internal/adapter/notify"
	repo "procurement-approval/internal/adapter/repository/mysql"
	"procurement-approval/internal/config"
	"procurement-approval/internal/domain/notification"
	"procurement-approval/internal/infrastructure/cache"
	"procurement-approval/internal/infrastructure/db"
	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/usecase/approval"
	"procurement-approval/internal/usecase/budget"
	"procurement-approval/internal/usecase/request"
	"procurement-approval/internal/usecase/workflow"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		log.Fatal("open database failed", zap.Error(err))
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		log.Fatal("database handle failed", zap.Error(err))
	}
	defer func() { _ = sqlDB.Close() }()
	if cfg.DBAutoMigrate {
		if err := db.AutoMigrate(gdb); err != nil {
			log.Fatal("auto-migrate failed", zap.Error(err))
		}
	}

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Password: cfg.RedisPassword})
	if err != nil {
		log.Fatal("open redis failed", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	var pub notification.Publisher = notification.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := notify.NewKafkaPublisher(notify.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		defer func() { _ = kp.Close() }()
		pub = kp
		log.Info("kafka publisher enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	tx := repo.NewGormUoW(gdb)
	workflows := workflow.NewUsecase(tx, log)
	requests := request.NewUsecase(tx, workflows, pub, log)

	health := httpadp.NewHandler(
		httpadp.Check{Name: "db", Ping: func(ctx context.Context) error { return sqlDB.PingContext(ctx) }},
		httpadp.Check{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	)
	e := httpadp.NewRouter(httpadp.RouterDeps{
		Health:    health,
		Requests:  httpadp.NewRequestHandler(requests),
		Approvals: httpadp.NewApprovalHandler(approval.NewUsecase(tx, pub, log), requests),
		Workflows: httpadp.NewWorkflowHandler(workflows),
		Budgets:   httpadp.NewBudgetHandler(budget.NewUsecase(tx, log)),
		JWTSecret: []byte(cfg.JWTSecret),
		Redis:     rdb,
		IdempTTL:  time.Duration(cfg.IdempTTLSecs) * time.Second,
		Log:       log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	go func() {
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server exited")
}
