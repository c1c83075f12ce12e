package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"procurement-approval/internal/adapter/notify"
	repo "procurement-approval/internal/adapter/repository/mysql"
	"procurement-approval/internal/config"
	"procurement-approval/internal/domain/notification"
	"procurement-approval/internal/infrastructure/cache"
	"procurement-approval/internal/infrastructure/db"
	"procurement-approval/internal/infrastructure/lock"
	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/usecase/escalation"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const lockKey = "procurement:escalation:sweep"

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
	}

	monitor := escalation.NewMonitor(repo.NewGormUoW(gdb), pub, log)
	runner := escalation.NewRunner(
		monitor,
		lock.NewRedisLock(rdb, lockKey, time.Duration(cfg.EscalationLockTTLSecs)*time.Second),
		time.Duration(cfg.EscalationIntervalSecs)*time.Second,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("escalator started", zap.Int("interval_seconds", cfg.EscalationIntervalSecs))
	runner.Start(ctx)
	log.Info("escalator stopped")
}
