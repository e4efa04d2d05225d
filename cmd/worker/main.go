package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/carevox/carevox/internal/config"
	"github.com/carevox/carevox/internal/queue"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	// Periodic backstop sweep of the upload directory; per-request cleanup
	// is handled inline by the API.
	scheduler := asynq.NewScheduler(redisOpt, nil)
	payload, err := json.Marshal(queue.UploadSweepPayload{
		Dir:           cfg.Uploads.Dir,
		MaxAgeSeconds: int64(cfg.Uploads.SweepMaxAge.Seconds()),
	})
	if err != nil {
		slog.Error("failed to marshal sweep payload", "error", err)
		os.Exit(1)
	}
	if _, err := scheduler.Register("@every 15m", asynq.NewTask(queue.TypeUploadSweep, payload)); err != nil {
		slog.Error("failed to register sweep schedule", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			slog.Error("scheduler stopped", "error", err)
		}
	}()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
	})

	slog.Info("starting worker", "redis", cfg.Redis.Addr)
	if err := srv.Run(queue.NewMux()); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
