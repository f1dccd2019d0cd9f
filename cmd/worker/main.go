package main

import (
	"context"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devotionalai/api/internal/client"
	"github.com/devotionalai/api/internal/config"
	"github.com/devotionalai/api/internal/notify"
	"github.com/devotionalai/api/internal/service"
	"github.com/devotionalai/api/internal/store"
	"github.com/devotionalai/api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	ctx := context.Background()

	st, err := store.NewPostgresStore(ctx, cfg.Postgres.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer st.Close()

	r2Client, err := client.NewR2Client(&cfg.R2)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize R2 client")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// All collaborators constructed once here and injected; the model
	// services own their loaded models behind HTTP.
	generationWorker := worker.NewGenerationWorker(
		st,
		client.NewTTSClient(&cfg.TTS),
		client.NewVideoClient(&cfg.Video),
		r2Client,
		service.NewCatalogService(),
		notify.NewRedisPublisher(redisClient),
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				service.QueueGeneration: 10,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeGeneration, generationWorker.ProcessTask)

	log.Info().Int("concurrency", cfg.Worker.Concurrency).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("worker error")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Server.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
