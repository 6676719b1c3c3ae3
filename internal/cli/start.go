package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"trainvoc-room-service/internal/app"
	"trainvoc-room-service/internal/config"
	"trainvoc-room-service/internal/infra/memory"
	natsbus "trainvoc-room-service/internal/infra/nats"
	pgloader "trainvoc-room-service/internal/infra/postgres"
	redisstore "trainvoc-room-service/internal/infra/redis"
	transport "trainvoc-room-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.WordLoader = memory.NewStaticWordLoader(memory.SampleWords())
	if pool != nil {
		loader = pgloader.NewWordLoader(pool)
	}

	wordTTL := config.TTLDuration(cfg.Words.TTL, 10*time.Minute)
	var words app.WordRepository
	if redisClient != nil {
		words = redisstore.NewWordRepository(redisClient, loader, wordTTL)
	} else {
		words = memory.NewWordRepository(loader, wordTTL)
	}

	var rooms app.RoomRepository
	if redisClient != nil {
		rooms = redisstore.NewRoomStore(redisClient, instanceID(), redisTTL)
	} else {
		rooms = memory.NewRoomStore()
	}

	var publisher app.EventPublisher
	if natsCfg := cfg.NATSConfig(); natsCfg.URL != "" {
		p, err := natsbus.NewPublisher(natsCfg)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	service := app.NewRoomService(rooms, words, publisher, cfg.Settings())
	handler := transport.NewHandler(service, transport.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AnswerRate:     cfg.Server.AnswerRate,
		AnswerBurst:    cfg.Server.AnswerBurst,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  config.TTLDuration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.TTLDuration(cfg.Server.WriteTimeout, 15*time.Second),
	}

	runCtx, stopRooms := context.WithCancel(ctx)
	defer stopRooms()
	go service.Run(runCtx)

	go func() {
		log.Info().Str("port", finalPort).Msg("starting room service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func instanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "rooms"
	}
	return host + "-" + uuid.NewString()[:8]
}
