package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	httpadapter "gramgram/src/adapters/http"
	"gramgram/src/helper/env"
	"gramgram/src/infra/kafka"
	"gramgram/src/infra/postgres"
	"gramgram/src/infra/redis"
	"gramgram/src/repositories"
	"gramgram/src/services/events"
	"gramgram/src/services/likeableperson"

	"go.uber.org/fx"
)

func main() {
	// Configurar logger
	log.SetOutput(os.Stdout)
	log.Println("Starting API server with Uber Fx...")

	if err := env.LoadFile(env.GetString("CONFIG_FILE")); err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newStores,
			newEventPublisher,
			newLikeablePersonService,
			newServer,
		),

		// Invocations
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-app.Done()
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// stores agrupa o que o driver escolhido fornece para o serviço e para o healthz.
type stores struct {
	fx.Out

	LikeablePeople repositories.LikeablePersonStore
	InstaMembers   repositories.InstaMemberFinder
	HealthChecks   []httpadapter.HealthCheck
}

func newStores(lc fx.Lifecycle, logger *slog.Logger) (stores, error) {
	driver := env.GetString("STORE_DRIVER", "postgres")
	if driver == "memory" {
		logger.Warn("Using in-memory store, data is lost on restart")
		return stores{
			LikeablePeople: repositories.NewMemoryLikeablePersonRepository(),
			InstaMembers:   repositories.NewMemoryInstaMemberRepository(),
		}, nil
	}

	readWriteClient, err := newReadWriteClient()
	if err != nil {
		return stores{}, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			readWriteClient.Close()
			return nil
		},
	})

	out := stores{
		LikeablePeople: repositories.NewLikeablePersonRepository(readWriteClient),
		InstaMembers:   repositories.NewInstaMemberRepository(readWriteClient),
		HealthChecks:   []httpadapter.HealthCheck{readWriteClient.HealthCheck},
	}

	if env.GetString("REDIS_HOSTS") != "" {
		redisClient := newRedisClient()
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return redisClient.Close()
			},
		})

		out.LikeablePeople = repositories.NewCachedLikeablePersonRepository(logger, out.LikeablePeople, redisClient)
		out.HealthChecks = append(out.HealthChecks, redisClient.HealthCheck)
	}

	return out, nil
}

func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadHost := env.GetString("DB_READ_HOST", dbWriteHost)
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbReadPort := env.GetString("DB_READ_PORT", dbWritePort)
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	return postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
}

func newRedisClient() *redis.RedisClient {
	redisHosts := env.MustGetString("REDIS_HOSTS")
	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTLSeconds := env.GetInt("REDIS_DEFAULT_TTL_SECONDS", 120)
	redisDefaultTTL := time.Duration(redisDefaultTTLSeconds) * time.Second

	return redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL).WithPrefix("gramgram:")
}

// newEventPublisher devolve nil quando KAFKA_BROKERS não está configurado.
func newEventPublisher(lc fx.Lifecycle, logger *slog.Logger) (likeableperson.EventPublisher, error) {
	brokers := env.GetString("KAFKA_BROKERS")
	if brokers == "" {
		logger.Info("KAFKA_BROKERS not set, domain events disabled")
		return likeableperson.EventPublisher(nil), nil
	}

	// groupID vazio: cliente só produz
	kafkaClient, err := kafka.NewKafkaClient(brokers, "", env.GetInt("KAFKA_BATCH_SIZE", 100))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return kafkaClient.Close()
		},
	})

	topic := env.GetString("KAFKA_LIKEABLE_PERSON_EVENTS_TOPIC", "likeable-person-events")
	return events.NewDomainEventPublisher(logger, kafkaClient, topic), nil
}

func newLikeablePersonService(
	logger *slog.Logger,
	likeablePersonStore repositories.LikeablePersonStore,
	instaMemberFinder repositories.InstaMemberFinder,
	publisher likeableperson.EventPublisher,
) *likeableperson.LikeablePersonService {
	cooldown := env.GetDuration("LIKEABLE_PERSON_MODIFY_COOLDOWN", likeableperson.DefaultModifyCooldown)

	return likeableperson.NewLikeablePersonService(logger, likeablePersonStore, instaMemberFinder, publisher, cooldown)
}

func newServer(
	logger *slog.Logger,
	likeablePersonService *likeableperson.LikeablePersonService,
	healthChecks []httpadapter.HealthCheck,
) *httpadapter.Server {

	port := 8888 // default value
	if portStr := os.Getenv("SERVER_ADDR"); portStr != "" {
		if val, err := strconv.Atoi(portStr); err == nil {
			port = val
		}
	}

	return httpadapter.NewServer(logger, port, likeablePersonService, healthChecks...)
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *httpadapter.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}
			log.Println("Server exited gracefully")
			return nil
		},
	})
}
