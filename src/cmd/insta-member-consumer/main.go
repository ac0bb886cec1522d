package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gramgram/src/adapters/kafka/consumers"
	"gramgram/src/helper/env"
	"gramgram/src/infra/debezium"
	"gramgram/src/infra/kafka"
	"gramgram/src/infra/postgres"
	"gramgram/src/infra/redis"
	"gramgram/src/repositories"
	"gramgram/src/services/likeableperson"

	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting Insta Member Verified Consumer with Uber Fx...")

	if err := env.LoadFile(env.GetString("CONFIG_FILE")); err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	app := fx.New(
		// Providers
		fx.Provide(
			newLogger,
			newReadWriteClient,
			newKafkaClient,
			newLikeablePersonStore,
			newLikeablePersonService,
			newInstaMemberVerifiedConsumer,
		),

		// Invocations
		fx.Invoke(startConsumer),
	)

	// Start the application
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start consumer application: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down insta member verified consumer...")

	// Stop the application
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}

	log.Println("Insta member verified consumer shutdown complete")
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

func newReadWriteClient(lc fx.Lifecycle) (*postgres.ReadWriteClient, error) {
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadHost := env.GetString("DB_READ_HOST", dbWriteHost)
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbReadPort := env.GetString("DB_READ_PORT", dbWritePort)
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := env.GetInt("DB_MAX_POOL_CONNECTIONS", 25)

	client, err := postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, maxConnections)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})

	return client, nil
}

func newKafkaClient() (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.MustGetString("KAFKA_INSTA_MEMBER_CONSUMER_GROUP_ID")
	batchSize := env.MustGetInt("KAFKA_BATCH_SIZE")

	return kafka.NewKafkaClient(brokers, groupID, batchSize)
}

// newLikeablePersonStore usa o redis só para invalidar as listas recebidas
// que a API mantém em cache.
func newLikeablePersonStore(
	lc fx.Lifecycle,
	logger *slog.Logger,
	readWriteClient *postgres.ReadWriteClient,
) repositories.LikeablePersonStore {
	store := repositories.LikeablePersonStore(repositories.NewLikeablePersonRepository(readWriteClient))

	redisHosts := env.GetString("REDIS_HOSTS")
	if redisHosts == "" {
		return store
	}

	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	redisDefaultTTL := time.Duration(env.GetInt("REDIS_DEFAULT_TTL_SECONDS", 120)) * time.Second
	redisClient := redis.NewRedisClient(redisHosts, redisPoolSize, redisDefaultTTL).WithPrefix("gramgram:")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return redisClient.Close()
		},
	})

	return repositories.NewCachedLikeablePersonRepository(logger, store, redisClient)
}

func newLikeablePersonService(
	logger *slog.Logger,
	readWriteClient *postgres.ReadWriteClient,
	store repositories.LikeablePersonStore,
) *likeableperson.LikeablePersonService {
	instaMembers := repositories.NewInstaMemberRepository(readWriteClient)
	cooldown := env.GetDuration("LIKEABLE_PERSON_MODIFY_COOLDOWN", likeableperson.DefaultModifyCooldown)

	return likeableperson.NewLikeablePersonService(logger, store, instaMembers, nil, cooldown)
}

func newInstaMemberVerifiedConsumer(
	logger *slog.Logger,
	likeablePersonService *likeableperson.LikeablePersonService,
) *consumers.InstaMemberVerifiedConsumer {
	consumer := consumers.NewInstaMemberVerifiedConsumer(logger, likeablePersonService)

	// "debezium" lê o CDC da tabela insta_members direto do conector.
	if env.GetString("KAFKA_INSTA_MEMBER_VERIFIED_FORMAT", "event") == "debezium" {
		consumer.WithDebeziumSerializer(debezium.NewCDCSerializer("insta_members"))
	}

	return consumer
}

func startConsumer(
	lc fx.Lifecycle,
	logger *slog.Logger,
	kafkaClient *kafka.KafkaClient,
	verifiedConsumer *consumers.InstaMemberVerifiedConsumer,
) {
	// O ctx do OnStart expira junto com o start do fx; o consumer precisa de um próprio.
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			topic := env.GetString("KAFKA_INSTA_MEMBER_VERIFIED_TOPIC", "insta-member-verified")

			// Start consumer in background
			go func() {
				if err := verifiedConsumer.Start(consumerCtx, kafkaClient, topic); err != nil {
					logger.Error("Consumer failed", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancelConsumer()

			logger.Info("Shutting down Kafka client...")
			if err := kafkaClient.Close(); err != nil {
				logger.Error("Failed to close Kafka client", "error", err)
				return err
			}
			logger.Info("Kafka client shut down gracefully")
			return nil
		},
	})
}
