// Command gramctl aplica o schema e gera dados de exemplo.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gramgram/src/helper/env"
	"gramgram/src/infra/postgres"
	"gramgram/src/infra/redis"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gramctl",
		Short: "Operational tooling for the likeable person service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			return env.LoadFile(configFile)
		},
	}
	rootCmd.PersistentFlags().String("config", env.GetString("CONFIG_FILE"), "YAML file with KEY: value overrides")

	// Migrate command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema (idempotent)",
		RunE:  runMigrate,
	})

	// Seed command
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate insta members and likeable people",
		RunE:  runSeed,
	}
	seedCmd.Flags().Int("members", 50, "Verified insta members to create")
	seedCmd.Flags().Int("likes-per-member", 5, "Declarations made by each member")
	seedCmd.Flags().Float64("pending-ratio", 0.2, "Share of declarations aimed at unverified usernames")
	seedCmd.Flags().Int64("member-id-offset", 1000, "First member id assigned to the generated insta members")
	rootCmd.AddCommand(seedCmd)

	// Cache command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "flush-cache",
		Short: "Drop the cached incoming lists (needed after seeding straight into postgres)",
		RunE:  runFlushCache,
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	client, err := newReadWriteClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := postgres.Migrate(ctx, client.GetWritePool()); err != nil {
		return err
	}

	fmt.Println("schema applied")
	return nil
}

func runFlushCache(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	redisClient := redis.NewRedisClient(env.MustGetString("REDIS_HOSTS"), 2, 0).WithPrefix("gramgram:")
	defer redisClient.Close()

	if err := redisClient.FlushByPrefix(ctx); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}

	fmt.Println("cache flushed")
	return nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func newReadWriteClient() (*postgres.ReadWriteClient, error) {
	dbWriteHost := env.MustGetString("DB_WRITE_HOST")
	dbReadHost := env.GetString("DB_READ_HOST", dbWriteHost)
	dbWritePort := env.GetString("DB_WRITE_PORT", "5432")
	dbReadPort := env.GetString("DB_READ_PORT", dbWritePort)
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")

	return postgres.NewReadWriteClient(dbReadHost, dbWriteHost, dbReadPort, dbWritePort, dbname, dbUser, dbPassword, 5)
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
