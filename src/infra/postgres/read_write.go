package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReadWriteClient separa o pool da réplica de leitura do pool do primário.
// Quando os dois hosts são iguais o mesmo pool é reutilizado.
type ReadWriteClient struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewReadWriteClient(
	readHost string,
	writeHost string,
	readPort string,
	writePort string,
	dbname string,
	username string,
	password string,
	maxConnections int,
) (*ReadWriteClient, error) {

	writePool, err := NewPostgresClient(writeHost, writePort, dbname, username, password, maxConnections)
	if err != nil {
		return nil, err
	}

	if readHost == writeHost && readPort == writePort {
		return &ReadWriteClient{readPool: writePool, writePool: writePool}, nil
	}

	readPool, err := NewPostgresClient(readHost, readPort, dbname, username, password, maxConnections)
	if err != nil {
		writePool.Close()
		return nil, err
	}

	return &ReadWriteClient{
		readPool:  readPool,
		writePool: writePool,
	}, nil
}

func (rwc *ReadWriteClient) GetReadPool() *pgxpool.Pool {
	return rwc.readPool
}

func (rwc *ReadWriteClient) GetWritePool() *pgxpool.Pool {
	return rwc.writePool
}

func (rwc *ReadWriteClient) HealthCheck(ctx context.Context) error {
	if err := rwc.writePool.Ping(ctx); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}
	if rwc.readPool != rwc.writePool {
		if err := rwc.readPool.Ping(ctx); err != nil {
			return fmt.Errorf("read pool: %w", err)
		}
	}
	return nil
}

func (rwc *ReadWriteClient) Close() {
	if rwc.readPool != nil && rwc.readPool != rwc.writePool {
		rwc.readPool.Close()
	}
	if rwc.writePool != nil {
		rwc.writePool.Close()
	}
}
