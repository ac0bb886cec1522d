package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// generationTTL é bem maior que o TTL dos dados: uma geração que expira volta a 0
// e só faz uma escrita pendente ser descartada.
const generationTTL = 24 * time.Hour

type RedisClient struct {
	client            redis.UniversalClient
	defaultTTLSeconds time.Duration
	prefix            string
}

// NewRedisClient aceita uma lista de hosts separada por vírgula. Com mais de um
// host o go-redis cria um ClusterClient; com um só, um client simples.
func NewRedisClient(addrs string, poolSize int, defaultTTLSeconds time.Duration) *RedisClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),

		// Pool settings para alta concorrência
		PoolSize:     poolSize,
		MinIdleConns: 10,

		MaxRedirects: 3,

		// Timeouts otimizados para cache
		DialTimeout:  5 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})

	return &RedisClient{
		client:            client,
		defaultTTLSeconds: defaultTTLSeconds,
	}
}

// WithPrefix devolve uma cópia cujas chaves ficam sob prefix; FlushByPrefix só limpa esse espaço.
func (rc *RedisClient) WithPrefix(prefix string) *RedisClient {
	return &RedisClient{
		client:            rc.client,
		defaultTTLSeconds: rc.defaultTTLSeconds,
		prefix:            prefix,
	}
}

func (rc *RedisClient) key(key string) string {
	return rc.prefix + key
}

// generationKey fica no mesmo slot da chave de dados quando a chave usa hash tag ({...}).
func (rc *RedisClient) generationKey(key string) string {
	return rc.key(key) + ":gen"
}

// GetGeneration devolve o contador de invalidações da chave; 0 quando nunca foi invalidada.
func (rc *RedisClient) GetGeneration(ctx context.Context, key string) (int64, error) {
	generation, err := rc.client.Get(ctx, rc.generationKey(key)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return generation, err
}

// SetKeyIfGeneration só grava se a chave não foi invalidada desde que generation
// foi lida. Uma leitura lenta não sobrescreve o cache com dados já apagados.
func (rc *RedisClient) SetKeyIfGeneration(ctx context.Context, key string, value string, generation int64) (bool, error) {
	dataKey := rc.key(key)
	generationKey := rc.generationKey(key)
	stored := false

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != generation {
			return nil
		}

		fields := map[string]interface{}{
			"data":      value,
			"cached_at": time.Now().Unix(),
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, dataKey, fields)
			pipe.Expire(ctx, dataKey, rc.defaultTTLSeconds)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}

	err := rc.client.Watch(ctx, txf, generationKey)
	if errors.Is(err, redis.TxFailedErr) {
		// Invalidação concorrente entre o WATCH e o EXEC.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return stored, nil
}

func (rc *RedisClient) GetKey(ctx context.Context, key string) (string, bool, error) {
	result := rc.client.HGet(ctx, rc.key(key), "data")

	// Cache miss
	if result.Err() == redis.Nil {
		return "", false, nil
	}
	if result.Err() != nil {
		return "", false, result.Err()
	}

	return result.Val(), true, nil
}

// InvalidateEntity incrementa a geração e apaga a chave na mesma transação.
// Em cluster as chaves podem estar em slots diferentes, então cada uma é tratada separadamente.
func (rc *RedisClient) InvalidateEntity(ctx context.Context, keys []string) error {
	var failures []string

	for _, key := range keys {
		_, err := rc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Incr(ctx, rc.generationKey(key))
			pipe.Expire(ctx, rc.generationKey(key), generationTTL)
			pipe.Del(ctx, rc.key(key))
			return nil
		})
		if err != nil {
			failures = append(failures, fmt.Sprintf("key %s: %v", key, err))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("invalidation errors: %s", strings.Join(failures, "; "))
	}

	return nil
}

// FlushByPrefix remove todas as chaves do prefixo atual. Sem prefixo não faz nada.
func (rc *RedisClient) FlushByPrefix(ctx context.Context) error {
	if rc.prefix == "" {
		return nil
	}

	flush := func(ctx context.Context, client redis.UniversalClient) error {
		iter := client.Scan(ctx, 0, rc.prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		return iter.Err()
	}

	if cluster, ok := rc.client.(*redis.ClusterClient); ok {
		return cluster.ForEachMaster(ctx, func(ctx context.Context, node *redis.Client) error {
			return flush(ctx, node)
		})
	}

	return flush(ctx, rc.client)
}

func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}
