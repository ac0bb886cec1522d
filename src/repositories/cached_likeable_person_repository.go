package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"gramgram/src/domain/entities"
	"gramgram/src/infra/metrics"
)

// Cache é o subconjunto do RedisClient usado aqui. InvalidateEntity avança a
// geração da chave e SetKeyIfGeneration recusa gravar sobre uma geração vencida.
type Cache interface {
	GetKey(ctx context.Context, key string) (string, bool, error)
	GetGeneration(ctx context.Context, key string) (int64, error)
	SetKeyIfGeneration(ctx context.Context, key string, value string, generation int64) (bool, error)
	InvalidateEntity(ctx context.Context, keys []string) error
}

// CachedLikeablePersonRepository guarda no redis a lista de declarações
// recebidas por insta member. Qualquer escrita que toque o alvo invalida a chave.
// Falhas de cache são logadas e nunca propagadas.
type CachedLikeablePersonRepository struct {
	LikeablePersonStore
	logger *slog.Logger
	cache  Cache
}

func NewCachedLikeablePersonRepository(logger *slog.Logger, store LikeablePersonStore, cache Cache) *CachedLikeablePersonRepository {
	return &CachedLikeablePersonRepository{
		LikeablePersonStore: store,
		logger:              logger,
		cache:               cache,
	}
}

func (r *CachedLikeablePersonRepository) ListByToInstaMemberID(ctx context.Context, toInstaMemberID int64) ([]entities.LikeablePerson, error) {
	cacheKey := incomingCacheKey(toInstaMemberID)

	cachedJSON, found, err := r.cache.GetKey(ctx, cacheKey)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		r.logger.Warn("Cache error", "key", cacheKey, "error", err)
	}

	if found && err == nil {
		var likeablePeople []entities.LikeablePerson
		unmarshalErr := json.Unmarshal([]byte(cachedJSON), &likeablePeople)
		if unmarshalErr == nil {
			metrics.CacheLookups.WithLabelValues("hit").Inc()
			r.logger.Debug("Cache HIT", "key", cacheKey)
			return likeablePeople, nil
		}
		r.logger.Warn("Failed to unmarshal cached data", "key", cacheKey, "error", unmarshalErr)
	}

	metrics.CacheLookups.WithLabelValues("miss").Inc()

	// A geração é lida antes do store: uma escrita que invalide a chave durante
	// a leitura faz o SET abaixo ser descartado.
	generation, generationErr := r.cache.GetGeneration(ctx, cacheKey)
	if generationErr != nil {
		r.logger.Warn("Failed to read cache generation", "key", cacheKey, "error", generationErr)
	}

	likeablePeople, err := r.LikeablePersonStore.ListByToInstaMemberID(ctx, toInstaMemberID)
	if err != nil {
		return nil, err
	}

	if generationErr == nil {
		go func() {
			ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			r.setInCache(ctxWithTimeout, cacheKey, likeablePeople, generation)
		}()
	}

	return likeablePeople, nil
}

func (r *CachedLikeablePersonRepository) Insert(ctx context.Context, likeablePerson *entities.LikeablePerson) error {
	if err := r.LikeablePersonStore.Insert(ctx, likeablePerson); err != nil {
		return err
	}

	r.invalidate(ctx, likeablePerson.ToInstaMemberID)
	return nil
}

func (r *CachedLikeablePersonRepository) UpdateAttractiveType(
	ctx context.Context,
	id int64,
	expectedModifyUnlockDate time.Time,
	attractiveTypeCode entities.AttractiveType,
	modifyUnlockDate time.Time,
) (*entities.LikeablePerson, error) {
	likeablePerson, err := r.LikeablePersonStore.UpdateAttractiveType(ctx, id, expectedModifyUnlockDate, attractiveTypeCode, modifyUnlockDate)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, likeablePerson.ToInstaMemberID)
	return likeablePerson, nil
}

func (r *CachedLikeablePersonRepository) Delete(ctx context.Context, id int64) (*entities.LikeablePerson, error) {
	deleted, err := r.LikeablePersonStore.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, deleted.ToInstaMemberID)
	return deleted, nil
}

func (r *CachedLikeablePersonRepository) LinkToInstaMember(ctx context.Context, toUsername string, toInstaMemberID int64) ([]int64, error) {
	linkedIDs, err := r.LikeablePersonStore.LinkToInstaMember(ctx, toUsername, toInstaMemberID)
	if err != nil {
		return nil, err
	}

	if len(linkedIDs) > 0 {
		r.invalidate(ctx, &toInstaMemberID)
	}
	return linkedIDs, nil
}

func (r *CachedLikeablePersonRepository) invalidate(ctx context.Context, toInstaMemberID *int64) {
	if toInstaMemberID == nil {
		return
	}

	cacheKey := incomingCacheKey(*toInstaMemberID)
	if err := r.cache.InvalidateEntity(ctx, []string{cacheKey}); err != nil {
		r.logger.Error("Failed to invalidate cache", "key", cacheKey, "error", err)
	}
}

func (r *CachedLikeablePersonRepository) setInCache(ctx context.Context, cacheKey string, likeablePeople []entities.LikeablePerson, generation int64) {
	dataJSON, err := json.Marshal(likeablePeople)
	if err != nil {
		r.logger.Error("Failed to marshal cache data", "key", cacheKey, "error", err)
		return
	}

	stored, err := r.cache.SetKeyIfGeneration(ctx, cacheKey, string(dataJSON), generation)
	if err != nil {
		r.logger.Error("Failed to set cache", "key", cacheKey, "error", err)
		return
	}
	if !stored {
		r.logger.Debug("Cache SET skipped, key invalidated meanwhile", "key", cacheKey)
		return
	}

	r.logger.Debug("Cache SET", "key", cacheKey, "count", len(likeablePeople))
}

func incomingCacheKey(toInstaMemberID int64) string {
	// Hash tag mantém dados e geração no mesmo slot do cluster (WATCH exige).
	return fmt.Sprintf("likeable_person:to:{%d}", toInstaMemberID)
}
