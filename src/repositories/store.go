package repositories

import (
	"context"
	"time"

	"gramgram/src/domain/entities"
)

// LikeablePersonStore é o contrato comum aos repositórios Postgres, memória e cache.
// Não existe ordenação garantida em ListByToInstaMemberID; ordenar é papel do serviço.
type LikeablePersonStore interface {
	FindByID(ctx context.Context, id int64) (*entities.LikeablePerson, error)
	FindByFromAndToUsername(ctx context.Context, fromInstaMemberID int64, toUsername string) (*entities.LikeablePerson, error)
	ListByToInstaMemberID(ctx context.Context, toInstaMemberID int64) ([]entities.LikeablePerson, error)
	ListByFromInstaMemberID(ctx context.Context, fromInstaMemberID int64) ([]entities.LikeablePerson, error)
	Insert(ctx context.Context, likeablePerson *entities.LikeablePerson) error
	UpdateAttractiveType(ctx context.Context, id int64, expectedModifyUnlockDate time.Time, attractiveTypeCode entities.AttractiveType, modifyUnlockDate time.Time) (*entities.LikeablePerson, error)
	// Delete devolve a linha removida; ErrNotFound quando não havia nada.
	Delete(ctx context.Context, id int64) (*entities.LikeablePerson, error)
	LinkToInstaMember(ctx context.Context, toUsername string, toInstaMemberID int64) ([]int64, error)
}

type InstaMemberFinder interface {
	FindByMemberID(ctx context.Context, memberID int64) (*entities.InstaMember, error)
	FindByUsername(ctx context.Context, username string) (*entities.InstaMember, error)
	FindByIDs(ctx context.Context, ids []int64) (map[int64]entities.InstaMember, error)
}

var (
	_ LikeablePersonStore = (*LikeablePersonRepository)(nil)
	_ LikeablePersonStore = (*MemoryLikeablePersonRepository)(nil)
	_ LikeablePersonStore = (*CachedLikeablePersonRepository)(nil)
	_ InstaMemberFinder   = (*InstaMemberRepository)(nil)
	_ InstaMemberFinder   = (*MemoryInstaMemberRepository)(nil)
)
