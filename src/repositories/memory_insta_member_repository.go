package repositories

import (
	"context"
	"fmt"
	"sync"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"

	"github.com/tidwall/btree"
)

type MemoryInstaMemberRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   *btree.BTreeG[entities.InstaMember]
}

func NewMemoryInstaMemberRepository() *MemoryInstaMemberRepository {
	return &MemoryInstaMemberRepository{
		byID: btree.NewBTreeGOptions(func(a, b entities.InstaMember) bool {
			return a.ID < b.ID
		}, btree.Options{NoLocks: true}),
	}
}

func (r *MemoryInstaMemberRepository) FindByMemberID(_ context.Context, memberID int64) (*entities.InstaMember, error) {
	return r.findFirst("FindByMemberID", func(instaMember entities.InstaMember) bool {
		return memberID != 0 && instaMember.MemberID == memberID
	})
}

func (r *MemoryInstaMemberRepository) FindByUsername(_ context.Context, username string) (*entities.InstaMember, error) {
	return r.findFirst("FindByUsername", func(instaMember entities.InstaMember) bool {
		return instaMember.Username == username
	})
}

func (r *MemoryInstaMemberRepository) FindByIDs(_ context.Context, ids []int64) (map[int64]entities.InstaMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[int64]entities.InstaMember, len(ids))
	for _, id := range ids {
		if instaMember, ok := r.byID.Get(entities.InstaMember{ID: id}); ok {
			result[id] = instaMember
		}
	}

	return result, nil
}

func (r *MemoryInstaMemberRepository) Upsert(_ context.Context, instaMember *entities.InstaMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing *entities.InstaMember
	r.byID.Scan(func(stored entities.InstaMember) bool {
		if stored.Username == instaMember.Username {
			existing = &stored
			return false
		}
		return true
	})

	if existing != nil {
		instaMember.ID = existing.ID
		instaMember.CreatedAt = existing.CreatedAt
		if instaMember.MemberID == 0 {
			instaMember.MemberID = existing.MemberID
		}
	} else {
		r.nextID++
		instaMember.ID = r.nextID
	}

	r.byID.Set(*instaMember)
	return nil
}

func (r *MemoryInstaMemberRepository) findFirst(operation string, match func(entities.InstaMember) bool) (*entities.InstaMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *entities.InstaMember
	r.byID.Scan(func(instaMember entities.InstaMember) bool {
		if match(instaMember) {
			found = &instaMember
			return false
		}
		return true
	})

	if found == nil {
		return nil, fmt.Errorf("MemoryInstaMemberRepository.%s: %w", operation, domain.ErrInstaMemberNotFound)
	}

	return found, nil
}
