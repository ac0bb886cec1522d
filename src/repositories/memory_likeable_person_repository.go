package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"

	"github.com/tidwall/btree"
)

type fromToKey struct {
	fromInstaMemberID int64
	toUsername        string
}

type toIndexKey struct {
	toInstaMemberID int64
	id              int64
}

// MemoryLikeablePersonRepository implementa o mesmo contrato do repositório
// Postgres em memória. Usado nos testes e com STORE_DRIVER=memory.
type MemoryLikeablePersonRepository struct {
	mu     sync.RWMutex
	nextID int64
	now    func() time.Time

	byID   *btree.BTreeG[*entities.LikeablePerson]
	byTo   *btree.BTreeG[toIndexKey]
	byFrom map[fromToKey]int64
}

func NewMemoryLikeablePersonRepository() *MemoryLikeablePersonRepository {
	return &MemoryLikeablePersonRepository{
		now: time.Now,
		byID: btree.NewBTreeGOptions(func(a, b *entities.LikeablePerson) bool {
			return a.ID < b.ID
		}, btree.Options{NoLocks: true}),
		byTo: btree.NewBTreeGOptions(func(a, b toIndexKey) bool {
			if a.toInstaMemberID != b.toInstaMemberID {
				return a.toInstaMemberID < b.toInstaMemberID
			}
			return a.id < b.id
		}, btree.Options{NoLocks: true}),
		byFrom: make(map[fromToKey]int64),
	}
}

func (r *MemoryLikeablePersonRepository) FindByID(_ context.Context, id int64) (*entities.LikeablePerson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	likeablePerson, ok := r.byID.Get(&entities.LikeablePerson{ID: id})
	if !ok {
		return nil, fmt.Errorf("MemoryLikeablePersonRepository.FindByID - id %d: %w", id, domain.ErrNotFound)
	}

	return copyLikeablePerson(likeablePerson), nil
}

func (r *MemoryLikeablePersonRepository) FindByFromAndToUsername(_ context.Context, fromInstaMemberID int64, toUsername string) (*entities.LikeablePerson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byFrom[fromToKey{fromInstaMemberID: fromInstaMemberID, toUsername: toUsername}]
	if !ok {
		return nil, fmt.Errorf("MemoryLikeablePersonRepository.FindByFromAndToUsername - %d -> %s: %w", fromInstaMemberID, toUsername, domain.ErrNotFound)
	}

	likeablePerson, _ := r.byID.Get(&entities.LikeablePerson{ID: id})
	return copyLikeablePerson(likeablePerson), nil
}

func (r *MemoryLikeablePersonRepository) ListByToInstaMemberID(_ context.Context, toInstaMemberID int64) ([]entities.LikeablePerson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	likeablePeople := make([]entities.LikeablePerson, 0)
	r.byTo.Ascend(toIndexKey{toInstaMemberID: toInstaMemberID}, func(key toIndexKey) bool {
		if key.toInstaMemberID != toInstaMemberID {
			return false
		}
		likeablePerson, _ := r.byID.Get(&entities.LikeablePerson{ID: key.id})
		likeablePeople = append(likeablePeople, *copyLikeablePerson(likeablePerson))
		return true
	})

	return likeablePeople, nil
}

func (r *MemoryLikeablePersonRepository) ListByFromInstaMemberID(_ context.Context, fromInstaMemberID int64) ([]entities.LikeablePerson, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	likeablePeople := make([]entities.LikeablePerson, 0)
	r.byID.Scan(func(likeablePerson *entities.LikeablePerson) bool {
		if likeablePerson.IsOwnedBy(fromInstaMemberID) {
			likeablePeople = append(likeablePeople, *copyLikeablePerson(likeablePerson))
		}
		return true
	})

	return likeablePeople, nil
}

func (r *MemoryLikeablePersonRepository) Insert(_ context.Context, likeablePerson *entities.LikeablePerson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var key *fromToKey
	if likeablePerson.FromInstaMemberID != nil {
		key = &fromToKey{fromInstaMemberID: *likeablePerson.FromInstaMemberID, toUsername: likeablePerson.ToInstaMemberUsername}
		if _, exists := r.byFrom[*key]; exists {
			return fmt.Errorf("MemoryLikeablePersonRepository.Insert - %s: %w", likeablePerson.ToInstaMemberUsername, domain.ErrDuplicateEdge)
		}
	}

	r.nextID++
	now := r.now()
	likeablePerson.ID = r.nextID
	likeablePerson.CreatedAt = now
	likeablePerson.UpdatedAt = now

	stored := copyLikeablePerson(likeablePerson)
	r.byID.Set(stored)
	if key != nil {
		r.byFrom[*key] = stored.ID
	}
	if stored.ToInstaMemberID != nil {
		r.byTo.Set(toIndexKey{toInstaMemberID: *stored.ToInstaMemberID, id: stored.ID})
	}

	return nil
}

func (r *MemoryLikeablePersonRepository) UpdateAttractiveType(
	_ context.Context,
	id int64,
	expectedModifyUnlockDate time.Time,
	attractiveTypeCode entities.AttractiveType,
	modifyUnlockDate time.Time,
) (*entities.LikeablePerson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID.Get(&entities.LikeablePerson{ID: id})
	if !ok || !stored.ModifyUnlockDate.Equal(expectedModifyUnlockDate) {
		return nil, fmt.Errorf("MemoryLikeablePersonRepository.UpdateAttractiveType - id %d: %w", id, domain.ErrConflict)
	}

	stored.AttractiveTypeCode = attractiveTypeCode
	stored.ModifyUnlockDate = modifyUnlockDate
	stored.UpdatedAt = r.now()

	return copyLikeablePerson(stored), nil
}

func (r *MemoryLikeablePersonRepository) Delete(_ context.Context, id int64) (*entities.LikeablePerson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID.Delete(&entities.LikeablePerson{ID: id})
	if !ok {
		return nil, fmt.Errorf("MemoryLikeablePersonRepository.Delete - id %d: %w", id, domain.ErrNotFound)
	}

	if stored.FromInstaMemberID != nil {
		delete(r.byFrom, fromToKey{fromInstaMemberID: *stored.FromInstaMemberID, toUsername: stored.ToInstaMemberUsername})
	}
	if stored.ToInstaMemberID != nil {
		r.byTo.Delete(toIndexKey{toInstaMemberID: *stored.ToInstaMemberID, id: stored.ID})
	}

	return copyLikeablePerson(stored), nil
}

func (r *MemoryLikeablePersonRepository) LinkToInstaMember(_ context.Context, toUsername string, toInstaMemberID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var linkedIDs []int64
	r.byID.Scan(func(stored *entities.LikeablePerson) bool {
		if stored.ToInstaMemberID == nil && stored.ToInstaMemberUsername == toUsername {
			id := toInstaMemberID
			stored.ToInstaMemberID = &id
			stored.UpdatedAt = r.now()
			linkedIDs = append(linkedIDs, stored.ID)
		}
		return true
	})

	for _, id := range linkedIDs {
		r.byTo.Set(toIndexKey{toInstaMemberID: toInstaMemberID, id: id})
	}

	return linkedIDs, nil
}

func copyLikeablePerson(likeablePerson *entities.LikeablePerson) *entities.LikeablePerson {
	copied := *likeablePerson
	if likeablePerson.FromInstaMemberID != nil {
		fromID := *likeablePerson.FromInstaMemberID
		copied.FromInstaMemberID = &fromID
	}
	if likeablePerson.ToInstaMemberID != nil {
		toID := *likeablePerson.ToInstaMemberID
		copied.ToInstaMemberID = &toID
	}
	return &copied
}
