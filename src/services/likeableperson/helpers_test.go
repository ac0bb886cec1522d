package likeableperson_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
	"gramgram/src/repositories"
	"gramgram/src/services/likeableperson"
	"gramgram/src/test_artefacts/stubs"

	. "github.com/onsi/gomega"
)

var errBoom = errors.New("connection reset by peer")

type fakeClock struct {
	mu      sync.Mutex
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.LikeablePersonEvent
	err    error
}

func (p *recordingPublisher) PublishLikeablePersonEvent(_ context.Context, event domain.LikeablePersonEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.EventType)
	}
	return types
}

// failingStore faz o store falhar nas operações marcadas.
type failingStore struct {
	repositories.LikeablePersonStore
	failListByTo bool
	failInsert   bool
	conflictOnce bool
	onConflict   func()
}

func (s *failingStore) ListByToInstaMemberID(ctx context.Context, toInstaMemberID int64) ([]entities.LikeablePerson, error) {
	if s.failListByTo {
		return nil, errBoom
	}
	return s.LikeablePersonStore.ListByToInstaMemberID(ctx, toInstaMemberID)
}

func (s *failingStore) Insert(ctx context.Context, likeablePerson *entities.LikeablePerson) error {
	if s.failInsert {
		return errBoom
	}
	return s.LikeablePersonStore.Insert(ctx, likeablePerson)
}

// UpdateAttractiveType simula outra escrita chegando entre a leitura e o update.
func (s *failingStore) UpdateAttractiveType(
	ctx context.Context,
	id int64,
	expectedModifyUnlockDate time.Time,
	attractiveTypeCode entities.AttractiveType,
	modifyUnlockDate time.Time,
) (*entities.LikeablePerson, error) {
	if s.conflictOnce {
		s.conflictOnce = false
		s.onConflict()
	}
	return s.LikeablePersonStore.UpdateAttractiveType(ctx, id, expectedModifyUnlockDate, attractiveTypeCode, modifyUnlockDate)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedInstaMember(ctx context.Context, repository *repositories.MemoryInstaMemberRepository, stub stubs.InstaMemberStub) entities.InstaMember {
	instaMember := stub.Get()
	Expect(repository.Upsert(ctx, &instaMember)).To(Succeed())
	return instaMember
}

func newService(
	store repositories.LikeablePersonStore,
	instaMembers repositories.InstaMemberFinder,
	publisher likeableperson.EventPublisher,
	clock *fakeClock,
) *likeableperson.LikeablePersonService {
	return likeableperson.NewLikeablePersonService(newTestLogger(), store, instaMembers, publisher, 24*time.Hour).
		WithClock(clock.Now)
}
