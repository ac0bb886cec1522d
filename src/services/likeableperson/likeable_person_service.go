package likeableperson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
	"gramgram/src/infra/metrics"
	"gramgram/src/repositories"
)

const DefaultModifyCooldown = 24 * time.Hour

// EventPublisher recebe os eventos de domínio depois que a mutação foi persistida.
type EventPublisher interface {
	PublishLikeablePersonEvent(ctx context.Context, event domain.LikeablePersonEvent) error
}

// LikeablePersonService concentra as regras de ciclo de vida das declarações
// (criação, cancelamento, modificação com cooldown) e a lista de recebidas.
type LikeablePersonService struct {
	logger         *slog.Logger
	store          repositories.LikeablePersonStore
	instaMembers   repositories.InstaMemberFinder
	publisher      EventPublisher
	modifyCooldown time.Duration
	now            func() time.Time
}

// NewLikeablePersonService aceita publisher nil (eventos desligados).
func NewLikeablePersonService(
	logger *slog.Logger,
	store repositories.LikeablePersonStore,
	instaMembers repositories.InstaMemberFinder,
	publisher EventPublisher,
	modifyCooldown time.Duration,
) *LikeablePersonService {
	if modifyCooldown <= 0 {
		modifyCooldown = DefaultModifyCooldown
	}

	return &LikeablePersonService{
		logger:         logger,
		store:          store,
		instaMembers:   instaMembers,
		publisher:      publisher,
		modifyCooldown: modifyCooldown,
		now:            time.Now,
	}
}

// WithClock troca a fonte de tempo (testes).
func (s *LikeablePersonService) WithClock(now func() time.Time) *LikeablePersonService {
	s.now = now
	return s
}

// Now é o relógio usado nas decisões de cooldown.
func (s *LikeablePersonService) Now() time.Time {
	return s.now()
}

// resolveActor é a pré-condição de toda operação: membro autenticado e com handle verificado.
func (s *LikeablePersonService) resolveActor(ctx context.Context, operation string, actor domain.Actor) (*entities.InstaMember, error) {
	if !actor.IsAuthenticated() {
		return nil, fmt.Errorf("LikeablePersonService.%s: %w", operation, domain.ErrUnauthenticated)
	}

	instaMember, err := s.instaMembers.FindByMemberID(ctx, actor.MemberID)
	if err != nil {
		if errors.Is(err, domain.ErrInstaMemberNotFound) {
			return nil, fmt.Errorf("LikeablePersonService.%s - member %d: %w", operation, actor.MemberID, domain.ErrNotVerified)
		}
		return nil, s.storageError(operation, "failed to resolve insta member", err)
	}

	return instaMember, nil
}

// loadOwned resolve a aresta e confere ownership.
func (s *LikeablePersonService) loadOwned(ctx context.Context, operation string, instaMember *entities.InstaMember, id int64) (*entities.LikeablePerson, error) {
	likeablePerson, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("LikeablePersonService.%s - id %d: %w", operation, id, domain.ErrNotFound)
		}
		return nil, s.storageError(operation, "failed to find likeable person", err)
	}

	if !likeablePerson.IsOwnedBy(instaMember.ID) {
		return nil, fmt.Errorf("LikeablePersonService.%s - id %d: %w", operation, id, domain.ErrForbidden)
	}

	return likeablePerson, nil
}

func (s *LikeablePersonService) storageError(operation string, message string, err error) error {
	s.logger.Error("Likeable person storage failure", "operation", operation, "error", err)
	return fmt.Errorf("LikeablePersonService.%s - %s: %w: %w", operation, message, domain.ErrStorage, err)
}

func (s *LikeablePersonService) publish(ctx context.Context, eventType string, likeablePerson entities.LikeablePerson, previous entities.AttractiveType) {
	if s.publisher == nil {
		return
	}

	event := domain.LikeablePersonEvent{
		EventType:                  eventType,
		OccurredAt:                 s.now(),
		LikeablePerson:             likeablePerson,
		PreviousAttractiveTypeCode: previous,
	}

	// A mutação já foi commitada; falha de publicação não desfaz a operação.
	if err := s.publisher.PublishLikeablePersonEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish likeable person event",
			"event_type", eventType,
			"likeable_person_id", likeablePerson.ID,
			"error", err)
	}
}

func observe(operation string, err error) {
	metrics.LikeablePersonOperations.WithLabelValues(operation, Outcome(err)).Inc()
}

// Outcome classifica um erro do serviço num rótulo curto (métricas e logs).
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, domain.ErrNotVerified):
		return "not_verified"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrDuplicateEdge):
		return "duplicate"
	case errors.Is(err, domain.ErrLocked):
		return "locked"
	case errors.Is(err, domain.ErrNoChange):
		return "no_change"
	default:
		return "storage"
	}
}
