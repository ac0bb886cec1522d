package likeableperson

import (
	"context"
	"errors"
	"fmt"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
)

// CanCancel verifica se o ator pode cancelar a declaração. Não há cooldown para cancelar.
func (s *LikeablePersonService) CanCancel(ctx context.Context, actor domain.Actor, id int64) (*entities.LikeablePerson, error) {
	instaMember, err := s.resolveActor(ctx, "CanCancel", actor)
	if err != nil {
		return nil, err
	}

	return s.loadOwned(ctx, "CanCancel", instaMember, id)
}

// Cancel apaga a declaração de forma definitiva.
func (s *LikeablePersonService) Cancel(ctx context.Context, actor domain.Actor, id int64) (err error) {
	defer func() { observe("cancel", err) }()

	likeablePerson, err := s.CanCancel(ctx, actor, id)
	if err != nil {
		return err
	}

	if _, err := s.store.Delete(ctx, likeablePerson.ID); err != nil {
		// Um cancelamento concorrente já removeu a linha.
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("LikeablePersonService.Cancel - id %d: %w", id, domain.ErrNotFound)
		}
		return s.storageError("Cancel", "failed to delete likeable person", err)
	}

	s.logger.Info("Likeable person canceled",
		"likeable_person_id", likeablePerson.ID,
		"to_username", likeablePerson.ToInstaMemberUsername)

	s.publish(ctx, domain.EventLikeablePersonCanceled, *likeablePerson, 0)

	return nil
}
