package likeableperson

import (
	"cmp"
	"context"
	"slices"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
)

// ListOutgoing lista as declarações feitas pelo ator, por id crescente.
func (s *LikeablePersonService) ListOutgoing(ctx context.Context, actor domain.Actor) ([]entities.LikeablePerson, error) {
	instaMember, err := s.resolveActor(ctx, "ListOutgoing", actor)
	if err != nil {
		return nil, err
	}

	likeablePeople, err := s.store.ListByFromInstaMemberID(ctx, instaMember.ID)
	if err != nil {
		return nil, s.storageError("ListOutgoing", "failed to list outgoing likeable people", err)
	}

	slices.SortFunc(likeablePeople, func(a, b entities.LikeablePerson) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return likeablePeople, nil
}
