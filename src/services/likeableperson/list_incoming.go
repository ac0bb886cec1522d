package likeableperson

import (
	"context"
	"fmt"

	"gramgram/src/domain"
)

// ListIncoming lista as declarações que apontam para o handle do ator,
// filtradas e ordenadas conforme a query.
func (s *LikeablePersonService) ListIncoming(ctx context.Context, actor domain.Actor, query domain.IncomingQuery) ([]domain.IncomingLikeablePerson, error) {
	instaMember, err := s.resolveActor(ctx, "ListIncoming", actor)
	if err != nil {
		return nil, err
	}

	if query.AttractiveTypeCode < 0 || query.AttractiveTypeCode > 3 {
		return nil, fmt.Errorf("LikeablePersonService.ListIncoming: %w", domain.Validation("attractive_type_code filter must be between 0 and 3, got %d", query.AttractiveTypeCode))
	}

	likeablePeople, err := s.store.ListByToInstaMemberID(ctx, instaMember.ID)
	if err != nil {
		return nil, s.storageError("ListIncoming", "failed to list incoming likeable people", err)
	}

	if len(likeablePeople) == 0 {
		return []domain.IncomingLikeablePerson{}, nil
	}

	fromIDs := make([]int64, 0, len(likeablePeople))
	seen := make(map[int64]struct{}, len(likeablePeople))
	for _, likeablePerson := range likeablePeople {
		if likeablePerson.FromInstaMemberID == nil {
			continue
		}
		if _, ok := seen[*likeablePerson.FromInstaMemberID]; !ok {
			seen[*likeablePerson.FromInstaMemberID] = struct{}{}
			fromIDs = append(fromIDs, *likeablePerson.FromInstaMemberID)
		}
	}

	declarers, err := s.instaMembers.FindByIDs(ctx, fromIDs)
	if err != nil {
		return nil, s.storageError("ListIncoming", "failed to resolve declarers", err)
	}

	// Quem perdeu a verificação entra com gênero vazio e zero likes.
	items := make([]domain.IncomingLikeablePerson, 0, len(likeablePeople))
	for _, likeablePerson := range likeablePeople {
		item := domain.IncomingLikeablePerson{LikeablePerson: likeablePerson}
		if likeablePerson.FromInstaMemberID != nil {
			if declarer, ok := declarers[*likeablePerson.FromInstaMemberID]; ok {
				item.FromGender = declarer.Gender
				item.FromLikes = declarer.Likes
			}
		}
		items = append(items, item)
	}

	return FilterAndSort(items, query), nil
}
