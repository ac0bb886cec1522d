package likeableperson

import (
	"context"
	"fmt"
	"strings"

	"gramgram/src/domain"
)

// LinkPendingTargets é o gancho chamado quando um handle passa a ser
// verificado: as declarações feitas antes disso ganham o to_insta_member_id.
func (s *LikeablePersonService) LinkPendingTargets(ctx context.Context, event domain.InstaMemberVerifiedEvent) (int, error) {
	username := strings.TrimSpace(event.Username)
	if event.ID <= 0 || username == "" {
		return 0, fmt.Errorf("LikeablePersonService.LinkPendingTargets: %w", domain.Validation("verified insta member requires id and username"))
	}

	linkedIDs, err := s.store.LinkToInstaMember(ctx, username, event.ID)
	if err != nil {
		return 0, s.storageError("LinkPendingTargets", "failed to link pending targets", err)
	}

	if len(linkedIDs) > 0 {
		s.logger.Info("Linked pending likeable people",
			"to_insta_member_id", event.ID,
			"to_username", username,
			"count", len(linkedIDs))
	}

	return len(linkedIDs), nil
}
