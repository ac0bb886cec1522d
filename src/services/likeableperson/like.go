package likeableperson

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
)

// Like registra uma nova declaração do ator para o username informado.
// Se já existe uma declaração para o mesmo alvo retorna ErrDuplicateEdge;
// o caminho para trocar o tipo é ModifyAttractive.
func (s *LikeablePersonService) Like(ctx context.Context, actor domain.Actor, request domain.LikeRequest) (_ *entities.LikeablePerson, err error) {
	defer func() { observe("like", err) }()

	fromInstaMember, err := s.resolveActor(ctx, "Like", actor)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(request.Username)
	if err := validateUsername(username); err != nil {
		return nil, fmt.Errorf("LikeablePersonService.Like: %w", err)
	}

	attractiveTypeCode := entities.AttractiveType(request.AttractiveTypeCode)
	if !attractiveTypeCode.IsValid() {
		return nil, fmt.Errorf("LikeablePersonService.Like: %w", domain.Validation("attractive_type_code must be between 1 and 3, got %d", request.AttractiveTypeCode))
	}

	if username == fromInstaMember.Username {
		return nil, fmt.Errorf("LikeablePersonService.Like: %w", domain.Validation("cannot register yourself as a likeable person"))
	}

	_, err = s.store.FindByFromAndToUsername(ctx, fromInstaMember.ID, username)
	if err == nil {
		return nil, fmt.Errorf("LikeablePersonService.Like - %s: %w", username, domain.ErrDuplicateEdge)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, s.storageError("Like", "failed to check existing likeable person", err)
	}

	// O alvo não precisa estar verificado; sem insta member o vínculo fica pendente.
	var toInstaMemberID *int64
	toInstaMember, err := s.instaMembers.FindByUsername(ctx, username)
	switch {
	case err == nil:
		toInstaMemberID = &toInstaMember.ID
	case errors.Is(err, domain.ErrInstaMemberNotFound):
	default:
		return nil, s.storageError("Like", "failed to resolve target insta member", err)
	}

	fromInstaMemberID := fromInstaMember.ID
	likeablePerson := &entities.LikeablePerson{
		FromInstaMemberID:       &fromInstaMemberID,
		FromInstaMemberUsername: fromInstaMember.Username,
		ToInstaMemberID:         toInstaMemberID,
		ToInstaMemberUsername:   username,
		AttractiveTypeCode:      attractiveTypeCode,
		ModifyUnlockDate:        s.now().Add(s.modifyCooldown),
	}

	if err := s.store.Insert(ctx, likeablePerson); err != nil {
		// Outra requisição concorrente venceu a corrida pelo mesmo alvo.
		if errors.Is(err, domain.ErrDuplicateEdge) {
			return nil, fmt.Errorf("LikeablePersonService.Like - %s: %w", username, domain.ErrDuplicateEdge)
		}
		return nil, s.storageError("Like", "failed to insert likeable person", err)
	}

	s.logger.Info("Likeable person registered",
		"likeable_person_id", likeablePerson.ID,
		"from_insta_member_id", fromInstaMemberID,
		"to_username", username,
		"attractive_type_code", int(attractiveTypeCode))

	s.publish(ctx, domain.EventLikeablePersonCreated, *likeablePerson, 0)

	return likeablePerson, nil
}

func validateUsername(username string) error {
	if username == "" {
		return domain.Validation("username must not be blank")
	}

	length := utf8.RuneCountInString(username)
	if length < minUsernameLength || length > maxUsernameLength {
		return domain.Validation("username must have between %d and %d characters, got %d", minUsernameLength, maxUsernameLength, length)
	}

	return nil
}
