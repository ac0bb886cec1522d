package likeableperson

import (
	"context"
	"errors"
	"fmt"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
)

// CanModify verifica ownership e cooldown. O resultado traz o tempo restante
// para a tela de edição.
func (s *LikeablePersonService) CanModify(ctx context.Context, actor domain.Actor, id int64) (*domain.ModifyCheck, error) {
	instaMember, err := s.resolveActor(ctx, "CanModify", actor)
	if err != nil {
		return nil, err
	}

	return s.checkModify(ctx, "CanModify", instaMember, id)
}

func (s *LikeablePersonService) checkModify(ctx context.Context, operation string, instaMember *entities.InstaMember, id int64) (*domain.ModifyCheck, error) {
	likeablePerson, err := s.loadOwned(ctx, operation, instaMember, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !likeablePerson.IsModifyUnlocked(now) {
		return nil, fmt.Errorf("LikeablePersonService.%s - id %d: %w", operation, id, domain.NewLockedError(now, likeablePerson.ModifyUnlockDate))
	}

	return &domain.ModifyCheck{
		LikeablePerson:   *likeablePerson,
		ModifyUnlockDate: likeablePerson.ModifyUnlockDate,
		Remaining:        domain.HumanizeRemaining(now, likeablePerson.ModifyUnlockDate),
	}, nil
}

// ModifyAttractive troca o tipo de atração e reinicia o cooldown na mesma escrita.
func (s *LikeablePersonService) ModifyAttractive(ctx context.Context, actor domain.Actor, request domain.ModifyRequest) (_ *entities.LikeablePerson, err error) {
	defer func() { observe("modify", err) }()

	attractiveTypeCode := entities.AttractiveType(request.AttractiveTypeCode)

	instaMember, err := s.resolveActor(ctx, "ModifyAttractive", actor)
	if err != nil {
		return nil, err
	}

	if !attractiveTypeCode.IsValid() {
		return nil, fmt.Errorf("LikeablePersonService.ModifyAttractive: %w", domain.Validation("attractive_type_code must be between 1 and 3, got %d", request.AttractiveTypeCode))
	}

	check, err := s.checkModify(ctx, "ModifyAttractive", instaMember, request.ID)
	if err != nil {
		return nil, err
	}
	likeablePerson := check.LikeablePerson

	if likeablePerson.AttractiveTypeCode == attractiveTypeCode {
		return nil, fmt.Errorf("LikeablePersonService.ModifyAttractive - id %d: %w", request.ID, domain.ErrNoChange)
	}

	now := s.now()
	updated, err := s.store.UpdateAttractiveType(ctx, likeablePerson.ID, likeablePerson.ModifyUnlockDate, attractiveTypeCode, now.Add(s.modifyCooldown))
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, s.conflictError(ctx, instaMember, request.ID)
		}
		return nil, s.storageError("ModifyAttractive", "failed to update attractive type", err)
	}

	s.logger.Info("Likeable person modified",
		"likeable_person_id", updated.ID,
		"previous_attractive_type_code", int(likeablePerson.AttractiveTypeCode),
		"attractive_type_code", int(updated.AttractiveTypeCode))

	s.publish(ctx, domain.EventLikeablePersonModified, *updated, likeablePerson.AttractiveTypeCode)

	return updated, nil
}

// conflictError explica por que o update otimista perdeu: a linha sumiu
// (cancelada) ou outra modificação reiniciou o cooldown.
func (s *LikeablePersonService) conflictError(ctx context.Context, instaMember *entities.InstaMember, id int64) error {
	current, err := s.loadOwned(ctx, "ModifyAttractive", instaMember, id)
	if err != nil {
		return err
	}

	return fmt.Errorf("LikeablePersonService.ModifyAttractive - id %d: %w", id, domain.NewLockedError(s.now(), current.ModifyUnlockDate))
}
