package http

import (
	"time"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
)

type LikeRequestDTO struct {
	Username           string `json:"username"`
	AttractiveTypeCode int    `json:"attractive_type_code"`
}

type ModifyRequestDTO struct {
	AttractiveTypeCode int `json:"attractive_type_code"`
}

type LikeablePersonDTO struct {
	ID                      int64     `json:"id"`
	FromInstaMemberUsername string    `json:"from_insta_member_username"`
	ToInstaMemberUsername   string    `json:"to_insta_member_username"`
	ToInstaMemberVerified   bool      `json:"to_insta_member_verified"`
	AttractiveTypeCode      int       `json:"attractive_type_code"`
	AttractiveTypeName      string    `json:"attractive_type_name"`
	ModifyUnlocked          bool      `json:"modify_unlocked"`
	ModifyUnlockDate        time.Time `json:"modify_unlock_date"`
	ModifyUnlockRemaining   string    `json:"modify_unlock_remaining,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

type IncomingLikeablePersonDTO struct {
	LikeablePersonDTO
	FromGender string `json:"from_gender"`
	FromLikes  int64  `json:"from_likes"`
}

type ErrorDTO struct {
	Error            string     `json:"error"`
	Kind             string     `json:"kind"`
	ModifyUnlockDate *time.Time `json:"modify_unlock_date,omitempty"`
	Remaining        string     `json:"remaining,omitempty"`
}

func MapLikeablePersonToResponse(likeablePerson entities.LikeablePerson, now time.Time) LikeablePersonDTO {
	dto := LikeablePersonDTO{
		ID:                      likeablePerson.ID,
		FromInstaMemberUsername: likeablePerson.FromInstaMemberUsername,
		ToInstaMemberUsername:   likeablePerson.ToInstaMemberUsername,
		ToInstaMemberVerified:   likeablePerson.ToInstaMemberID != nil,
		AttractiveTypeCode:      int(likeablePerson.AttractiveTypeCode),
		AttractiveTypeName:      likeablePerson.AttractiveTypeCode.DisplayName(),
		ModifyUnlocked:          likeablePerson.IsModifyUnlocked(now),
		ModifyUnlockDate:        likeablePerson.ModifyUnlockDate,
		CreatedAt:               likeablePerson.CreatedAt,
		UpdatedAt:               likeablePerson.UpdatedAt,
	}

	if !dto.ModifyUnlocked {
		dto.ModifyUnlockRemaining = domain.HumanizeRemaining(now, likeablePerson.ModifyUnlockDate)
	}

	return dto
}

func MapLikeablePeopleToResponse(likeablePeople []entities.LikeablePerson, now time.Time) []LikeablePersonDTO {
	dtos := make([]LikeablePersonDTO, 0, len(likeablePeople))
	for _, likeablePerson := range likeablePeople {
		dtos = append(dtos, MapLikeablePersonToResponse(likeablePerson, now))
	}
	return dtos
}

func MapIncomingToResponse(items []domain.IncomingLikeablePerson, now time.Time) []IncomingLikeablePersonDTO {
	dtos := make([]IncomingLikeablePersonDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, IncomingLikeablePersonDTO{
			LikeablePersonDTO: MapLikeablePersonToResponse(item.LikeablePerson, now),
			FromGender:        item.FromGender,
			FromLikes:         item.FromLikes,
		})
	}
	return dtos
}
