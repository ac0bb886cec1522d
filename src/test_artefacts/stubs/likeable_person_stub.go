package stubs

import (
	"time"

	"gramgram/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type LikeablePersonStub struct {
	likeablePerson entities.LikeablePerson
}

func NewLikeablePersonStub() LikeablePersonStub {
	now := time.Now().UTC()
	fromInstaMemberID := gofakeit.Int64()

	likeablePerson := entities.LikeablePerson{
		ID:                      gofakeit.Int64(),
		FromInstaMemberID:       &fromInstaMemberID,
		FromInstaMemberUsername: gofakeit.Username(),
		ToInstaMemberUsername:   gofakeit.Username(),
		AttractiveTypeCode:      entities.AttractiveType(gofakeit.IntRange(1, 3)),
		ModifyUnlockDate:        now.Add(24 * time.Hour),
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	return LikeablePersonStub{likeablePerson: likeablePerson}
}

func (ls LikeablePersonStub) WithID(id int64) LikeablePersonStub {
	ls.likeablePerson.ID = id
	return ls
}

func (ls LikeablePersonStub) WithFrom(instaMember entities.InstaMember) LikeablePersonStub {
	id := instaMember.ID
	ls.likeablePerson.FromInstaMemberID = &id
	ls.likeablePerson.FromInstaMemberUsername = instaMember.Username
	return ls
}

func (ls LikeablePersonStub) WithTo(instaMember entities.InstaMember) LikeablePersonStub {
	id := instaMember.ID
	ls.likeablePerson.ToInstaMemberID = &id
	ls.likeablePerson.ToInstaMemberUsername = instaMember.Username
	return ls
}

// WithPendingTo aponta para um username ainda não verificado.
func (ls LikeablePersonStub) WithPendingTo(username string) LikeablePersonStub {
	ls.likeablePerson.ToInstaMemberID = nil
	ls.likeablePerson.ToInstaMemberUsername = username
	return ls
}

func (ls LikeablePersonStub) WithAttractiveTypeCode(code entities.AttractiveType) LikeablePersonStub {
	ls.likeablePerson.AttractiveTypeCode = code
	return ls
}

func (ls LikeablePersonStub) WithModifyUnlockDate(modifyUnlockDate time.Time) LikeablePersonStub {
	ls.likeablePerson.ModifyUnlockDate = modifyUnlockDate
	return ls
}

func (ls LikeablePersonStub) Get() entities.LikeablePerson {
	return ls.likeablePerson
}
