package stubs

import (
	"time"

	"gramgram/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type InstaMemberStub struct {
	instaMember entities.InstaMember
}

func NewInstaMemberStub() InstaMemberStub {
	now := time.Now().UTC()

	instaMember := entities.InstaMember{
		MemberID:  int64(gofakeit.IntRange(1, 1_000_000_000)),
		Username:  gofakeit.Username() + gofakeit.DigitN(4),
		Gender:    gofakeit.RandomString([]string{"M", "W"}),
		Likes:     int64(gofakeit.IntRange(0, 10000)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return InstaMemberStub{instaMember: instaMember}
}

func (is InstaMemberStub) WithMemberID(memberID int64) InstaMemberStub {
	is.instaMember.MemberID = memberID
	return is
}

func (is InstaMemberStub) WithUsername(username string) InstaMemberStub {
	is.instaMember.Username = username
	return is
}

func (is InstaMemberStub) WithGender(gender string) InstaMemberStub {
	is.instaMember.Gender = gender
	return is
}

func (is InstaMemberStub) WithLikes(likes int64) InstaMemberStub {
	is.instaMember.Likes = likes
	return is
}

func (is InstaMemberStub) Get() entities.InstaMember {
	return is.instaMember
}
