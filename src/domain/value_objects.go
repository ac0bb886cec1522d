package domain

import (
	"time"

	"gramgram/src/domain/entities"
)

// Actor é o membro autenticado resolvido pela camada externa (gateway/sessão).
type Actor struct {
	MemberID int64
}

func (a Actor) IsAuthenticated() bool {
	return a.MemberID > 0
}

type LikeRequest struct {
	Username           string
	AttractiveTypeCode int
}

type ModifyRequest struct {
	ID                 int64
	AttractiveTypeCode int
}

type SortCode int

const (
	SortDefault            SortCode = 1
	SortIDAsc              SortCode = 2
	SortLikesDesc          SortCode = 3
	SortLikesAsc           SortCode = 4
	SortGenderDescIDDesc   SortCode = 5
	SortAttractiveTypeCode SortCode = 6
)

// IncomingQuery são os critérios da lista "quem gosta de mim".
type IncomingQuery struct {
	// Vazio = sem filtro.
	Gender string
	// 0 = sem filtro.
	AttractiveTypeCode int
	SortCode           SortCode
}

// IncomingLikeablePerson é uma aresta recebida junto com os atributos de quem declarou.
type IncomingLikeablePerson struct {
	entities.LikeablePerson
	FromGender string
	FromLikes  int64
}

// ModifyCheck é o resultado de CanModify: a aresta e quanto falta para liberar.
type ModifyCheck struct {
	LikeablePerson   entities.LikeablePerson
	ModifyUnlockDate time.Time
	Remaining        string
}
