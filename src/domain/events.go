package domain

import (
	"time"

	"gramgram/src/domain/entities"
)

const (
	EventLikeablePersonCreated  = "likeable_person.created"
	EventLikeablePersonModified = "likeable_person.modified"
	EventLikeablePersonCanceled = "likeable_person.canceled"
)

// LikeablePersonEvent é publicado depois que a mutação foi persistida.
type LikeablePersonEvent struct {
	EventType      string                  `json:"event_type"`
	OccurredAt     time.Time               `json:"occurred_at"`
	LikeablePerson entities.LikeablePerson `json:"likeable_person"`
	// Preenchido apenas em likeable_person.modified.
	PreviousAttractiveTypeCode entities.AttractiveType `json:"previous_attractive_type_code,omitempty"`
}

// InstaMemberVerifiedEvent chega do subsistema de verificação de handles.
type InstaMemberVerifiedEvent struct {
	ID       int64  `json:"id"`
	MemberID int64  `json:"member_id"`
	Username string `json:"username"`
	Gender   string `json:"gender"`
	Likes    int64  `json:"likes"`
}
