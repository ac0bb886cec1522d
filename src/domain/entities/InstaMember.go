package entities

import "time"

// InstaMember é o handle externo verificado de um membro. Pertence a outro
// subsistema; aqui ele só é lido.
type InstaMember struct {
	ID       int64  `json:"id"`
	MemberID int64  `json:"member_id"`
	Username string `json:"username"`
	Gender   string `json:"gender"`
	// Contador de popularidade, usado apenas como chave de ordenação.
	Likes     int64     `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
