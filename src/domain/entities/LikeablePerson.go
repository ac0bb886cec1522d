package entities

import "time"

// É a "aresta" dirigida de quem declara o interesse (from) para o alvo (to).
type LikeablePerson struct {
	ID int64 `json:"id"`
	// Nil quando quem declarou perdeu a verificação do handle.
	FromInstaMemberID       *int64 `json:"from_insta_member_id"`
	FromInstaMemberUsername string `json:"from_insta_member_username"`
	// Nil enquanto o handle alvo ainda não foi verificado no sistema.
	ToInstaMemberID       *int64         `json:"to_insta_member_id"`
	ToInstaMemberUsername string         `json:"to_insta_member_username"`
	AttractiveTypeCode    AttractiveType `json:"attractive_type_code"`
	ModifyUnlockDate      time.Time      `json:"modify_unlock_date"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// IsOwnedBy reports whether the declaring handle is the given insta member.
func (lp LikeablePerson) IsOwnedBy(instaMemberID int64) bool {
	return lp.FromInstaMemberID != nil && *lp.FromInstaMemberID == instaMemberID
}

func (lp LikeablePerson) IsModifyUnlocked(now time.Time) bool {
	return !now.Before(lp.ModifyUnlockDate)
}
