package entities

type AttractiveType int

const (
	AttractiveTypeAppearance  AttractiveType = 1
	AttractiveTypePersonality AttractiveType = 2
	AttractiveTypeAbility     AttractiveType = 3
)

func (t AttractiveType) IsValid() bool {
	return t >= AttractiveTypeAppearance && t <= AttractiveTypeAbility
}

func (t AttractiveType) DisplayName() string {
	switch t {
	case AttractiveTypeAppearance:
		return "appearance"
	case AttractiveTypePersonality:
		return "personality"
	case AttractiveTypeAbility:
		return "ability"
	default:
		return "unknown"
	}
}
