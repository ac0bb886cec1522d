package likeableperson

import (
	"cmp"
	"slices"

	"gramgram/src/domain"
)

// FilterAndSort aplica, nesta ordem, o filtro de gênero, o filtro de tipo de
// atração e a ordenação pedida. Códigos de ordenação desconhecidos mantêm a
// ordem de entrada. Nunca retorna nil.
func FilterAndSort(items []domain.IncomingLikeablePerson, query domain.IncomingQuery) []domain.IncomingLikeablePerson {
	result := make([]domain.IncomingLikeablePerson, 0, len(items))
	for _, item := range items {
		if query.Gender != "" && item.FromGender != query.Gender {
			continue
		}
		if query.AttractiveTypeCode != 0 && int(item.AttractiveTypeCode) != query.AttractiveTypeCode {
			continue
		}
		result = append(result, item)
	}

	if compare := comparatorFor(query.SortCode); compare != nil {
		slices.SortStableFunc(result, compare)
	}

	return result
}

func comparatorFor(sortCode domain.SortCode) func(a, b domain.IncomingLikeablePerson) int {
	switch sortCode {
	case domain.SortIDAsc:
		return func(a, b domain.IncomingLikeablePerson) int {
			return cmp.Compare(a.ID, b.ID)
		}
	case domain.SortLikesDesc:
		return func(a, b domain.IncomingLikeablePerson) int {
			return cmp.Compare(b.FromLikes, a.FromLikes)
		}
	case domain.SortLikesAsc:
		return func(a, b domain.IncomingLikeablePerson) int {
			return cmp.Compare(a.FromLikes, b.FromLikes)
		}
	case domain.SortGenderDescIDDesc:
		return func(a, b domain.IncomingLikeablePerson) int {
			if c := cmp.Compare(b.FromGender, a.FromGender); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		}
	case domain.SortAttractiveTypeCode:
		return func(a, b domain.IncomingLikeablePerson) int {
			if c := cmp.Compare(a.AttractiveTypeCode, b.AttractiveTypeCode); c != 0 {
				return c
			}
			return cmp.Compare(b.ID, a.ID)
		}
	default:
		return nil
	}
}
