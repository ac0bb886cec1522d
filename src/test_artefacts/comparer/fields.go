package comparer

import (
	"gramgram/src/domain/entities"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func IgnoreFieldsFor[T any](fields ...string) cmp.Option {
	var t T
	return cmpopts.IgnoreFields(t, fields...)
}

// LikeablePersonIgnoringAudit compara declarações lidas do banco com as
// montadas no teste: created_at/updated_at são do banco e o postgres trunca
// modify_unlock_date em microssegundos.
func LikeablePersonIgnoringAudit() cmp.Option {
	return cmp.Options{
		IgnoreFieldsFor[entities.LikeablePerson]("CreatedAt", "UpdatedAt"),
		TimeWithinTolerance(1),
	}
}
