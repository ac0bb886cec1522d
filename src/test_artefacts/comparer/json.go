package comparer

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
)

// JSONRawMessage compara payloads pelo conteúdo, ignorando ordem de chaves e espaços.
func JSONRawMessage() cmp.Option {
	return cmp.Comparer(func(x, y json.RawMessage) bool {
		if len(x) == 0 || len(y) == 0 {
			return len(x) == len(y)
		}

		var xObj, yObj any
		if json.Unmarshal(x, &xObj) != nil || json.Unmarshal(y, &yObj) != nil {
			return false
		}

		return cmp.Equal(xObj, yObj)
	})
}
