package debezium

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CDCEvent é o envelope do Debezium com o payload já sem schema
// (value.converter.schemas.enable=false).
type CDCEvent struct {
	Before    Row       `json:"before"`
	After     Row       `json:"after"`
	Source    CDCSource `json:"source"`
	Operation string    `json:"op"` // c=create, u=update, d=delete, r=read
	TsMs      int64     `json:"ts_ms"`
}

type CDCSource struct {
	Connector string `json:"connector"`
	Name      string `json:"name"`
	Snapshot  string `json:"snapshot"`
	DB        string `json:"db"`
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	LSN       int64  `json:"lsn"`
}

// Row guarda as colunas cruas; a conversão fica para quem conhece a tabela.
type Row map[string]json.RawMessage

// Int64 lê uma coluna bigint. NULL ou ausente vira 0.
func (r Row) Int64(column string) (int64, error) {
	raw, ok := r[column]
	if !ok || string(raw) == "null" {
		return 0, nil
	}

	value, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("column %s is not an integer: %w", column, err)
	}
	return value, nil
}

// String lê uma coluna texto. NULL ou ausente vira "".
func (r Row) String(column string) (string, error) {
	raw, ok := r[column]
	if !ok || string(raw) == "null" {
		return "", nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("column %s is not a string: %w", column, err)
	}
	return value, nil
}
