package debezium

import (
	"encoding/json"
	"fmt"
	"strings"
)

// CDCSerializer faz o parse e a validação das mensagens CDC e filtra as tabelas de interesse.
type CDCSerializer struct {
	IncludeTables []string
}

func NewCDCSerializer(tables ...string) *CDCSerializer {
	return &CDCSerializer{IncludeTables: tables}
}

// IsTableMonitored aceita nome exato ou prefixo terminado em "*" (tabelas particionadas).
func (s *CDCSerializer) IsTableMonitored(tableName string) bool {
	for _, included := range s.IncludeTables {
		if tableName == included {
			return true
		}
		if strings.HasSuffix(included, "*") && strings.HasPrefix(tableName, strings.TrimSuffix(included, "*")) {
			return true
		}
	}
	return false
}

// ParseCDCEvent deserializes Kafka message to CDC event
func (s *CDCSerializer) ParseCDCEvent(messageValue []byte) (*CDCEvent, error) {
	var cdcEvent CDCEvent
	if err := json.Unmarshal(messageValue, &cdcEvent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CDC event: %w", err)
	}

	if err := validateCDCEvent(&cdcEvent); err != nil {
		return nil, fmt.Errorf("invalid CDC event: %w", err)
	}

	return &cdcEvent, nil
}

func validateCDCEvent(event *CDCEvent) error {
	if event.Source.Table == "" {
		return fmt.Errorf("missing source table")
	}

	switch event.Operation {
	case "c", "u", "r":
		if event.After == nil {
			return fmt.Errorf("missing 'after' data for operation %s", event.Operation)
		}
	case "d":
		if event.Before == nil {
			return fmt.Errorf("missing 'before' data for delete operation")
		}
	case "":
		return fmt.Errorf("missing operation")
	default:
		return fmt.Errorf("invalid operation: %s", event.Operation)
	}

	return nil
}

// IsUpsert indica create, update ou leitura de snapshot.
func (e *CDCEvent) IsUpsert() bool {
	return e.Operation == "c" || e.Operation == "u" || e.Operation == "r"
}
