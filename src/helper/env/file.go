package env

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile lê um YAML plano (KEY: value) e exporta as chaves que ainda não
// estão definidas no ambiente. Variáveis de ambiente sempre vencem.
// Um path vazio não faz nada.
func LoadFile(path string) error {
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	values := map[string]yaml.Node{}
	if err := yaml.Unmarshal(content, &values); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for name, node := range values {
		if node.Kind != yaml.ScalarNode {
			return fmt.Errorf("config file %s: %s must be a scalar", path, name)
		}
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, node.Value); err != nil {
			return fmt.Errorf("failed to export %s: %w", name, err)
		}
	}

	return nil
}
