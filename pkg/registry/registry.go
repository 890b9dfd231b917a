// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
)

func LoadRegistry(path string) (*ConnectorRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ConnectorRegistry
	err = json.Unmarshal(data, &reg)
	return &reg, err
}

// Find returns the registry entry for a connector ID, or nil.
func (r *ConnectorRegistry) Find(id string) *Connector {
	for i := range r.Connectors {
		if r.Connectors[i].ID == id {
			return &r.Connectors[i]
		}
	}
	return nil
}

// ValidateConfig checks a provider configuration against the connector's
// declared config schema.
func (r *ConnectorRegistry) ValidateConfig(id string, cfg map[string]interface{}) error {
	entry := r.Find(id)
	if entry == nil {
		return fmt.Errorf("unknown connector: %s", id)
	}
	if entry.ConfigSchema == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(entry.ConfigSchema),
		gojsonschema.NewGoLoader(cfg),
	)
	if err != nil {
		return fmt.Errorf("validate %s config: %w", id, err)
	}
	if !result.Valid() {
		return fmt.Errorf("invalid %s config: %s", id, result.Errors()[0].String())
	}
	return nil
}
