// pkg/registry/schema.go
package registry

type ConnectorRegistry struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	Connectors  []Connector `json:"connectors"`
}

type Connector struct {
	ID           string                 `json:"id"`
	DisplayName  string                 `json:"displayName"`
	Description  string                 `json:"description"`
	Status       string                 `json:"status"`
	Capabilities []string               `json:"capabilities"`
	ConfigSchema map[string]interface{} `json:"configSchema"`
	ErrorCodes   []string               `json:"errorCodes"`
	Docs         string                 `json:"docs"`
}
