package v1

import (
	"fmt"

	"sigs.k8s.io/yaml"
)

// LoadTaskDefinition decodes a task definition from JSON or YAML
func LoadTaskDefinition(data []byte) (*TaskDefinition, error) {
	td := &TaskDefinition{}
	if err := yaml.Unmarshal(data, td); err != nil {
		return nil, fmt.Errorf("failed to parse task definition: %w", err)
	}
	return td, nil
}

// LoadServiceDefinition decodes a service definition from JSON or YAML
func LoadServiceDefinition(data []byte) (*ServiceDefinition, error) {
	svc := &ServiceDefinition{}
	if err := yaml.Unmarshal(data, svc); err != nil {
		return nil, fmt.Errorf("failed to parse service definition: %w", err)
	}
	return svc, nil
}
