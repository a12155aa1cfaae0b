// Package v1 holds the supported subset of the ECS/Fargate task definition and
// service documents consumed by the migration tool.
package v1

import "strings"

// TaskDefinition is the subset of an ECS task definition understood by the converter
type TaskDefinition struct {
	Family               string                `json:"family,omitempty"`
	TaskRoleArn          *string               `json:"taskRoleArn,omitempty"`
	ContainerDefinitions []ContainerDefinition `json:"containerDefinitions" validate:"required,min=1,dive"`
}

// HasTaskRole reports whether the task definition carries a taskRoleArn key.
// An empty value still counts.
func (t *TaskDefinition) HasTaskRole() bool {
	return t.TaskRoleArn != nil
}

// ContainerDefinition describes one container of a task
type ContainerDefinition struct {
	Name         string         `json:"name" validate:"required"`
	Image        string         `json:"image" validate:"required"`
	PortMappings []PortMapping  `json:"portMappings,omitempty" validate:"dive"`
	Environment  []KeyValuePair `json:"environment,omitempty" validate:"dive"`
	Secrets      []Secret       `json:"secrets,omitempty" validate:"dive"`
	HealthCheck  *HealthCheck   `json:"healthCheck,omitempty"`
	Command      []string       `json:"command,omitempty"`
	EntryPoint   []string       `json:"entryPoint,omitempty"`

	// CPU is expressed in ECS CPU units, 1024 units being one vCPU.
	CPU *int64 `json:"cpu,omitempty"`
	// Memory is the hard limit in MiB.
	Memory *int64 `json:"memory,omitempty"`
}

// Protocol values accepted in port mappings
const (
	ProtocolTCP = "TCP"
	ProtocolUDP = "UDP"
)

// PortMapping exposes a container port
type PortMapping struct {
	ContainerPort *int32 `json:"containerPort" validate:"required"`
	Protocol      string `json:"protocol,omitempty"`
}

// Port returns the container port, or 0 when unset.
func (p PortMapping) Port() int32 {
	if p.ContainerPort == nil {
		return 0
	}
	return *p.ContainerPort
}

// NormalizedProtocol returns the upper-cased protocol, TCP when unset.
func (p PortMapping) NormalizedProtocol() string {
	if p.Protocol == "" {
		return ProtocolTCP
	}
	return strings.ToUpper(p.Protocol)
}

// KeyValuePair is a plain environment variable
type KeyValuePair struct {
	Name  string  `json:"name" validate:"required"`
	Value *string `json:"value" validate:"required"`
}

// Secret is an environment variable sourced from Secrets Manager or SSM
type Secret struct {
	Name      string `json:"name" validate:"required"`
	ValueFrom string `json:"valueFrom,omitempty"`
}

// HealthCheck is the container health check; every field is optional.
type HealthCheck struct {
	Command     []string `json:"command,omitempty"`
	Interval    *int32   `json:"interval,omitempty"`
	Timeout     *int32   `json:"timeout,omitempty"`
	Retries     *int32   `json:"retries,omitempty"`
	StartPeriod *int32   `json:"startPeriod,omitempty"`
}

// ServiceDefinition is the subset of an ECS service understood by the converter
type ServiceDefinition struct {
	ServiceName   string         `json:"serviceName,omitempty"`
	DesiredCount  *int32         `json:"desiredCount,omitempty"`
	LoadBalancers []LoadBalancer `json:"loadBalancers,omitempty"`
}

// LoadBalancer is one load balancer attachment of the service
type LoadBalancer struct {
	TargetGroupArn   string `json:"targetGroupArn,omitempty"`
	LoadBalancerName string `json:"loadBalancerName,omitempty"`
	ContainerName    string `json:"containerName,omitempty"`
	ContainerPort    *int32 `json:"containerPort,omitempty"`
	CertificateArn   *string `json:"certificateArn,omitempty"`
}

// HasCertificate reports whether the load balancer carries a certificateArn key
func (l LoadBalancer) HasCertificate() bool {
	return l.CertificateArn != nil
}
