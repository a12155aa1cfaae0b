package conversion

import (
	"fmt"

	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
)

// Liveness probe defaults applied when the health check leaves a field unset
const (
	DefaultProbePath         = "/health"
	DefaultProbePort   int32 = 80
	DefaultStartPeriod int32 = 30
	DefaultInterval    int32 = 30
	DefaultTimeout     int32 = 5
	DefaultRetries     int32 = 3
)

// SecretName is the Secret holding the values of an application's ECS secrets
func SecretName(appName string) string {
	return appName + "-secrets"
}

// PortName derives the port name from its number
func PortName(port int32) string {
	return fmt.Sprintf("port-%d", port)
}

// BuildContainer builds the Kubernetes container for one ECS container definition
func BuildContainer(c *v1.ContainerDefinition, appName string) corev1.Container {
	container := corev1.Container{
		Name:            c.Name,
		Image:           c.Image,
		ImagePullPolicy: corev1.PullIfNotPresent,
		Ports:           BuildContainerPorts(c.PortMappings),
		Env:             BuildEnv(c, appName),
		Resources:       BuildResourceRequirements(c),
	}

	if c.HealthCheck != nil {
		container.LivenessProbe = BuildLivenessProbe(c.HealthCheck, c.PortMappings)
	}

	// entryPoint is applied last and wins over command
	if c.Command != nil {
		container.Command = c.Command
	}
	if c.EntryPoint != nil {
		container.Command = c.EntryPoint
	}

	return container
}

// BuildContainerPorts returns nil when the container maps no ports
func BuildContainerPorts(mappings []v1.PortMapping) []corev1.ContainerPort {
	if len(mappings) == 0 {
		return nil
	}
	ports := make([]corev1.ContainerPort, 0, len(mappings))
	for _, pm := range mappings {
		ports = append(ports, corev1.ContainerPort{
			Name:          PortName(pm.Port()),
			ContainerPort: pm.Port(),
			Protocol:      corev1.Protocol(pm.NormalizedProtocol()),
		})
	}
	return ports
}

// BuildEnv lists plain variables first, then secrets as references into the
// application Secret. It returns nil when the container has neither.
func BuildEnv(c *v1.ContainerDefinition, appName string) []corev1.EnvVar {
	if len(c.Environment)+len(c.Secrets) == 0 {
		return nil
	}

	envVars := make([]corev1.EnvVar, 0, len(c.Environment)+len(c.Secrets))
	for _, env := range c.Environment {
		envVars = append(envVars, corev1.EnvVar{
			Name:  env.Name,
			Value: ptr.Deref(env.Value, ""),
		})
	}
	for _, secret := range c.Secrets {
		envVars = append(envVars, corev1.EnvVar{
			Name: secret.Name,
			ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: SecretName(appName)},
					Key:                  secret.Name,
				},
			},
		})
	}
	return envVars
}

// BuildLivenessProbe turns an ECS health check into an HTTP liveness probe.
// The path is the first element of the health check command as-is.
func BuildLivenessProbe(hc *v1.HealthCheck, mappings []v1.PortMapping) *corev1.Probe {
	path := DefaultProbePath
	if len(hc.Command) > 0 {
		path = hc.Command[0]
	}

	port := DefaultProbePort
	if len(mappings) > 0 {
		port = mappings[0].Port()
	}

	return &corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{
			HTTPGet: &corev1.HTTPGetAction{
				Path: path,
				Port: intstr.FromInt32(port),
			},
		},
		InitialDelaySeconds: ptr.Deref(hc.StartPeriod, DefaultStartPeriod),
		PeriodSeconds:       ptr.Deref(hc.Interval, DefaultInterval),
		TimeoutSeconds:      ptr.Deref(hc.Timeout, DefaultTimeout),
		FailureThreshold:    ptr.Deref(hc.Retries, DefaultRetries),
	}
}
