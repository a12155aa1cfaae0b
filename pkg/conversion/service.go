package conversion

import (
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
)

// Port synthesized when no container maps any port
const (
	DefaultServicePortName       = "http"
	DefaultServicePort     int32 = 80
)

// BuildServicePorts flattens the port mappings of every container, in
// container order then mapping order.
func BuildServicePorts(td *v1.TaskDefinition) []corev1.ServicePort {
	var ports []corev1.ServicePort
	for _, c := range td.ContainerDefinitions {
		for _, pm := range c.PortMappings {
			ports = append(ports, corev1.ServicePort{
				Name:       PortName(pm.Port()),
				Port:       pm.Port(),
				TargetPort: intstr.FromInt32(pm.Port()),
				Protocol:   corev1.Protocol(pm.NormalizedProtocol()),
			})
		}
	}

	if len(ports) == 0 {
		ports = []corev1.ServicePort{{
			Name:       DefaultServicePortName,
			Port:       DefaultServicePort,
			TargetPort: intstr.FromInt32(DefaultServicePort),
			Protocol:   corev1.ProtocolTCP,
		}}
	}
	return ports
}

// BuildService builds the ClusterIP Service fronting the application pods
func BuildService(td *v1.TaskDefinition, appName string) *corev1.Service {
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{
			APIVersion: corev1.SchemeGroupVersion.String(),
			Kind:       "Service",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:   appName,
			Labels: commonLabels(appName),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: selectorLabels(appName),
			Ports:    BuildServicePorts(td),
		},
	}
}
