package conversion

import (
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/klog/v2"
	"k8s.io/utils/ptr"
)

// DefaultReplicas is used when the service does not set desiredCount
const DefaultReplicas int32 = 2

// DesiredCount returns the service's desired count, DefaultReplicas when unset
func DesiredCount(svc *v1.ServiceDefinition) int32 {
	if svc == nil {
		return DefaultReplicas
	}
	return ptr.Deref(svc.DesiredCount, DefaultReplicas)
}

// BuildDeployment builds the Deployment running every container of the task
func BuildDeployment(td *v1.TaskDefinition, svc *v1.ServiceDefinition, appName string) *appsv1.Deployment {
	containers := make([]corev1.Container, 0, len(td.ContainerDefinitions))
	for i := range td.ContainerDefinitions {
		container := BuildContainer(&td.ContainerDefinitions[i], appName)
		klog.V(2).InfoS("Converted container", "app", appName, "container", container.Name, "image", container.Image)
		containers = append(containers, container)
	}

	podSpec := corev1.PodSpec{
		Containers:    containers,
		RestartPolicy: corev1.RestartPolicyAlways,
	}
	// Must match the ServiceAccount emitted by BuildServiceAccount
	if td.HasTaskRole() {
		podSpec.ServiceAccountName = appName
	}

	maxSurge := intstr.FromInt32(1)
	maxUnavailable := intstr.FromInt32(0)

	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{
			APIVersion: appsv1.SchemeGroupVersion.String(),
			Kind:       "Deployment",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:   appName,
			Labels: workloadLabels(appName),
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(DesiredCount(svc)),
			Selector: &metav1.LabelSelector{
				MatchLabels: selectorLabels(appName),
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: selectorLabels(appName),
				},
				Spec: podSpec,
			},
			Strategy: appsv1.DeploymentStrategy{
				Type: appsv1.RollingUpdateDeploymentStrategyType,
				RollingUpdate: &appsv1.RollingUpdateDeployment{
					MaxSurge:       &maxSurge,
					MaxUnavailable: &maxUnavailable,
				},
			},
		},
	}
}
