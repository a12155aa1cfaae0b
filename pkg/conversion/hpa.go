package conversion

import (
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

// Autoscaling policy
const (
	ReplicaHeadroom         int32 = 5
	MaxReplicasCap          int32 = 50
	TargetCPUUtilization    int32 = 70
	TargetMemoryUtilization int32 = 80
)

// MaxReplicas returns min(desired*ReplicaHeadroom, MaxReplicasCap)
func MaxReplicas(desired int32) int32 {
	return min(desired*ReplicaHeadroom, MaxReplicasCap)
}

func utilizationMetric(name corev1.ResourceName, target int32) autoscalingv2.MetricSpec {
	return autoscalingv2.MetricSpec{
		Type: autoscalingv2.ResourceMetricSourceType,
		Resource: &autoscalingv2.ResourceMetricSource{
			Name: name,
			Target: autoscalingv2.MetricTarget{
				Type:               autoscalingv2.UtilizationMetricType,
				AverageUtilization: ptr.To(target),
			},
		},
	}
}

// BuildHPA builds the HorizontalPodAutoscaler targeting the application Deployment
func BuildHPA(svc *v1.ServiceDefinition, appName string) *autoscalingv2.HorizontalPodAutoscaler {
	desired := DesiredCount(svc)

	return &autoscalingv2.HorizontalPodAutoscaler{
		TypeMeta: metav1.TypeMeta{
			APIVersion: autoscalingv2.SchemeGroupVersion.String(),
			Kind:       "HorizontalPodAutoscaler",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:   appName,
			Labels: commonLabels(appName),
		},
		Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
				APIVersion: appsv1.SchemeGroupVersion.String(),
				Kind:       "Deployment",
				Name:       appName,
			},
			MinReplicas: ptr.To(desired),
			MaxReplicas: MaxReplicas(desired),
			Metrics: []autoscalingv2.MetricSpec{
				utilizationMetric(corev1.ResourceCPU, TargetCPUUtilization),
				utilizationMetric(corev1.ResourceMemory, TargetMemoryUtilization),
			},
		},
	}
}
