package conversion

import (
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// AnnotationRoleArn binds a ServiceAccount to an IAM role (IRSA)
const AnnotationRoleArn = "eks.amazonaws.com/role-arn"

// BuildServiceAccount builds the ServiceAccount carrying the task role. It
// returns false when the task definition has no task role.
func BuildServiceAccount(td *v1.TaskDefinition, appName string) (*corev1.ServiceAccount, bool) {
	if !td.HasTaskRole() {
		return nil, false
	}

	return &corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{
			APIVersion: corev1.SchemeGroupVersion.String(),
			Kind:       "ServiceAccount",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:   appName,
			Labels: commonLabels(appName),
			Annotations: map[string]string{
				AnnotationRoleArn: *td.TaskRoleArn,
			},
		},
	}, true
}
