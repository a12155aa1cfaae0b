package conversion

import (
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"
)

// AWS Load Balancer Controller annotations
const (
	AnnotationIngressClass    = "kubernetes.io/ingress.class"
	AnnotationScheme          = "alb.ingress.kubernetes.io/scheme"
	AnnotationTargetType      = "alb.ingress.kubernetes.io/target-type"
	AnnotationHealthcheckPath = "alb.ingress.kubernetes.io/healthcheck-path"
	AnnotationCertificateArn  = "alb.ingress.kubernetes.io/certificate-arn"
	AnnotationSSLRedirect     = "alb.ingress.kubernetes.io/ssl-redirect"
)

func ingressAnnotations(lb v1.LoadBalancer) map[string]string {
	annotations := map[string]string{
		AnnotationIngressClass:    "alb",
		AnnotationScheme:          "internet-facing",
		AnnotationTargetType:      "ip",
		AnnotationHealthcheckPath: DefaultProbePath,
	}
	if lb.HasCertificate() {
		annotations[AnnotationCertificateArn] = *lb.CertificateArn
		annotations[AnnotationSSLRedirect] = "443"
	}
	return annotations
}

// BuildIngress builds an ALB Ingress routing every path to the first Service
// port. It returns false when the service has no load balancer; only the
// first load balancer is consulted.
func BuildIngress(svc *v1.ServiceDefinition, appName string, ports []corev1.ServicePort) (*networkingv1.Ingress, bool) {
	if svc == nil || len(svc.LoadBalancers) == 0 {
		return nil, false
	}

	port := DefaultServicePort
	if len(ports) > 0 {
		port = ports[0].Port
	}

	return &networkingv1.Ingress{
		TypeMeta: metav1.TypeMeta{
			APIVersion: networkingv1.SchemeGroupVersion.String(),
			Kind:       "Ingress",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:        appName,
			Labels:      commonLabels(appName),
			Annotations: ingressAnnotations(svc.LoadBalancers[0]),
		},
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{{
				IngressRuleValue: networkingv1.IngressRuleValue{
					HTTP: &networkingv1.HTTPIngressRuleValue{
						Paths: []networkingv1.HTTPIngressPath{{
							Path:     "/",
							PathType: ptr.To(networkingv1.PathTypePrefix),
							Backend: networkingv1.IngressBackend{
								Service: &networkingv1.IngressServiceBackend{
									Name: appName,
									Port: networkingv1.ServiceBackendPort{
										Number: port,
									},
								},
							},
						}},
					},
				},
			}},
		},
	}, true
}
