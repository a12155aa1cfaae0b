package conversion

import (
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/klog/v2"
)

// DefaultAppName is used when the task definition has no family
const DefaultAppName = "cygni-app"

// Kind identifies a generated manifest; it is also the file name suffix
type Kind string

// Manifest kinds in output order
const (
	KindDeployment     Kind = "deployment"
	KindService        Kind = "service"
	KindIngress        Kind = "ingress"
	KindServiceAccount Kind = "serviceaccount"
	KindHPA            Kind = "hpa"
)

// Object is a typed Kubernetes resource with object metadata
type Object interface {
	metav1.Object
	runtime.Object
}

// Manifest is one generated resource tagged with its kind
type Manifest struct {
	Kind   Kind
	Object Object
}

// ManifestSet holds every resource generated for one application. Ingress and
// ServiceAccount are nil when their trigger is absent.
type ManifestSet struct {
	AppName        string
	Deployment     *appsv1.Deployment
	Service        *corev1.Service
	Ingress        *networkingv1.Ingress
	ServiceAccount *corev1.ServiceAccount
	HPA            *autoscalingv2.HorizontalPodAutoscaler

	// ContainerResources lists the literal requests and limits of each
	// Deployment container, in container order.
	ContainerResources []ResourceStrings
}

// Manifests returns the present manifests in output order:
// Deployment, Service, Ingress, ServiceAccount, HPA.
func (s *ManifestSet) Manifests() []Manifest {
	manifests := []Manifest{
		{Kind: KindDeployment, Object: s.Deployment},
		{Kind: KindService, Object: s.Service},
	}
	if s.Ingress != nil {
		manifests = append(manifests, Manifest{Kind: KindIngress, Object: s.Ingress})
	}
	if s.ServiceAccount != nil {
		manifests = append(manifests, Manifest{Kind: KindServiceAccount, Object: s.ServiceAccount})
	}
	return append(manifests, Manifest{Kind: KindHPA, Object: s.HPA})
}

// Options tunes a conversion
type Options struct {
	// Namespace is stamped on every manifest when set
	Namespace string
}

// AppName derives the application name from the task family
func AppName(td *v1.TaskDefinition) string {
	if td == nil || td.Family == "" {
		return DefaultAppName
	}
	return td.Family
}

// Convert validates both definitions and builds the full manifest set. Either
// every manifest is returned or an error is.
func Convert(td *v1.TaskDefinition, svc *v1.ServiceDefinition, opts Options) (*ManifestSet, error) {
	if err := td.Validate(); err != nil {
		return nil, err
	}
	if err := svc.Validate(); err != nil {
		return nil, err
	}

	appName := AppName(td)
	klog.V(1).InfoS("Converting task definition", "app", appName, "containers", len(td.ContainerDefinitions))

	set := &ManifestSet{
		AppName:    appName,
		Deployment: BuildDeployment(td, svc, appName),
		Service:    BuildService(td, appName),
	}
	if ingress, ok := BuildIngress(svc, appName, set.Service.Spec.Ports); ok {
		set.Ingress = ingress
	}
	if sa, ok := BuildServiceAccount(td, appName); ok {
		set.ServiceAccount = sa
	}
	set.HPA = BuildHPA(svc, appName)

	set.ContainerResources = make([]ResourceStrings, 0, len(td.ContainerDefinitions))
	for i := range td.ContainerDefinitions {
		set.ContainerResources = append(set.ContainerResources, BuildResourceStrings(&td.ContainerDefinitions[i]))
	}

	if opts.Namespace != "" {
		for _, m := range set.Manifests() {
			m.Object.SetNamespace(opts.Namespace)
		}
	}

	return set, nil
}
