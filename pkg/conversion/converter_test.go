package conversion_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	"github.com/patrg444/Cygni/pkg/conversion"
	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
)

func webContainer() v1.ContainerDefinition {
	return v1.ContainerDefinition{
		Name:         "web",
		Image:        "nginx:1.27",
		CPU:          ptr.To[int64](512),
		Memory:       ptr.To[int64](1024),
		PortMappings: []v1.PortMapping{{ContainerPort: ptr.To[int32](8080)}},
	}
}

func kinds(set *conversion.ManifestSet) []conversion.Kind {
	var out []conversion.Kind
	for _, m := range set.Manifests() {
		out = append(out, m.Kind)
	}
	return out
}

var _ = Describe("Convert", func() {
	var (
		td  *v1.TaskDefinition
		svc *v1.ServiceDefinition
	)

	BeforeEach(func() {
		td = &v1.TaskDefinition{
			Family:               "api",
			ContainerDefinitions: []v1.ContainerDefinition{webContainer()},
		}
		svc = &v1.ServiceDefinition{ServiceName: "api"}
	})

	Context("without load balancer or task role", func() {
		It("should emit the Deployment, Service and HPA", func() {
			set, err := conversion.Convert(td, svc, conversion.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Ingress).To(BeNil())
			Expect(set.ServiceAccount).To(BeNil())
			Expect(kinds(set)).To(Equal([]conversion.Kind{
				conversion.KindDeployment,
				conversion.KindService,
				conversion.KindHPA,
			}))
		})
	})

	Context("with a task role and no load balancer", func() {
		It("should emit four manifests without Ingress", func() {
			td.TaskRoleArn = ptr.To("arn:aws:iam::123456789012:role/api")

			set, err := conversion.Convert(td, svc, conversion.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Ingress).To(BeNil())
			Expect(kinds(set)).To(Equal([]conversion.Kind{
				conversion.KindDeployment,
				conversion.KindService,
				conversion.KindServiceAccount,
				conversion.KindHPA,
			}))
		})
	})

	Context("with load balancer and task role", func() {
		BeforeEach(func() {
			td.TaskRoleArn = ptr.To("arn:aws:iam::123456789012:role/api")
			svc.LoadBalancers = []v1.LoadBalancer{{TargetGroupArn: "arn:tg"}}
		})

		It("should emit every manifest in order", func() {
			set, err := conversion.Convert(td, svc, conversion.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(kinds(set)).To(Equal([]conversion.Kind{
				conversion.KindDeployment,
				conversion.KindService,
				conversion.KindIngress,
				conversion.KindServiceAccount,
				conversion.KindHPA,
			}))
		})

		It("should use the same application name everywhere", func() {
			set, err := conversion.Convert(td, svc, conversion.Options{})
			Expect(err).NotTo(HaveOccurred())

			for _, m := range set.Manifests() {
				Expect(m.Object.GetName()).To(Equal("api"), string(m.Kind))
				Expect(m.Object.GetLabels()).To(HaveKeyWithValue(conversion.LabelApp, "api"), string(m.Kind))
			}
			Expect(set.Deployment.Spec.Selector.MatchLabels).To(Equal(map[string]string{"app": "api"}))
			Expect(set.Deployment.Spec.Template.Labels).To(Equal(map[string]string{"app": "api"}))
			Expect(set.Deployment.Spec.Template.Spec.ServiceAccountName).To(Equal("api"))
			Expect(set.Service.Spec.Selector).To(Equal(map[string]string{"app": "api"}))
			Expect(set.Ingress.Spec.Rules[0].HTTP.Paths[0].Backend.Service.Name).To(Equal("api"))
			Expect(set.HPA.Spec.ScaleTargetRef.Name).To(Equal("api"))
		})
	})

	Describe("conditional manifests", func() {
		It("should emit only the Ingress for a load balancer", func() {
			svc.LoadBalancers = []v1.LoadBalancer{{TargetGroupArn: "arn:tg"}}

			set, err := conversion.Convert(td, svc, conversion.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Ingress).NotTo(BeNil())
			Expect(set.ServiceAccount).To(BeNil())
			Expect(set.Manifests()).To(HaveLen(4))
		})

		It("should emit only the ServiceAccount for a task role", func() {
			td.TaskRoleArn = ptr.To("arn:aws:iam::123456789012:role/api")

			set, err := conversion.Convert(td, svc, conversion.Options{})
			Expect(err).NotTo(HaveOccurred())
			Expect(set.Ingress).To(BeNil())
			Expect(set.ServiceAccount).NotTo(BeNil())
			Expect(set.ServiceAccount.Annotations).To(HaveKeyWithValue(conversion.AnnotationRoleArn, *td.TaskRoleArn))
			Expect(set.Deployment.Spec.Template.Spec.ServiceAccountName).To(Equal(set.ServiceAccount.Name))
			Expect(set.Manifests()).To(HaveLen(4))
		})
	})

	It("should emit the ServiceAccount for an empty taskRoleArn", func() {
		td.TaskRoleArn = ptr.To("")

		set, err := conversion.Convert(td, svc, conversion.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(set.ServiceAccount).NotTo(BeNil())
		Expect(set.ServiceAccount.Annotations).To(HaveKeyWithValue(conversion.AnnotationRoleArn, ""))
		Expect(set.Deployment.Spec.Template.Spec.ServiceAccountName).To(Equal("api"))
	})

	It("should fall back to the default application name", func() {
		td.Family = ""

		set, err := conversion.Convert(td, svc, conversion.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(set.AppName).To(Equal(conversion.DefaultAppName))
		Expect(set.Deployment.Name).To(Equal("cygni-app"))
	})

	It("should stamp the namespace on every manifest", func() {
		td.TaskRoleArn = ptr.To("arn:role")
		svc.LoadBalancers = []v1.LoadBalancer{{}}

		set, err := conversion.Convert(td, svc, conversion.Options{Namespace: "apps"})
		Expect(err).NotTo(HaveOccurred())
		for _, m := range set.Manifests() {
			Expect(m.Object.GetNamespace()).To(Equal("apps"), string(m.Kind))
		}
	})

	It("should leave the namespace unset by default", func() {
		set, err := conversion.Convert(td, svc, conversion.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(set.Deployment.Namespace).To(BeEmpty())
	})

	It("should reject a container without image", func() {
		td.ContainerDefinitions[0].Image = ""

		set, err := conversion.Convert(td, svc, conversion.Options{})
		Expect(err).To(MatchError(v1.ErrMissingField))
		Expect(err.Error()).To(ContainSubstring("containerDefinitions[0].image"))
		Expect(set).To(BeNil())
	})

	It("should reject a missing service definition", func() {
		_, err := conversion.Convert(td, nil, conversion.Options{})
		Expect(err).To(MatchError(v1.ErrMissingField))
	})
})

var _ = Describe("BuildDeployment", func() {
	It("should carry the fixed workload settings", func() {
		td := &v1.TaskDefinition{ContainerDefinitions: []v1.ContainerDefinition{webContainer()}}

		d := conversion.BuildDeployment(td, &v1.ServiceDefinition{}, "api")

		Expect(d.APIVersion).To(Equal("apps/v1"))
		Expect(d.Kind).To(Equal("Deployment"))
		Expect(d.Labels).To(Equal(map[string]string{
			"app":           "api",
			"managed-by":    "cygni",
			"migrated-from": "fargate",
		}))
		Expect(*d.Spec.Replicas).To(Equal(conversion.DefaultReplicas))
		Expect(d.Spec.Strategy.Type).To(Equal(appsv1.RollingUpdateDeploymentStrategyType))
		Expect(*d.Spec.Strategy.RollingUpdate.MaxSurge).To(Equal(intstr.FromInt32(1)))
		Expect(*d.Spec.Strategy.RollingUpdate.MaxUnavailable).To(Equal(intstr.FromInt32(0)))
		Expect(d.Spec.Template.Spec.RestartPolicy).To(Equal(corev1.RestartPolicyAlways))
		Expect(d.Spec.Template.Spec.ServiceAccountName).To(BeEmpty())
	})

	It("should keep the container order and use the desired count", func() {
		sidecar := v1.ContainerDefinition{Name: "sidecar", Image: "envoy"}
		td := &v1.TaskDefinition{ContainerDefinitions: []v1.ContainerDefinition{webContainer(), sidecar}}

		d := conversion.BuildDeployment(td, &v1.ServiceDefinition{DesiredCount: ptr.To[int32](4)}, "api")

		Expect(d.Spec.Template.Spec.Containers).To(HaveLen(2))
		Expect(d.Spec.Template.Spec.Containers[0].Name).To(Equal("web"))
		Expect(d.Spec.Template.Spec.Containers[1].Name).To(Equal("sidecar"))
		Expect(*d.Spec.Replicas).To(Equal(int32(4)))
	})
})

var _ = Describe("BuildContainer", func() {
	It("should convert ports, resources and pull policy", func() {
		c := webContainer()
		c.PortMappings = append(c.PortMappings, v1.PortMapping{ContainerPort: ptr.To[int32](53), Protocol: "udp"})

		container := conversion.BuildContainer(&c, "api")

		Expect(container.Name).To(Equal("web"))
		Expect(container.Image).To(Equal("nginx:1.27"))
		Expect(container.ImagePullPolicy).To(Equal(corev1.PullIfNotPresent))
		Expect(container.Ports).To(Equal([]corev1.ContainerPort{
			{Name: "port-8080", ContainerPort: 8080, Protocol: corev1.ProtocolTCP},
			{Name: "port-53", ContainerPort: 53, Protocol: corev1.ProtocolUDP},
		}))
		Expect(container.Resources.Limits.Cpu().String()).To(Equal("500m"))
		Expect(container.Resources.Requests.Memory().Value()).To(Equal(int64(819 * 1024 * 1024)))
		Expect(container.Env).To(BeNil())
		Expect(container.LivenessProbe).To(BeNil())
		Expect(container.Command).To(BeNil())
	})

	It("should omit ports when nothing is mapped", func() {
		c := v1.ContainerDefinition{Name: "worker", Image: "busybox"}

		container := conversion.BuildContainer(&c, "api")

		Expect(container.Ports).To(BeNil())
		Expect(container.Resources.Limits).To(BeEmpty())
		Expect(container.Resources.Requests).To(BeEmpty())
	})

	It("should list environment before secrets", func() {
		c := webContainer()
		c.Secrets = []v1.Secret{{Name: "DB_PASSWORD", ValueFrom: "arn:secret"}}
		c.Environment = []v1.KeyValuePair{
			{Name: "MODE", Value: ptr.To("prod")},
			{Name: "LEVEL", Value: ptr.To("debug")},
		}

		env := conversion.BuildContainer(&c, "api").Env

		Expect(env).To(HaveLen(3))
		Expect(env[0]).To(Equal(corev1.EnvVar{Name: "MODE", Value: "prod"}))
		Expect(env[1]).To(Equal(corev1.EnvVar{Name: "LEVEL", Value: "debug"}))
		Expect(env[2].Name).To(Equal("DB_PASSWORD"))
		Expect(env[2].ValueFrom.SecretKeyRef.Name).To(Equal("api-secrets"))
		Expect(env[2].ValueFrom.SecretKeyRef.Key).To(Equal("DB_PASSWORD"))
	})

	It("should let entryPoint win over command", func() {
		c := webContainer()
		c.Command = []string{"serve"}
		c.EntryPoint = []string{"/bin/app"}

		Expect(conversion.BuildContainer(&c, "api").Command).To(Equal([]string{"/bin/app"}))

		c.EntryPoint = nil
		Expect(conversion.BuildContainer(&c, "api").Command).To(Equal([]string{"serve"}))
	})

	Describe("liveness probe", func() {
		It("should apply defaults to an empty health check", func() {
			c := v1.ContainerDefinition{Name: "worker", Image: "busybox", HealthCheck: &v1.HealthCheck{}}

			probe := conversion.BuildContainer(&c, "api").LivenessProbe

			Expect(probe).NotTo(BeNil())
			Expect(probe.HTTPGet.Path).To(Equal("/health"))
			Expect(probe.HTTPGet.Port).To(Equal(intstr.FromInt32(80)))
			Expect(probe.InitialDelaySeconds).To(Equal(int32(30)))
			Expect(probe.PeriodSeconds).To(Equal(int32(30)))
			Expect(probe.TimeoutSeconds).To(Equal(int32(5)))
			Expect(probe.FailureThreshold).To(Equal(int32(3)))
		})

		It("should take path, port and timings from the health check", func() {
			c := webContainer()
			c.HealthCheck = &v1.HealthCheck{
				Command:     []string{"/ready", "ignored"},
				Interval:    ptr.To[int32](10),
				Timeout:     ptr.To[int32](2),
				Retries:     ptr.To[int32](6),
				StartPeriod: ptr.To[int32](0),
			}

			probe := conversion.BuildContainer(&c, "api").LivenessProbe

			Expect(probe.HTTPGet.Path).To(Equal("/ready"))
			Expect(probe.HTTPGet.Port).To(Equal(intstr.FromInt32(8080)))
			Expect(probe.InitialDelaySeconds).To(Equal(int32(0)))
			Expect(probe.PeriodSeconds).To(Equal(int32(10)))
			Expect(probe.TimeoutSeconds).To(Equal(int32(2)))
			Expect(probe.FailureThreshold).To(Equal(int32(6)))
		})
	})
})

var _ = Describe("BuildService", func() {
	It("should flatten the port mappings of every container", func() {
		sidecar := v1.ContainerDefinition{
			Name:         "metrics",
			Image:        "exporter",
			PortMappings: []v1.PortMapping{{ContainerPort: ptr.To[int32](9100), Protocol: "udp"}},
		}
		td := &v1.TaskDefinition{ContainerDefinitions: []v1.ContainerDefinition{webContainer(), sidecar}}

		s := conversion.BuildService(td, "api")

		Expect(s.Spec.Type).To(Equal(corev1.ServiceTypeClusterIP))
		Expect(s.Labels).To(Equal(map[string]string{"app": "api", "managed-by": "cygni"}))
		Expect(s.Spec.Ports).To(Equal([]corev1.ServicePort{
			{Name: "port-8080", Port: 8080, TargetPort: intstr.FromInt32(8080), Protocol: corev1.ProtocolTCP},
			{Name: "port-9100", Port: 9100, TargetPort: intstr.FromInt32(9100), Protocol: corev1.ProtocolUDP},
		}))
	})

	It("should synthesize an http port when nothing is mapped", func() {
		td := &v1.TaskDefinition{ContainerDefinitions: []v1.ContainerDefinition{{Name: "worker", Image: "busybox"}}}

		s := conversion.BuildService(td, "api")

		Expect(s.Spec.Ports).To(Equal([]corev1.ServicePort{
			{Name: "http", Port: 80, TargetPort: intstr.FromInt32(80), Protocol: corev1.ProtocolTCP},
		}))
	})
})

var _ = Describe("BuildIngress", func() {
	ports := []corev1.ServicePort{{Name: "port-8080", Port: 8080}}

	It("should not build an Ingress without load balancer", func() {
		ingress, ok := conversion.BuildIngress(&v1.ServiceDefinition{}, "api", ports)
		Expect(ok).To(BeFalse())
		Expect(ingress).To(BeNil())
	})

	It("should route everything to the first service port", func() {
		svc := &v1.ServiceDefinition{LoadBalancers: []v1.LoadBalancer{{TargetGroupArn: "arn:tg"}}}

		ingress, ok := conversion.BuildIngress(svc, "api", ports)

		Expect(ok).To(BeTrue())
		Expect(ingress.APIVersion).To(Equal("networking.k8s.io/v1"))
		Expect(ingress.Annotations).To(Equal(map[string]string{
			conversion.AnnotationIngressClass:    "alb",
			conversion.AnnotationScheme:          "internet-facing",
			conversion.AnnotationTargetType:      "ip",
			conversion.AnnotationHealthcheckPath: "/health",
		}))
		path := ingress.Spec.Rules[0].HTTP.Paths[0]
		Expect(path.Path).To(Equal("/"))
		Expect(*path.PathType).To(Equal(networkingv1.PathTypePrefix))
		Expect(path.Backend.Service.Port.Number).To(Equal(int32(8080)))
	})

	It("should enable TLS with a certificate", func() {
		svc := &v1.ServiceDefinition{LoadBalancers: []v1.LoadBalancer{{CertificateArn: ptr.To("arn:cert")}}}

		ingress, ok := conversion.BuildIngress(svc, "api", nil)

		Expect(ok).To(BeTrue())
		Expect(ingress.Annotations).To(HaveKeyWithValue(conversion.AnnotationCertificateArn, "arn:cert"))
		Expect(ingress.Annotations).To(HaveKeyWithValue(conversion.AnnotationSSLRedirect, "443"))
		Expect(ingress.Spec.Rules[0].HTTP.Paths[0].Backend.Service.Port.Number).To(Equal(int32(80)))
	})
})

var _ = Describe("BuildHPA", func() {
	It("should scale between the desired count and five times it", func() {
		hpa := conversion.BuildHPA(&v1.ServiceDefinition{DesiredCount: ptr.To[int32](3)}, "api")

		Expect(hpa.APIVersion).To(Equal("autoscaling/v2"))
		Expect(*hpa.Spec.MinReplicas).To(Equal(int32(3)))
		Expect(hpa.Spec.MaxReplicas).To(Equal(int32(15)))
		Expect(hpa.Spec.ScaleTargetRef).To(Equal(autoscalingv2.CrossVersionObjectReference{
			APIVersion: "apps/v1",
			Kind:       "Deployment",
			Name:       "api",
		}))
		Expect(hpa.Spec.Metrics).To(HaveLen(2))
		Expect(hpa.Spec.Metrics[0].Resource.Name).To(Equal(corev1.ResourceCPU))
		Expect(*hpa.Spec.Metrics[0].Resource.Target.AverageUtilization).To(Equal(int32(70)))
		Expect(hpa.Spec.Metrics[1].Resource.Name).To(Equal(corev1.ResourceMemory))
		Expect(*hpa.Spec.Metrics[1].Resource.Target.AverageUtilization).To(Equal(int32(80)))
	})

	It("should default to two replicas", func() {
		hpa := conversion.BuildHPA(&v1.ServiceDefinition{}, "api")
		Expect(*hpa.Spec.MinReplicas).To(Equal(int32(2)))
		Expect(hpa.Spec.MaxReplicas).To(Equal(int32(10)))
	})

	DescribeTable("MaxReplicas",
		func(desired, want int32) {
			Expect(conversion.MaxReplicas(desired)).To(Equal(want))
		},
		Entry("one", int32(1), int32(5)),
		Entry("ten", int32(10), int32(50)),
		Entry("capped", int32(11), int32(50)),
		Entry("zero", int32(0), int32(0)),
	)
})
