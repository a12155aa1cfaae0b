package conversion

import (
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
)

// ResourceStrings holds a container's requests and limits as emitted, e.g.
// "1000m" and "1024Mi". resource.Quantity would print those as "1" and "1Gi".
type ResourceStrings struct {
	Limits   map[corev1.ResourceName]string
	Requests map[corev1.ResourceName]string
}

// BuildResourceStrings derives requests and limits from the container's cpu
// and memory. A dimension absent on the container is absent on both sides.
func BuildResourceStrings(c *v1.ContainerDefinition) ResourceStrings {
	rs := ResourceStrings{
		Limits:   map[corev1.ResourceName]string{},
		Requests: map[corev1.ResourceName]string{},
	}

	if c.Memory != nil {
		rs.Limits[corev1.ResourceMemory] = MemoryToMi(*c.Memory)
		rs.Requests[corev1.ResourceMemory] = MemoryToMi(requestShare(*c.Memory))
	}

	if c.CPU != nil {
		rs.Limits[corev1.ResourceCPU] = CPUToMillicores(*c.CPU)
		rs.Requests[corev1.ResourceCPU] = CPUToMillicores(requestShare(*c.CPU))
	}

	return rs
}

// BuildResourceRequirements is the typed form of BuildResourceStrings
func BuildResourceRequirements(c *v1.ContainerDefinition) corev1.ResourceRequirements {
	rs := BuildResourceStrings(c)
	return corev1.ResourceRequirements{
		Limits:   toResourceList(rs.Limits),
		Requests: toResourceList(rs.Requests),
	}
}

func toResourceList(values map[corev1.ResourceName]string) corev1.ResourceList {
	list := corev1.ResourceList{}
	for name, value := range values {
		list[name] = resource.MustParse(value)
	}
	return list
}
