// Package kubernetes resolves and decodes resources against the client-go scheme.
package kubernetes

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/scheme"
)

// Decode parses a YAML or JSON manifest into its typed object. It fails when
// the apiVersion/kind pair is not a built-in Kubernetes type.
func Decode(data []byte) (runtime.Object, *schema.GroupVersionKind, error) {
	obj, gvk, err := scheme.Codecs.UniversalDeserializer().Decode(data, nil, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return obj, gvk, nil
}

// GroupVersionKind resolves the GVK of a typed object from the scheme
func GroupVersionKind(obj runtime.Object) (schema.GroupVersionKind, error) {
	gvks, _, err := scheme.Scheme.ObjectKinds(obj)
	if err != nil {
		return schema.GroupVersionKind{}, fmt.Errorf("failed to resolve kind: %w", err)
	}
	return gvks[0], nil
}
