// Package manifest renders generated resources as YAML documents and writes
// them out.
package manifest

import (
	"bytes"
	"fmt"

	"github.com/patrg444/Cygni/pkg/conversion"
	"github.com/patrg444/Cygni/pkg/kubernetes"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/yaml"
)

// DocumentSeparator separates documents in a multi-document YAML stream
const DocumentSeparator = "---\n"

// Rendered is one manifest serialized to YAML
type Rendered struct {
	Kind conversion.Kind
	Data []byte
}

// FileName returns the per-kind file name, <app>-<kind>.yaml
func FileName(appName string, kind conversion.Kind) string {
	return fmt.Sprintf("%s-%s.yaml", appName, kind)
}

// CombinedFileName returns the name of the file holding every manifest
func CombinedFileName(appName string) string {
	return fmt.Sprintf("%s-all.yaml", appName)
}

// ToDocument converts a typed object into a desired-state document: status
// and null fields such as creationTimestamp are dropped.
func ToDocument(obj runtime.Object) (map[string]interface{}, error) {
	doc, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %T: %w", obj, err)
	}
	delete(doc, "status")
	pruneNulls(doc)
	return doc, nil
}

func pruneNulls(value interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			if child == nil {
				delete(v, key)
				continue
			}
			pruneNulls(child)
		}
	case []interface{}:
		for _, child := range v {
			pruneNulls(child)
		}
	}
}

// Document converts one manifest of the set. Deployment containers keep their
// quantities as built, along with empty env values and zero probe timings.
func Document(set *conversion.ManifestSet, m conversion.Manifest) (map[string]interface{}, error) {
	doc, err := ToDocument(m.Object)
	if err != nil {
		return nil, err
	}
	if deployment, ok := m.Object.(*appsv1.Deployment); ok {
		if err := restoreContainers(doc, deployment, set.ContainerResources); err != nil {
			return nil, fmt.Errorf("failed to restore containers of %s: %w", m.Kind, err)
		}
	}
	return doc, nil
}

func restoreContainers(doc map[string]interface{}, deployment *appsv1.Deployment, resources []conversion.ResourceStrings) error {
	containers, found, err := unstructured.NestedSlice(doc, "spec", "template", "spec", "containers")
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("deployment has no containers")
	}

	typed := deployment.Spec.Template.Spec.Containers
	if len(containers) != len(typed) {
		return fmt.Errorf("rendered %d containers, built %d", len(containers), len(typed))
	}

	for i, raw := range containers {
		container, ok := raw.(map[string]interface{})
		if !ok {
			return fmt.Errorf("container %d is %T", i, raw)
		}
		if i < len(resources) {
			container["resources"] = map[string]interface{}{
				"limits":   quantities(resources[i].Limits),
				"requests": quantities(resources[i].Requests),
			}
		}
		restoreEnv(container, typed[i].Env)
		restoreProbe(container, typed[i].LivenessProbe)
	}

	return unstructured.SetNestedSlice(doc, containers, "spec", "template", "spec", "containers")
}

func quantities(values map[corev1.ResourceName]string) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for name, value := range values {
		out[string(name)] = value
	}
	return out
}

// restoreEnv puts back value: "" on plain variables
func restoreEnv(container map[string]interface{}, env []corev1.EnvVar) {
	entries, ok := container["env"].([]interface{})
	if !ok || len(entries) != len(env) {
		return
	}
	for i, e := range env {
		if e.ValueFrom != nil {
			continue
		}
		if entry, ok := entries[i].(map[string]interface{}); ok {
			entry["value"] = e.Value
		}
	}
}

func restoreProbe(container map[string]interface{}, probe *corev1.Probe) {
	if probe == nil {
		return
	}
	rendered, ok := container["livenessProbe"].(map[string]interface{})
	if !ok {
		return
	}
	rendered["initialDelaySeconds"] = int64(probe.InitialDelaySeconds)
	rendered["periodSeconds"] = int64(probe.PeriodSeconds)
	rendered["timeoutSeconds"] = int64(probe.TimeoutSeconds)
	rendered["failureThreshold"] = int64(probe.FailureThreshold)
}

// Marshal renders a typed object as a YAML document
func Marshal(obj runtime.Object) ([]byte, error) {
	doc, err := ToDocument(obj)
	if err != nil {
		return nil, err
	}
	return marshalDocument(doc)
}

func marshalDocument(doc map[string]interface{}) ([]byte, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", doc["kind"], err)
	}
	return data, nil
}

// Verify checks that a rendered document decodes back into the kind of obj
func Verify(obj runtime.Object, data []byte) error {
	want, err := kubernetes.GroupVersionKind(obj)
	if err != nil {
		return err
	}
	_, got, err := kubernetes.Decode(data)
	if err != nil {
		return err
	}
	if *got != want {
		return fmt.Errorf("decoded %s, expected %s", got, want)
	}
	return nil
}

// Render serializes every manifest of the set in output order
func Render(set *conversion.ManifestSet) ([]Rendered, error) {
	manifests := set.Manifests()
	rendered := make([]Rendered, 0, len(manifests))
	for _, m := range manifests {
		doc, err := Document(set, m)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", m.Kind, err)
		}
		data, err := marshalDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", m.Kind, err)
		}
		if err := Verify(m.Object, data); err != nil {
			return nil, fmt.Errorf("failed to verify %s: %w", m.Kind, err)
		}
		rendered = append(rendered, Rendered{Kind: m.Kind, Data: data})
	}
	return rendered, nil
}

// Combine joins rendered manifests into one multi-document stream
func Combine(rendered []Rendered) []byte {
	var buf bytes.Buffer
	for i, r := range rendered {
		if i > 0 {
			buf.WriteString(DocumentSeparator)
		}
		buf.Write(r.Data)
	}
	return buf.Bytes()
}
