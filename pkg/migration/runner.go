// Package migration runs a Fargate to Kubernetes conversion end to end:
// load, convert, render and write.
package migration

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	v1 "github.com/patrg444/Cygni/pkg/apis/fargate/v1"
	"github.com/patrg444/Cygni/pkg/config"
	"github.com/patrg444/Cygni/pkg/conversion"
	"github.com/patrg444/Cygni/pkg/manifest"
	"github.com/patrg444/Cygni/pkg/stats"
	"github.com/spf13/afero"
	"k8s.io/klog/v2"
)

// Result is the outcome of one conversion
type Result struct {
	AppName   string
	Manifests *conversion.ManifestSet
	Rendered  []manifest.Rendered
	// Files is empty when the combined document was printed instead of written
	Files []manifest.WrittenFile
}

// Combined returns every rendered manifest as one multi-document stream
func (r *Result) Combined() []byte {
	return manifest.Combine(r.Rendered)
}

// Runner converts definitions read from a filesystem
type Runner struct {
	fs      afero.Fs
	out     io.Writer
	metrics *stats.MetricsRecorder
	config  *config.Config
}

// NewRunner creates a new Runner. A nil metrics recorder gets a private one.
func NewRunner(fs afero.Fs, out io.Writer, metrics *stats.MetricsRecorder, cfg *config.Config) *Runner {
	if metrics == nil {
		metrics = stats.NewMetricsRecorder()
	}
	return &Runner{
		fs:      fs,
		out:     out,
		metrics: metrics,
		config:  cfg,
	}
}

// Metrics returns the runner's metrics recorder
func (r *Runner) Metrics() *stats.MetricsRecorder {
	return r.metrics
}

// Run converts the task and service definitions found at the given paths and
// writes the manifests. Nothing is written unless every manifest rendered.
func (r *Runner) Run(taskDefPath, servicePath string) (*Result, error) {
	td, svc, err := r.load(taskDefPath, servicePath)
	if err != nil {
		return nil, err
	}

	result, err := r.ConvertDocuments(td, svc)
	if err != nil {
		return nil, err
	}

	if r.config.Stdout {
		if _, err := r.out.Write(result.Combined()); err != nil {
			return nil, fmt.Errorf("failed to print manifests: %w", err)
		}
		return result, nil
	}

	writer := manifest.NewWriter(r.fs, r.config.OutputDir)
	files, err := writer.Write(result.AppName, result.Rendered)
	if err != nil {
		return nil, err
	}
	result.Files = files

	combined := files[len(files)-1]
	for _, f := range files[:len(files)-1] {
		r.metrics.RecordFile(f.Size)
		fmt.Fprintf(r.out, "✅ Created %s (%s)\n", f.Path, humanize.Bytes(uint64(f.Size)))
	}
	r.metrics.RecordFile(combined.Size)
	fmt.Fprintf(r.out, "\n📦 All manifests combined in: %s\n", combined.Path)
	fmt.Fprintf(r.out, "\n🚀 Deploy with: kubectl apply -f %s\n", combined.Path)

	return result, nil
}

// ConvertDocuments converts already-decoded definitions and renders the
// manifests without touching the filesystem.
func (r *Runner) ConvertDocuments(td *v1.TaskDefinition, svc *v1.ServiceDefinition) (*Result, error) {
	start := time.Now()

	set, err := conversion.Convert(td, svc, conversion.Options{Namespace: r.config.Namespace})
	if err != nil {
		r.metrics.RecordConversion(false, time.Since(start))
		return nil, fmt.Errorf("failed to convert task definition: %w", err)
	}

	rendered, err := manifest.Render(set)
	if err != nil {
		r.metrics.RecordConversion(false, time.Since(start))
		return nil, err
	}

	r.metrics.RecordContainers(len(td.ContainerDefinitions))
	for _, m := range rendered {
		r.metrics.RecordManifest(string(m.Kind))
	}
	r.metrics.RecordConversion(true, time.Since(start))
	klog.V(1).InfoS("Rendered manifests", "app", set.AppName, "count", len(rendered))

	return &Result{
		AppName:   set.AppName,
		Manifests: set,
		Rendered:  rendered,
	}, nil
}

func (r *Runner) load(taskDefPath, servicePath string) (*v1.TaskDefinition, *v1.ServiceDefinition, error) {
	data, err := afero.ReadFile(r.fs, taskDefPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load task definition %s: %w", taskDefPath, err)
	}
	td, err := v1.LoadTaskDefinition(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load task definition %s: %w", taskDefPath, err)
	}

	data, err = afero.ReadFile(r.fs, servicePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load service definition %s: %w", servicePath, err)
	}
	svc, err := v1.LoadServiceDefinition(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load service definition %s: %w", servicePath, err)
	}

	return td, svc, nil
}
