package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"k8s.io/klog/v2"
)

// DefaultOutputDir is where manifests are written when no directory is given
const DefaultOutputDir = "k8s-manifests"

// WrittenFile describes a file produced by the Writer
type WrittenFile struct {
	Path string
	Size int64
}

// Writer writes rendered manifests to a filesystem
type Writer struct {
	fs  afero.Fs
	dir string
}

// NewWriter creates a Writer rooted at dir
func NewWriter(fs afero.Fs, dir string) *Writer {
	if dir == "" {
		dir = DefaultOutputDir
	}
	return &Writer{
		fs:  fs,
		dir: dir,
	}
}

// Dir returns the output directory
func (w *Writer) Dir() string {
	return w.dir
}

// Write stores one file per manifest followed by the combined file. The
// combined file is always the last entry of the returned list. When a write
// fails, the files of this call are removed again and nothing is returned.
func (w *Writer) Write(appName string, rendered []Rendered) ([]WrittenFile, error) {
	if err := w.fs.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", w.dir, err)
	}

	names := make([]string, 0, len(rendered)+1)
	contents := make([][]byte, 0, len(rendered)+1)
	for _, r := range rendered {
		names = append(names, FileName(appName, r.Kind))
		contents = append(contents, r.Data)
	}
	names = append(names, CombinedFileName(appName))
	contents = append(contents, Combine(rendered))

	written := make([]WrittenFile, 0, len(names))
	for i, name := range names {
		file, err := w.writeFile(name, contents[i])
		if err != nil {
			w.rollback(append(written, WrittenFile{Path: filepath.Join(w.dir, name)}))
			return nil, err
		}
		written = append(written, file)
	}
	return written, nil
}

func (w *Writer) rollback(files []WrittenFile) {
	for _, f := range files {
		if err := w.fs.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			klog.ErrorS(err, "Failed to remove partially written manifest", "path", f.Path)
		}
	}
}

func (w *Writer) writeFile(name string, data []byte) (WrittenFile, error) {
	path := filepath.Join(w.dir, name)
	if err := afero.WriteFile(w.fs, path, data, 0o644); err != nil {
		return WrittenFile{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return WrittenFile{Path: path, Size: int64(len(data))}, nil
}

