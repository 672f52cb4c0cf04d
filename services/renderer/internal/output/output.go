package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/02loveslollipop/plantstation-viewer/internal/chart"
	"github.com/02loveslollipop/plantstation-viewer/internal/render"
)

// Writer stores built pages as <page>.json plus one <page>-<axis>.svg (or
// .png) per drawable axis.
type Writer struct {
	Dir    string
	Width  int
	Height int
	Format render.Format
	DryRun bool
	Log    logrus.FieldLogger
}

// WritePage writes p and returns the paths written (or, in dry-run mode, the
// paths that would have been written).
func (w Writer) WritePage(p chart.Payload) ([]string, error) {
	log := w.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("page", p.Page)

	doc, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode page %s: %w", p.Page, err)
	}
	files := map[string][]byte{p.Page + ".json": doc}
	names := []string{p.Page + ".json"}

	format := w.Format
	if format == "" {
		format = render.FormatSVG
	}
	for _, a := range p.Axes {
		var buf bytes.Buffer
		err := render.Render(&buf, p, render.Options{Axis: a.ID, Width: w.Width, Height: w.Height, Format: format})
		if errors.Is(err, render.ErrNothingToRender) {
			log.WithField("axis", a.ID).Debug("axis has no data, skipping chart")
			continue
		}
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("%s-%s.%s", p.Page, a.ID, format)
		files[name] = buf.Bytes()
		names = append(names, name)
	}

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(w.Dir, name)
		paths = append(paths, path)
		if w.DryRun {
			log.Infof("dry-run: would write %s (%d bytes)", path, len(files[name]))
			continue
		}
		if err := writeFile(path, files[name]); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// writeFile replaces path atomically so readers never see a partial chart.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
