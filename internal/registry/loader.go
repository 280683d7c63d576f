package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paintd/internal/common/fsutil"
	"paintd/pkg/types"
)

// LoadDir scans a directory for diffusion checkpoints (*.safetensors, *.ckpt)
// and builds a catalog from filenames. ID is the filename without extension;
// Path is the absolute file path.
func LoadDir(dir string) ([]types.Checkpoint, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Checkpoint
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		format, ok := checkpointFormat(name)
		if !ok {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		models = append(models, types.Checkpoint{
			ID:     id,
			Name:   id,
			Path:   filepath.Join(abs, name),
			Format: format,
		})
	}
	return models, nil
}

// checkpointFormat reports the checkpoint format for a filename, if any.
func checkpointFormat(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".safetensors":
		return "safetensors", true
	case ".ckpt":
		return "ckpt", true
	}
	return "", false
}
