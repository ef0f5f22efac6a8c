package app

import (
	"context"

	"github.com/vk/curriculum/internal/config"
	"github.com/vk/curriculum/internal/fsutil"
	"github.com/vk/curriculum/internal/hcl"
	"github.com/vk/curriculum/internal/jsondoc"
)

// Backuper writes a named snapshot of the catalog and returns where it went.
type Backuper interface {
	Backup(ctx context.Context, m *config.Model, name string) (string, error)
}

// Restorer lists backups and reads one back into a model.
type Restorer interface {
	Backups() ([]string, error)
	ReadBackup(ctx context.Context, name string) (*config.Model, error)
}

// SelectLoader picks the catalog format from the path: any .hcl file makes it
// an HCL catalog, otherwise it is a JSON data directory. The returned saver
// writes edits to dataDir, or back into a JSON catalog path when dataDir is
// empty; it is nil for an HCL catalog without a data directory.
func SelectLoader(path, dataDir string) (config.Loader, config.Saver, error) {
	files, err := fsutil.FindAll([]string{path}, hcl.Extension)
	if err != nil {
		return nil, nil, err
	}

	if len(files) > 0 {
		if dataDir == "" {
			return hcl.NewLoader(), nil, nil
		}
		return hcl.NewLoader(), jsondoc.NewLoader(dataDir), nil
	}

	if dataDir == "" {
		dataDir = path
	}
	l := jsondoc.NewLoader(dataDir)
	return l, l, nil
}
