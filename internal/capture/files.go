package capture

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// RemoveRoot deletes the capture root with every take below it.
// A missing root is not an error.
func (r *Resolver) RemoveRoot() error {
	root := r.Root()
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	var files int
	_ = filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			files++
		}
		return nil
	})

	if err := os.RemoveAll(root); err != nil {
		return util.WrapError("remove capture root", err)
	}
	slog.Info("removed raw files", "path", root, "deleted_files", files)
	return nil
}
