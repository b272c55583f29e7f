//go:build !windows

package capture

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"

	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// WriteFile atomically replaces path with data, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return util.WrapError("create directory", err)
	}

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return util.WrapError("create pending file", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			slog.Debug("cleanup pending file", "path", path, "error", err)
		}
	}()

	if _, err := pending.Write(data); err != nil {
		return util.WrapError("write pending file", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return util.WrapError("replace file", err)
	}
	return nil
}

