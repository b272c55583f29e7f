//go:build windows

package capture

import (
	"os"
	"path/filepath"

	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// WriteFile replaces path with data, creating parent directories.
// renameio does not support Windows, so this writes a sibling temp file and renames it.
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return util.WrapError("create directory", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return util.WrapError("write pending file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return util.WrapError("replace file", err)
	}
	return nil
}
