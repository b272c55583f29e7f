//go:build !windows

package capture

import (
	"os"
	"time"
)

// creationTime falls back to the modification time where the platform stat
// does not expose a birth time.
func creationTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
