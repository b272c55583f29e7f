package launcher

import (
	"context"

	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// Explorer highlights files in the platform file browser.
type Explorer struct{}

// Reveal opens the file browser at path without waiting for it to close.
func (Explorer) Reveal(_ context.Context, path string) error {
	cmd := revealCommand(path)
	if err := cmd.Start(); err != nil {
		return util.WrapError("open file browser", err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
