// Package capture resolves the files HLAE produces for a render run.
package capture

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
)

// Resolver derives every filesystem location of a run from its configuration
// and from the directory layout HLAE creates. Lookups read the disk on each call.
type Resolver struct {
	cfg *config.Run
}

// NewResolver returns a Resolver for the given run.
func NewResolver(cfg *config.Run) *Resolver {
	return &Resolver{cfg: cfg}
}

// Root returns the capture root, <rawDestination>/<outputBaseName>.
func (r *Resolver) Root() string {
	return filepath.Join(r.cfg.RawDestination, r.cfg.BaseName())
}

// ScriptPath returns where the mirv_cmd script is written.
func (r *Resolver) ScriptPath() string {
	return filepath.Join(r.cfg.RawDestination, r.cfg.BaseName()+".xml")
}

// UserConfigPath returns the movie config the game executes at the first tick.
func (r *Resolver) UserConfigPath() string {
	return filepath.Join(r.cfg.Game.ConfigDir, types.UserConfigName+".cfg")
}

// JobPath returns where the VirtualDub job file is written.
func (r *Resolver) JobPath() string {
	return filepath.Join(r.cfg.RawDestination, r.cfg.BaseName()+".jobs")
}

// OutputFile returns the final video path. The extension follows the selected encoder.
func (r *Resolver) OutputFile() string {
	if r.cfg.OutputDestination == "" {
		return ""
	}
	return filepath.Join(r.cfg.OutputDestination, r.cfg.BaseName()+"."+r.cfg.Encoder().OutputExtension())
}

// LastTake returns the lexicographically last take folder below the capture root,
// or "" when the root or any take folder is missing.
func (r *Resolver) LastTake() string {
	entries, err := os.ReadDir(r.Root())
	if err != nil {
		return ""
	}

	var last string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), types.TakeFolderPrefix) {
			continue
		}
		if entry.Name() > last {
			last = entry.Name()
		}
	}
	if last == "" {
		return ""
	}
	return filepath.Join(r.Root(), last)
}

// FrameDir returns the stream directory holding TGA frames of a take.
func FrameDir(take string) string {
	if take == "" {
		return ""
	}
	return filepath.Join(take, types.StreamName)
}

// FirstFrame returns the path of frame zero inside a frame directory.
func FirstFrame(frameDir string) string {
	if frameDir == "" {
		return ""
	}
	return filepath.Join(frameDir, types.FirstFrameName)
}

// Frames returns the sorted frame image paths of a frame directory.
func Frames(frameDir string) []string {
	if frameDir == "" {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(frameDir, "*."+types.FrameExtension))
	if err != nil {
		return nil
	}
	slices.Sort(matches)
	return matches
}

// LastAudio returns the most recently created WAV file in a take, or "".
func LastAudio(take string) string {
	if take == "" {
		return ""
	}
	matches, err := filepath.Glob(filepath.Join(take, types.AudioFilePattern))
	if err != nil {
		return ""
	}

	var (
		newest     string
		newestTime time.Time
	)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		created := creationTime(info)
		if newest == "" || created.After(newestTime) {
			newest, newestTime = m, created
		}
	}
	return newest
}

// EscapePath doubles backslashes for embedding a path in script or job text.
// Paths handed to a process as arguments must not be escaped.
func EscapePath(path string) string {
	return strings.ReplaceAll(path, `\`, `\\`)
}

// fileExists reports whether path names an existing regular file.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// dirExists reports whether path names an existing directory.
func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
