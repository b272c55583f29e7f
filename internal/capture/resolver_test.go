package capture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-demorecorder/internal/config"
)

func newRun(t *testing.T) *config.Run {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Run{
		StartTick:         1000,
		EndTick:           2000,
		OutputDestination: filepath.Join(dir, "videos"),
		OutputFilename:    "clutch.mp4",
		RawDestination:    filepath.Join(dir, "raw"),
		Game:              config.GameConfig{ConfigDir: filepath.Join(dir, "cfg")},
	}
	cfg.ApplyDefaults()
	return cfg
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestResolver_Paths(t *testing.T) {
	cfg := newRun(t)
	r := NewResolver(cfg)

	assert.Equal(t, filepath.Join(cfg.RawDestination, "clutch"), r.Root())
	assert.Equal(t, filepath.Join(cfg.RawDestination, "clutch.xml"), r.ScriptPath())
	assert.Equal(t, filepath.Join(cfg.Game.ConfigDir, "movie.cfg"), r.UserConfigPath())
	assert.Equal(t, filepath.Join(cfg.OutputDestination, "clutch.mp4"), r.OutputFile())

	cfg.UseVirtualDub = true
	assert.Equal(t, filepath.Join(cfg.OutputDestination, "clutch.avi"), r.OutputFile())
}

func TestResolver_LastTake(t *testing.T) {
	cfg := newRun(t)
	r := NewResolver(cfg)

	assert.Empty(t, r.LastTake(), "missing root")

	require.NoError(t, os.MkdirAll(filepath.Join(r.Root(), "other"), 0o755))
	assert.Empty(t, r.LastTake(), "no take folder")

	for _, name := range []string{"take0000", "take0002", "take0001"} {
		require.NoError(t, os.MkdirAll(filepath.Join(r.Root(), name), 0o755))
	}
	touch(t, filepath.Join(r.Root(), "take9999"))
	assert.Equal(t, filepath.Join(r.Root(), "take0002"), r.LastTake(), "files are ignored")
}

func TestLastAudio_PicksNewest(t *testing.T) {
	take := t.TempDir()
	assert.Empty(t, LastAudio(take))

	older := filepath.Join(take, "audio.wav")
	newer := filepath.Join(take, "audio_1.wav")
	touch(t, older)
	touch(t, newer)
	touch(t, filepath.Join(take, "notes.txt"))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	assert.Equal(t, newer, LastAudio(take))
	assert.Empty(t, LastAudio(""))
}

func TestSnapshot(t *testing.T) {
	cfg := newRun(t)
	r := NewResolver(cfg)

	empty := r.Snapshot()
	assert.False(t, empty.CaptureStarted)
	assert.False(t, empty.FrameDirExists)
	assert.Zero(t, empty.FrameCount())

	take := filepath.Join(r.Root(), "take0000")
	frames := filepath.Join(take, "defaultNormal")
	touch(t, filepath.Join(frames, "00001.tga"))
	touch(t, filepath.Join(frames, "00000.tga"))
	touch(t, filepath.Join(take, "audio.wav"))

	snap := r.Snapshot()
	assert.Equal(t, take, snap.TakeDir)
	assert.Equal(t, frames, snap.FrameDir)
	assert.True(t, snap.FrameDirExists)
	assert.True(t, snap.CaptureStarted)
	assert.Equal(t, filepath.Join(frames, "00000.tga"), snap.FirstFrame)
	assert.Equal(t, []string{filepath.Join(frames, "00000.tga"), filepath.Join(frames, "00001.tga")}, snap.Frames)
	assert.True(t, snap.AudioExists())
	assert.Equal(t, r.OutputFile(), snap.OutputFile)
}

func TestSnapshot_FramesWithoutFirstFrame(t *testing.T) {
	cfg := newRun(t)
	r := NewResolver(cfg)
	touch(t, filepath.Join(r.Root(), "take0000", "defaultNormal", "00007.tga"))

	snap := r.Snapshot()
	assert.False(t, snap.CaptureStarted)
	assert.Equal(t, 1, snap.FrameCount())
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, `C:\\raw\\take0000`, EscapePath(`C:\raw\take0000`))
	assert.Equal(t, "/tmp/raw", EscapePath("/tmp/raw"))
}

func TestWriteFileAndRemoveRoot(t *testing.T) {
	cfg := newRun(t)
	r := NewResolver(cfg)

	require.NoError(t, WriteFile(r.UserConfigPath(), []byte("cl_draw_only_deathnotices 1")))
	data, err := os.ReadFile(r.UserConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "cl_draw_only_deathnotices 1", string(data))

	require.NoError(t, r.RemoveRoot(), "missing root is fine")

	touch(t, filepath.Join(r.Root(), "take0000", "defaultNormal", "00000.tga"))
	require.NoError(t, r.RemoveRoot())
	_, err = os.Stat(r.Root())
	assert.True(t, os.IsNotExist(err))
}
