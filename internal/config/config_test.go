package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

const jsonConfig = `{
  "start_tick": 1000,
  "end_tick": 5000,
  "output_destination": "C:\\videos",
  "output_filename": "ace.mp4",
  "raw_destination": "C:\\raw",
  "highlight_steamids": [76561198000000001, 76561198000000002],
  "blocked_steamids": [76561198000000003],
  "generate_video": true,
  "ffmpeg": {"exe_path": "ffmpeg.exe", "extra_parameters": "-movflags +faststart"}
}`

const yamlConfig = `
start_tick: 1000
end_tick: 5000
output_destination: 'C:\videos'
output_filename: ace.mp4
raw_destination: 'C:\raw'
highlight_steamids: [76561198000000001, 76561198000000002]
blocked_steamids: [76561198000000003]
generate_video: true
ffmpeg:
  exe_path: ffmpeg.exe
  extra_parameters: -movflags +faststart
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_JSONAndYAMLAgree(t *testing.T) {
	fromJSON, err := Load(writeFile(t, "run.json", jsonConfig))
	require.NoError(t, err)
	fromYAML, err := Load(writeFile(t, "run.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, []uint64{76561198000000001, 76561198000000002}, fromJSON.HighlightSteamIDs)
	assert.Equal(t, `C:\videos`, fromJSON.OutputDestination)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "run.json", jsonConfig))
	require.NoError(t, err)

	assert.Equal(t, DefaultFrameRate, cfg.FrameRate)
	assert.Equal(t, DefaultDeathNoticesDuration, cfg.DeathNoticesDuration)
	assert.Equal(t, DefaultVideoCodec, cfg.FFmpeg.VideoCodec)
	assert.Equal(t, DefaultVideoQuality, cfg.FFmpeg.VideoQuality)
	assert.Equal(t, DefaultAudioCodec, cfg.FFmpeg.AudioCodec)
	assert.Equal(t, DefaultAudioBitrate, cfg.FFmpeg.AudioBitrate)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(t, err, "failed to read config")

	_, err = Load(writeFile(t, "bad.json", "{"))
	require.ErrorContains(t, err, "failed to parse config")
}

func validRun() *Run {
	cfg := &Run{
		StartTick:         100,
		EndTick:           200,
		OutputDestination: "out",
		OutputFilename:    "clip.mp4",
		RawDestination:    "raw",
		GenerateVideo:     true,
		FFmpeg:            FFmpegConfig{ExePath: "ffmpeg"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Run)
		field  string
	}{
		{"valid", func(*Run) {}, ""},
		{"start equals end", func(c *Run) { c.EndTick = c.StartTick }, "start_tick"},
		{"start after end", func(c *Run) { c.StartTick = 300 }, "start_tick"},
		{"negative start", func(c *Run) { c.StartTick = -1 }, "start_tick"},
		{"missing filename", func(c *Run) { c.OutputFilename = "" }, "output_filename"},
		{"missing ffmpeg", func(c *Run) { c.FFmpeg.ExePath = "" }, "ffmpeg.exe_path"},
		{"missing virtualdub", func(c *Run) { c.UseVirtualDub = true }, "virtualdub.exe_path"},
		{"raw files need hlae", func(c *Run) { c.GenerateRawFiles = true }, "game.hlae_exe_path"},
		{"no video skips encoder check", func(c *Run) { c.GenerateVideo = false; c.FFmpeg.ExePath = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validRun()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *util.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRun_Helpers(t *testing.T) {
	cfg := validRun()
	assert.Equal(t, "clip", cfg.BaseName())
	assert.Equal(t, types.EncoderFFmpeg, cfg.Encoder())

	cfg.UseVirtualDub = true
	assert.Equal(t, types.EncoderVirtualDub, cfg.Encoder())

	cfg.BlockedSteamIDs = []uint64{1}
	cp := cfg.Clone()
	cp.BlockedSteamIDs[0] = 2
	assert.Equal(t, uint64(1), cfg.BlockedSteamIDs[0])
}

func TestApplyEnv(t *testing.T) {
	cfg := validRun()
	t.Setenv(EnvFFmpeg, `D:\tools\ffmpeg.exe`)
	t.Setenv(EnvHLAE, "")

	cfg.Game.HLAEExePath = "hlae.exe"
	cfg.ApplyEnv()

	assert.Equal(t, `D:\tools\ffmpeg.exe`, cfg.FFmpeg.ExePath)
	assert.Equal(t, "hlae.exe", cfg.Game.HLAEExePath, "empty variables do not override")
}

func TestLoadEnv(t *testing.T) {
	require.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := writeFile(t, ".env", EnvVirtualDub+"=C:/vdub/VirtualDub.exe\n")
	t.Setenv(EnvVirtualDub, "")
	require.NoError(t, os.Unsetenv(EnvVirtualDub))
	require.NoError(t, LoadEnv(path))

	cfg := validRun()
	cfg.ApplyEnv()
	assert.Equal(t, "C:/vdub/VirtualDub.exe", cfg.VirtualDub.ExePath)
}

func TestEmailConfig_SinglePredicate(t *testing.T) {
	relay := EmailConfig{Host: "smtp.local", Recipients: "ops@example.org"}
	assert.False(t, relay.IsConfigured())
	assert.True(t, relay.IsPartial())
	assert.Equal(t, []string{"username"}, relay.Missing())

	cfg := validRun()
	cfg.Notifications.Email = relay
	assert.False(t, cfg.HasEmail())

	cfg.Notifications.Email.Username = "recorder@example.org"
	assert.True(t, cfg.HasEmail())
	assert.False(t, cfg.Notifications.Email.IsPartial())
	assert.Empty(t, cfg.Notifications.Email.Missing())

	assert.False(t, EmailConfig{Port: 587}.IsPartial())
}
