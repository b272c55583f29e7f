// Package config provides the render run configuration.
package config

import (
	"cmp"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// Configuration defaults.
const (
	DefaultFrameRate            = 60
	DefaultDeathNoticesDuration = 5
	DefaultVideoCodec           = "libx264"
	DefaultVideoQuality         = 18
	DefaultAudioCodec           = "aac"
	DefaultAudioBitrate         = 256
	DefaultWidth                = 1920
	DefaultHeight               = 1080
)

// FFmpegConfig contains settings for the direct-argument encoder.
type FFmpegConfig struct {
	ExePath         string `json:"exe_path" yaml:"exe_path"`
	VideoCodec      string `json:"video_codec,omitempty" yaml:"video_codec,omitempty"`
	VideoQuality    int    `json:"video_quality,omitempty" yaml:"video_quality,omitempty"`
	AudioCodec      string `json:"audio_codec,omitempty" yaml:"audio_codec,omitempty"`
	AudioBitrate    int    `json:"audio_bitrate,omitempty" yaml:"audio_bitrate,omitempty"`
	InputParameters string `json:"input_parameters,omitempty" yaml:"input_parameters,omitempty"`
	ExtraParameters string `json:"extra_parameters,omitempty" yaml:"extra_parameters,omitempty"`
}

// VirtualDubConfig contains settings for the job-file encoder.
type VirtualDubConfig struct {
	ExePath string `json:"exe_path" yaml:"exe_path"`
}

// GameConfig bundles what the launcher needs to start CS:GO through HLAE.
type GameConfig struct {
	CSGOExePath      string `json:"csgo_exe_path" yaml:"csgo_exe_path"`
	HLAEExePath      string `json:"hlae_exe_path" yaml:"hlae_exe_path"`
	ConfigDir        string `json:"config_dir" yaml:"config_dir"`
	DemoPath         string `json:"demo_path" yaml:"demo_path"`
	Width            int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height           int    `json:"height,omitempty" yaml:"height,omitempty"`
	Fullscreen       bool   `json:"fullscreen,omitempty" yaml:"fullscreen,omitempty"`
	LaunchParameters string `json:"launch_parameters,omitempty" yaml:"launch_parameters,omitempty"`
}

// NotificationsConfig contains completion notification settings.
type NotificationsConfig struct {
	WebhookURL string      `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty"`
	LogPath    string      `json:"log_path,omitempty" yaml:"log_path,omitempty"`
	Email      EmailConfig `json:"email,omitzero" yaml:"email,omitempty"`
}

// EmailConfig contains email notification configuration.
type EmailConfig struct {
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	FromName   string `json:"from_name,omitempty" yaml:"from_name,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
	Recipients string `json:"recipients,omitempty" yaml:"recipients,omitempty"`
}

// Missing lists the fields email delivery still needs. The username doubles
// as the sender address.
func (e EmailConfig) Missing() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"host", e.Host},
		{"username", e.Username},
		{"recipients", e.Recipients},
	} {
		if !util.IsConfigured(f.value) {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// IsConfigured reports whether email can be sent.
func (e EmailConfig) IsConfigured() bool {
	return len(e.Missing()) == 0
}

// IsPartial reports whether some but not all required email fields are set.
func (e EmailConfig) IsPartial() bool {
	return !e.IsConfigured() && util.IsConfigured(e.Host+e.Username+e.Recipients)
}

// Run holds everything one render needs. The orchestrator never mutates it.
type Run struct {
	FrameRate            int      `json:"frame_rate,omitempty" yaml:"frame_rate,omitempty"`
	StartTick            int      `json:"start_tick" yaml:"start_tick"`
	EndTick              int      `json:"end_tick" yaml:"end_tick"`
	OutputDestination    string   `json:"output_destination" yaml:"output_destination"`
	OutputFilename       string   `json:"output_filename" yaml:"output_filename"`
	RawDestination       string   `json:"raw_destination" yaml:"raw_destination"`
	UserCommands         []string `json:"user_commands,omitempty" yaml:"user_commands,omitempty"`
	FocusSteamID         uint64   `json:"focus_steamid,omitempty" yaml:"focus_steamid,omitempty"`
	HighlightSteamIDs    []uint64 `json:"highlight_steamids,omitempty" yaml:"highlight_steamids,omitempty"`
	BlockedSteamIDs      []uint64 `json:"blocked_steamids,omitempty" yaml:"blocked_steamids,omitempty"`
	DeathNoticesDuration int      `json:"death_notices_duration,omitempty" yaml:"death_notices_duration,omitempty"`

	GenerateRawFiles bool `json:"generate_raw_files" yaml:"generate_raw_files"`
	GenerateVideo    bool `json:"generate_video" yaml:"generate_video"`
	UseVirtualDub    bool `json:"use_virtualdub" yaml:"use_virtualdub"`
	AutoCloseGame    bool `json:"auto_close_game" yaml:"auto_close_game"`
	CleanUpRawFiles  bool `json:"clean_up_raw_files" yaml:"clean_up_raw_files"`
	OpenInExplorer   bool `json:"open_in_explorer" yaml:"open_in_explorer"`

	FFmpeg        FFmpegConfig        `json:"ffmpeg" yaml:"ffmpeg"`
	VirtualDub    VirtualDubConfig    `json:"virtualdub" yaml:"virtualdub"`
	Game          GameConfig          `json:"game" yaml:"game"`
	Notifications NotificationsConfig `json:"notifications,omitzero" yaml:"notifications,omitempty"`

	// Listen enables the event/metrics server when non-empty (e.g. "127.0.0.1:8090").
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`
}

// Load reads a run configuration from a JSON or YAML file and applies defaults.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, util.WrapError("read config", err)
	}

	cfg := &Run{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, util.WrapError("parse config", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, util.WrapError("parse config", err)
		}
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults sets default values for zero-value fields.
func (c *Run) ApplyDefaults() {
	c.FrameRate = cmp.Or(c.FrameRate, DefaultFrameRate)
	c.DeathNoticesDuration = cmp.Or(c.DeathNoticesDuration, DefaultDeathNoticesDuration)
	c.FFmpeg.VideoCodec = cmp.Or(c.FFmpeg.VideoCodec, DefaultVideoCodec)
	c.FFmpeg.VideoQuality = cmp.Or(c.FFmpeg.VideoQuality, DefaultVideoQuality)
	c.FFmpeg.AudioCodec = cmp.Or(c.FFmpeg.AudioCodec, DefaultAudioCodec)
	c.FFmpeg.AudioBitrate = cmp.Or(c.FFmpeg.AudioBitrate, DefaultAudioBitrate)
	c.Game.Width = cmp.Or(c.Game.Width, DefaultWidth)
	c.Game.Height = cmp.Or(c.Game.Height, DefaultHeight)
	c.Notifications.Email.Port = cmp.Or(c.Notifications.Email.Port, 587)
}

// Validate reports the first invalid field, or nil.
func (c *Run) Validate() error {
	checks := []*util.ValidationError{
		util.ValidateRange("frame_rate", c.FrameRate, 1, 1000),
		util.ValidateRange("start_tick", c.StartTick, 0, 1<<31-1),
		util.ValidateLess("start_tick", c.StartTick, c.EndTick),
		util.ValidateRequired("output_filename", c.OutputFilename),
		util.ValidateRequired("raw_destination", c.RawDestination),
	}
	if c.GenerateVideo {
		checks = append(checks, util.ValidateRequired("output_destination", c.OutputDestination))
		if c.UseVirtualDub {
			checks = append(checks, util.ValidateRequired("virtualdub.exe_path", c.VirtualDub.ExePath))
		} else {
			checks = append(checks, util.ValidateRequired("ffmpeg.exe_path", c.FFmpeg.ExePath))
		}
	}
	if c.GenerateRawFiles {
		checks = append(checks,
			util.ValidateRequired("game.hlae_exe_path", c.Game.HLAEExePath),
			util.ValidateRequired("game.config_dir", c.Game.ConfigDir),
			util.ValidateRequired("game.demo_path", c.Game.DemoPath),
		)
	}

	for _, verr := range checks {
		if verr != nil {
			return verr
		}
	}
	return nil
}

// Encoder returns which encoder the run selected.
func (c *Run) Encoder() types.EncoderKind {
	if c.UseVirtualDub {
		return types.EncoderVirtualDub
	}
	return types.EncoderFFmpeg
}

// BaseName returns the output filename without its extension. It names the
// capture root, the script file and the final video.
func (c *Run) BaseName() string {
	return strings.TrimSuffix(c.OutputFilename, filepath.Ext(c.OutputFilename))
}

// Clone returns a deep copy so callers can derive variants without sharing slices.
func (c *Run) Clone() *Run {
	cp := *c
	cp.UserCommands = slices.Clone(c.UserCommands)
	cp.HighlightSteamIDs = slices.Clone(c.HighlightSteamIDs)
	cp.BlockedSteamIDs = slices.Clone(c.BlockedSteamIDs)
	return &cp
}

// String summarizes the run for logs.
func (c *Run) String() string {
	return fmt.Sprintf("%s ticks %d-%d @%dfps via %s", c.BaseName(), c.StartTick, c.EndTick, c.FrameRate, c.Encoder())
}

// HasWebhook returns true if a webhook URL is configured.
func (c *Run) HasWebhook() bool {
	return c.Notifications.WebhookURL != ""
}

// HasEmail returns true if email notifications are configured.
func (c *Run) HasEmail() bool {
	return c.Notifications.Email.IsConfigured()
}

// HasLogPath returns true if a log path is configured.
func (c *Run) HasLogPath() bool {
	return c.Notifications.LogPath != ""
}
