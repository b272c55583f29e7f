package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override executable paths from the config file.
const (
	EnvFFmpeg     = "DEMOREC_FFMPEG"
	EnvVirtualDub = "DEMOREC_VIRTUALDUB"
	EnvHLAE       = "DEMOREC_HLAE"
	EnvCSGO       = "DEMOREC_CSGO"
	EnvListen     = "DEMOREC_LISTEN"
)

// LoadEnv reads .env files into the process environment. Variables already
// set are kept. Missing files are ignored; with no paths ".env" is tried.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides executable paths and the listen address with any
// DEMOREC_* variables that are set.
func (c *Run) ApplyEnv() {
	override := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	override(&c.FFmpeg.ExePath, EnvFFmpeg)
	override(&c.VirtualDub.ExePath, EnvVirtualDub)
	override(&c.Game.HLAEExePath, EnvHLAE)
	override(&c.Game.CSGOExePath, EnvCSGO)
	override(&c.Listen, EnvListen)
}
