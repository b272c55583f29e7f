package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// MinimumVersion is the oldest FFmpeg release known to read HLAE's TGA sequences and WAV audio correctly.
const MinimumVersion = "4.0"

const versionTimeout = 10 * time.Second

var versionPattern = regexp.MustCompile(`ffmpeg version n?(\d+(?:\.\d+){0,2})`)

// ParseVersion extracts the release number from `ffmpeg -version` output.
// Returns "" for git snapshots and unrecognised output.
func ParseVersion(output string) string {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return m[1]
}

// canonicalVersion ensures a version string is in semver canonical form (v prefix).
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// AtLeast reports whether version is equal to or newer than minimum.
func AtLeast(version, minimum string) bool {
	return semver.Compare(canonicalVersion(version), canonicalVersion(minimum)) >= 0
}

// CheckVersion runs `<exe> -version` and fails when the binary is older than minimum.
// Unparseable versions (git builds) pass.
func CheckVersion(ctx context.Context, exe, minimum string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, exe, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s -version: %w", exe, err)
	}

	version := ParseVersion(string(out))
	if version == "" {
		return "", nil
	}
	if !AtLeast(version, minimum) {
		return version, fmt.Errorf("ffmpeg %s is older than required %s", version, minimum)
	}
	return version, nil
}
