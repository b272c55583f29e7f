package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/mod/semver"

	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

const (
	githubRepo          = "oszuidwest/zwfm-demorecorder"
	versionCheckDelay   = 5 * time.Second  // Let the run start before touching the network
	versionCheckTimeout = 30 * time.Second // HTTP request timeout
	versionMaxRetries   = 3
	versionRetryDelay   = 30 * time.Second
)

// VersionChecker looks up the latest GitHub release once per process.
type VersionChecker struct {
	baseURL string

	mu     sync.RWMutex
	latest string
}

// NewVersionChecker creates a checker and starts its lookup in the background.
// The lookup stops when ctx is done.
func NewVersionChecker(ctx context.Context) *VersionChecker {
	vc := &VersionChecker{baseURL: "https://api.github.com"}
	go vc.run(ctx)
	return vc
}

func (vc *VersionChecker) run(ctx context.Context) {
	if !sleepCtx(ctx, versionCheckDelay) {
		return
	}
	for attempt := range versionMaxRetries {
		if vc.check(ctx) {
			if info := vc.GetInfo(); info.UpdateAvail {
				slog.Info("a newer release is available", "current", info.Current, "latest", info.Latest)
			}
			return
		}
		if attempt < versionMaxRetries-1 && !sleepCtx(ctx, versionRetryDelay) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// githubRelease represents the GitHub API response for a release.
type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// check fetches the latest release from GitHub. Returns true when no retry is needed.
func (vc *VersionChecker) check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, versionCheckTimeout)
	defer cancel()

	url := vc.baseURL + "/repos/" + githubRepo + "/releases/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "zwfm-demorecorder/"+Version)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer util.SafeCloseFunc(resp.Body, "release response body")()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// No releases exist yet.
		return true
	case http.StatusForbidden, http.StatusTooManyRequests:
		return false
	default:
		return resp.StatusCode < 500
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return false
	}
	if release.Draft || release.Prerelease {
		return true
	}
	if release.TagName == "" {
		return false
	}

	vc.mu.Lock()
	vc.latest = normalizeVersion(release.TagName)
	vc.mu.Unlock()
	return true
}

// GetInfo returns the current version info.
func (vc *VersionChecker) GetInfo() VersionInfo {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	current := normalizeVersion(Version)
	info := VersionInfo{
		Current:   current,
		Latest:    vc.latest,
		Commit:    Commit,
		BuildTime: BuildTime,
	}
	if vc.latest != "" && current != "dev" && current != "unknown" {
		info.UpdateAvail = isNewerVersion(vc.latest, current)
	}
	return info
}

// normalizeVersion removes 'v' prefix and trims whitespace.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

// isNewerVersion returns true if latest is newer than current using semver comparison.
func isNewerVersion(latest, current string) bool {
	canon := func(v string) string { return "v" + normalizeVersion(v) }
	return semver.Compare(canon(latest), canon(current)) > 0
}
