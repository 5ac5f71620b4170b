package automation

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DetectedBrowser describes one automatable browser installation.
type DetectedBrowser struct {
	Type           string
	Version        string
	ExecutablePath string
	UserDataDir    string
	Profiles       []string
}

// browserCandidates are the Chromium-family browsers automation supports.
// Detection checks PATH names first, then well-known absolute locations.
var browserCandidates = []struct {
	kind    string
	names   []string
	paths   []string
	dataDir string // relative to the user config dir
}{
	{
		kind:    "chrome",
		names:   []string{"google-chrome", "google-chrome-stable"},
		paths:   []string{"/usr/bin/google-chrome", "/opt/google/chrome/chrome", "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"},
		dataDir: "google-chrome",
	},
	{
		kind:    "chromium",
		names:   []string{"chromium", "chromium-browser"},
		paths:   []string{"/usr/bin/chromium", "/usr/bin/chromium-browser", "/snap/bin/chromium"},
		dataDir: "chromium",
	},
	{
		kind:    "brave",
		names:   []string{"brave-browser", "brave"},
		paths:   []string{"/usr/bin/brave-browser", "/opt/brave.com/brave/brave", "/Applications/Brave Browser.app/Contents/MacOS/Brave Browser"},
		dataDir: "BraveSoftware/Brave-Browser",
	},
	{
		kind:    "edge",
		names:   []string{"microsoft-edge", "microsoft-edge-stable"},
		paths:   []string{"/usr/bin/microsoft-edge", "/opt/microsoft/msedge/msedge"},
		dataDir: "microsoft-edge",
	},
}

// DetectBrowsers scans the host for supported browser installations. The
// scan is best-effort: missing version strings or unreadable profile
// directories degrade to empty fields rather than errors.
func DetectBrowsers() []DetectedBrowser {
	var found []DetectedBrowser
	seen := make(map[string]bool)

	for _, cand := range browserCandidates {
		exe := ""
		for _, name := range cand.names {
			if p, err := exec.LookPath(name); err == nil {
				exe = p
				break
			}
		}
		if exe == "" {
			for _, p := range cand.paths {
				if _, err := os.Stat(p); err == nil {
					exe = p
					break
				}
			}
		}
		if exe == "" || seen[exe] {
			continue
		}
		seen[exe] = true

		b := DetectedBrowser{
			Type:           cand.kind,
			Version:        browserVersion(exe),
			ExecutablePath: exe,
		}
		if cfg, err := os.UserConfigDir(); err == nil {
			b.UserDataDir = filepath.Join(cfg, cand.dataDir)
			b.Profiles = listProfiles(b.UserDataDir)
		}
		found = append(found, b)
	}

	return found
}

func browserVersion(exe string) string {
	out, err := exec.Command(exe, "--version").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// listProfiles returns the Chromium profile directories under a user data
// dir: "Default" plus any "Profile N".
func listProfiles(dataDir string) []string {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil
	}
	var profiles []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "Default" || strings.HasPrefix(name, "Profile ") {
			profiles = append(profiles, name)
		}
	}
	return profiles
}
