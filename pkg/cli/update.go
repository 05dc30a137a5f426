package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is the running build, set with -ldflags "-X .../pkg/cli.Version=1.2.3".
var Version = "0.0.0-dev"

// githubAPI is the releases endpoint root; tests point it at a local server.
var githubAPI = "https://api.github.com"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// releaseVersion finds a semantic version in the tag, falling back to the
// release name.
func releaseVersion(r githubRelease) (semver.Version, bool) {
	for _, s := range []string{r.TagName, r.Name} {
		m := semverRe.FindString(s)
		if m == "" {
			continue
		}
		if v, err := semver.Parse(strings.TrimPrefix(m, "v")); err == nil {
			return v, true
		}
	}
	return semver.Version{}, false
}

// pickAsset prefers an asset built for this platform, then any binary-looking
// asset, then the first one.
func pickAsset(r githubRelease) string {
	goos, goarch := runtime.GOOS, runtime.GOARCH
	var anyBinary, first string
	for _, a := range r.Assets {
		name := strings.ToLower(a.Name)
		if first == "" {
			first = a.BrowserDownloadURL
		}
		if strings.Contains(name, goos) && strings.Contains(name, goarch) {
			return a.BrowserDownloadURL
		}
		if anyBinary == "" {
			for _, hint := range []string{"darwin", "linux", "windows", "amd64", "arm64"} {
				if strings.Contains(name, hint) {
					anyBinary = a.BrowserDownloadURL
					break
				}
			}
		}
	}
	if anyBinary != "" {
		return anyBinary
	}
	return first
}

// detectLatest queries the GitHub releases API and returns the highest
// published, non-prerelease version. found is false when no release carries a
// usable version.
func detectLatest(ctx context.Context, repo string) (rel *selfupdate.Release, found bool, err error) {
	url := fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(githubAPI, "/"), repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, false, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	type candidate struct {
		ver   semver.Version
		asset string
	}
	var candidates []candidate
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		v, ok := releaseVersion(r)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{ver: v, asset: pickAsset(r)})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ver.GT(candidates[j].ver)
	})
	best := candidates[0]
	return &selfupdate.Release{Version: best.ver, AssetURL: best.asset}, true, nil
}

// promptLine prints prompt to w and reads one trimmed line from r.
func promptLine(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// updateStatus is the outcome of comparing the running build with the
// latest release.
type updateStatus int

const (
	updateNone updateStatus = iota
	updateCurrent
	updateNoAsset
	updateAvailable
)

// checkLatest reports what CheckForUpdates would do without touching the
// binary.
func checkLatest(ctx context.Context, w io.Writer, repo string) (*selfupdate.Release, updateStatus, error) {
	fmt.Fprintf(w, "Current version: %s\n", Version)
	latest, found, err := detectLatest(ctx, repo)
	if err != nil {
		return nil, updateNone, fmt.Errorf("update check failed: %w", err)
	}
	if !found {
		fmt.Fprintf(w, "No releases found for %s.\n", repo)
		return nil, updateNone, nil
	}
	fmt.Fprintf(w, "Latest version: %s\n", latest.Version)

	current, perr := semver.Parse(strings.TrimPrefix(Version, "v"))
	if perr != nil {
		fmt.Fprintf(w, "warning: could not parse current version %q: %v\n", Version, perr)
	} else if latest.Version.LTE(current) {
		fmt.Fprintf(w, "You are already running the latest version: %s.\n", current)
		return latest, updateCurrent, nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(w, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		fmt.Fprintln(w, "Please visit the project releases page to download the new version.")
		return latest, updateNoAsset, nil
	}
	return latest, updateAvailable, nil
}

// CheckForUpdates compares Version with the latest GitHub release of repo and,
// after confirmation on in, replaces the running executable.
func CheckForUpdates(ctx context.Context, in io.Reader, w io.Writer, repo string) error {
	latest, status, err := checkLatest(ctx, w, repo)
	if err != nil || status != updateAvailable {
		return err
	}

	answer, err := promptLine(bufio.NewReader(in), w, fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	answer = strings.ToLower(answer)
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(w, "Update cancelled.")
		return nil
	}

	fmt.Fprintln(w, "Updating...")
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Fprintf(w, "Updated to version %s.\n", latest.Version)
	return nil
}
