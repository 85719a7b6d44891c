// Package update checks whether a newer sf release has been published.
package update

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/mod/semver"
)

const (
	// DefaultReleasesURL is the GitHub endpoint for the latest release.
	DefaultReleasesURL = "https://api.github.com/repos/storefront/storefront-cli/releases/latest"
	CheckTimeout       = 5 * time.Second
)

// Release is the subset of the GitHub release payload that is used.
type Release struct {
	TagName    string `json:"tag_name"`
	HTMLURL    string `json:"html_url"`
	Prerelease bool   `json:"prerelease"`
}

// CheckResult describes the installed and latest versions.
type CheckResult struct {
	CurrentVersion  string `json:"currentVersion"`
	LatestVersion   string `json:"latestVersion"`
	UpdateURL       string `json:"updateUrl,omitempty"`
	UpdateAvailable bool   `json:"updateAvailable"`
}

// Checker queries a releases endpoint.
type Checker struct {
	URL  string
	HTTP *http.Client
}

// NewChecker returns a Checker for DefaultReleasesURL.
func NewChecker() *Checker {
	return &Checker{URL: DefaultReleasesURL, HTTP: http.DefaultClient}
}

// Check reports whether a newer version than currentVersion exists.
// Returns nil when the check cannot complete; it never blocks the CLI for
// longer than CheckTimeout.
func (c *Checker) Check(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}
	release, err := c.latest(ctx)
	if err != nil {
		return nil
	}

	current := normalizeVersion(currentVersion)
	latest := normalizeVersion(release.TagName)

	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}
	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}
	return result
}

func (c *Checker) latest(ctx context.Context) (*Release, error) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}
	return &release, nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return "unexpected status " + http.StatusText(e.code) }

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
