// Package update tells a headlines user when a newer release is published.
package update

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const ReleasesURL = "https://api.github.com/repos/matheuskafuri/headlines/releases/latest"

// Result describes a release newer than the running build.
type Result struct {
	LatestVersion string
	URL           string
}

type ghRelease struct {
	TagName    string `json:"tag_name"`
	HTMLURL    string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// Check asks releasesURL whether a release newer than currentVersion exists.
// Source builds ("dev" or any non-numeric version) are older than every
// release. Any failure yields nil: the check is advisory.
func Check(ctx context.Context, releasesURL, currentVersion string) *Result {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, releasesURL, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "headlines/"+currentVersion)

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var release ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil
	}
	if release.Draft || release.Prerelease {
		return nil
	}

	latest, ok := parseVersion(release.TagName)
	if !ok {
		return nil
	}
	if current, ok := parseVersion(currentVersion); ok && !newer(latest, current) {
		return nil
	}

	return &Result{
		LatestVersion: strings.TrimPrefix(release.TagName, "v"),
		URL:           release.HTMLURL,
	}
}

// parseVersion reads "v1.2.3" style tags. Missing parts count as zero.
func parseVersion(s string) ([3]int, bool) {
	var v [3]int
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	if s == "" {
		return v, false
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return v, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return v, false
		}
		v[i] = n
	}
	return v, true
}

func newer(a, b [3]int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return false
}
