package version

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/go-resty/resty/v2"

	"github.com/yi-nology/showcase/pkg/common"
)

var (
	// Version information, injected at build time via main package
	AppVersion   = "dev"
	AppGitCommit = "unknown"
	AppBuildTime = "unknown"

	// GitHub repository information
	GitHubOwner = "yi-nology"
	GitHubRepo  = "showcase"

	// githubAPI is replaced in tests.
	githubAPI = "https://api.github.com"
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// GitHubRelease represents the GitHub API release response
type GitHubRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
	Prerelease  bool      `json:"prerelease"`
	Body        string    `json:"body"`
}

// ReleaseInfo is the latest release as reported to clients.
type ReleaseInfo struct {
	TagName     string `json:"tag_name"`
	Name        string `json:"name"`
	PublishedAt string `json:"published_at"`
	HTMLURL     string `json:"html_url"`
	Prerelease  bool   `json:"prerelease"`
	Body        string `json:"body"`
	UpdateAvail bool   `json:"update_available"`
}

// GetVersion .
// @router /api/version [GET]
func GetVersion(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, common.CommonResponse{
		Code: consts.StatusOK,
		Msg:  "success",
		Data: Info{
			Version:   AppVersion,
			GitCommit: AppGitCommit,
			BuildTime: AppBuildTime,
		},
	})
}

// GetLatestRelease .
// @router /api/version/latest [GET]
func GetLatestRelease(ctx context.Context, c *app.RequestContext) {
	releaseInfo, err := fetchLatestGitHubRelease(ctx)
	if err != nil {
		c.JSON(consts.StatusBadGateway, common.CommonResponse{
			Code:  consts.StatusBadGateway,
			Msg:   "failed to fetch GitHub release",
			Error: err.Error(),
		})
		return
	}

	c.JSON(consts.StatusOK, common.CommonResponse{
		Code: consts.StatusOK,
		Msg:  "success",
		Data: releaseInfo,
	})
}

func fetchLatestGitHubRelease(ctx context.Context) (*ReleaseInfo, error) {
	var release GitHubRelease
	resp, err := resty.New().
		SetTimeout(10*time.Second).
		SetBaseURL(githubAPI).
		R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github.v3+json").
		SetHeader("User-Agent", "showcase").
		SetPathParams(map[string]string{"owner": GitHubOwner, "repo": GitHubRepo}).
		SetResult(&release).
		Get("/repos/{owner}/{repo}/releases/latest")
	if err != nil {
		return nil, fmt.Errorf("fetch release: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("GitHub API returned %d: %s", resp.StatusCode(), resp.String())
	}

	info := &ReleaseInfo{
		TagName:     release.TagName,
		Name:        release.Name,
		PublishedAt: release.PublishedAt.Format(time.RFC3339),
		HTMLURL:     release.HTMLURL,
		Prerelease:  release.Prerelease,
		Body:        release.Body,
	}
	if common.ValidateVersion(release.TagName) == nil && common.ValidateVersion(AppVersion) == nil {
		info.UpdateAvail = common.VersionToNumber(release.TagName) > common.VersionToNumber(AppVersion)
	}
	return info, nil
}
