// Package gh wraps the GitHub REST API for authentication and repository
// listing.
package gh

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"

	"github.com/bug-c/github-backup/repository"
)

const listPageSize = 100

// Client lists organization repositories on behalf of the backup run.
type Client struct {
	gh  *github.Client
	log *slog.Logger
}

// NewClient creates an API client authenticated with the given token. The
// token can be a personal access token or a GitHub App installation token.
func NewClient(ctx context.Context, token string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(ctx, ts)
	}

	return &Client{
		gh:  github.NewClient(hc),
		log: log,
	}
}

// Authenticate verifies the credential by fetching the authenticated user
// and returns its login. Installation tokens have no associated user and
// must not be verified this way.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("unable to authenticate with github api err:%w", err)
	}
	return user.GetLogin(), nil
}

// ListOrgRepositories returns a descriptor for every repository of the
// given organization, following pagination.
func (c *Client) ListOrgRepositories(ctx context.Context, org string) ([]repository.Descriptor, error) {
	opt := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}

	var descs []repository.Descriptor
	for {
		repos, resp, err := c.gh.Repositories.ListByOrg(ctx, org, opt)
		if err != nil {
			return nil, fmt.Errorf("unable to list repositories of org '%s' err:%w", org, err)
		}

		for _, repo := range repos {
			descs = append(descs, repository.Descriptor{
				Name:          repo.GetName(),
				CloneURL:      repo.GetCloneURL(),
				DefaultBranch: repo.GetDefaultBranch(),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	c.log.Debug("listed organization repositories", "org", org, "count", len(descs))

	return descs, nil
}
