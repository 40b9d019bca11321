package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

// maxRepoPages caps repository listing; the org surface is informational,
// not a sync target.
const maxRepoPages = 5

// ListRepos returns the organization's repositories, most recently updated
// first.
func (c *Client) ListRepos(ctx context.Context) ([]domain.Repo, error) {
	opts := &gh.RepositoryListByOrgOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var out []domain.Repo
	for page := 0; page < maxRepoPages; page++ {
		// Listing spends core quota, not search quota; the search
		// limiter ignores core responses via X-RateLimit-Resource.
		repos, resp, err := c.gh.Repositories.ListByOrg(ctx, c.org, opts)
		if err != nil {
			return nil, fmt.Errorf("list repos for %s: %w", c.org, err)
		}

		for _, r := range repos {
			out = append(out, domain.Repo{
				Name:        r.GetName(),
				Description: r.GetDescription(),
				URL:         r.GetHTMLURL(),
				UpdatedAt:   r.GetUpdatedAt().Time,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}
