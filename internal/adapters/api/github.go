package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/just-nibble/service-miner/pkg/config"
	"github.com/just-nibble/service-miner/pkg/errcodes"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxRateLimitRetries = 3

// Commit is a commit as listed by the hosting API, before its files are fetched.
type Commit struct {
	SHA     string
	Date    time.Time
	Author  entities.User
	Message string
	Parents []entities.ParentRef
}

type GitHubClient struct {
	client      *github.Client
	rateLimiter *rate.Limiter
	perPage     int
	log         logrus.FieldLogger
}

// NewGitHubClient builds a client for github.com or, when cfg.BaseURL points
// elsewhere, for that API root. httpClient may be nil.
func NewGitHubClient(cfg config.GitHubConfig, httpClient *http.Client, log logrus.FieldLogger) (*GitHubClient, error) {
	client := github.NewClient(httpClient)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid github base url %q: %w", cfg.BaseURL, err)
		}
		client.BaseURL = u
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	perPage := cfg.PerPage
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	return &GitHubClient{
		client:      client,
		rateLimiter: rate.NewLimiter(limit, 1),
		perPage:     perPage,
		log:         log,
	}, nil
}

// call waits for the local limiter and retries once the remote rate limit
// resets.
func (c *GitHubClient) call(ctx context.Context, op string, fn func() (*github.Response, error)) error {
	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return errcodes.ErrContextCancelled
		}

		_, err := fn()
		if err == nil {
			return nil
		}

		var rlErr *github.RateLimitError
		if !errors.As(err, &rlErr) || attempt >= maxRateLimitRetries {
			return errcodes.External(op, err)
		}

		wait := time.Until(rlErr.Rate.Reset.Time)
		c.log.WithFields(logrus.Fields{"op": op, "resume_in": wait.Round(time.Second)}).Warn("rate limit reached, pausing")
		if wait > 0 {
			select {
			case <-ctx.Done():
				return errcodes.ErrContextCancelled
			case <-time.After(wait):
			}
		}
	}
}

// ListCommits pages through the default branch history, oldest first.
func (c *GitHubClient) ListCommits(ctx context.Context, owner, name string, since *time.Time) ([]Commit, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: c.perPage},
	}
	if since != nil {
		opts.Since = *since
	}

	var all []Commit
	for {
		var page []*github.RepositoryCommit
		err := c.call(ctx, "list commits", func() (*github.Response, error) {
			var resp *github.Response
			var err error
			page, resp, err = c.client.Repositories.ListCommits(ctx, owner, name, opts)
			if err == nil {
				opts.Page = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, rc := range page {
			all = append(all, toCommit(rc))
		}

		if opts.Page == 0 {
			break
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Date.Before(all[j].Date) })
	return all, nil
}

func toCommit(rc *github.RepositoryCommit) Commit {
	author := rc.GetCommit().GetAuthor()
	c := Commit{
		SHA:     rc.GetSHA(),
		Date:    author.GetDate().Time.UTC(),
		Message: rc.GetCommit().GetMessage(),
		Author: entities.User{
			Login: rc.GetAuthor().GetLogin(),
			Name:  author.GetName(),
			Email: author.GetEmail(),
		},
	}
	for i, p := range rc.Parents {
		c.Parents = append(c.Parents, entities.ParentRef{Position: i, SHA: p.GetSHA()})
	}
	return c
}

// GetCommitFiles returns the per-file line deltas of one commit. Changes is
// derived from the additions and deletions reported.
func (c *GitHubClient) GetCommitFiles(ctx context.Context, owner, name, sha string) ([]entities.FileModification, error) {
	var rc *github.RepositoryCommit
	err := c.call(ctx, "get commit "+sha, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		rc, resp, err = c.client.Repositories.GetCommit(ctx, owner, name, sha, nil)
		return resp, err
	})
	if err != nil {
		return nil, err
	}

	fms := make([]entities.FileModification, 0, len(rc.Files))
	for _, f := range rc.Files {
		fm, err := entities.NewFileModification(f.GetFilename(), entities.FileStatus(f.GetStatus()), f.GetAdditions(), f.GetDeletions())
		if err != nil {
			return nil, err
		}
		if f.GetChanges() != fm.Changes {
			c.log.WithFields(logrus.Fields{"sha": sha, "file": fm.Filename, "reported": f.GetChanges()}).
				Debug("reported changes differ from additions plus deletions")
		}
		fms = append(fms, fm)
	}
	return fms, nil
}

// ListIssues returns every issue of the repository, pull requests excluded.
func (c *GitHubClient) ListIssues(ctx context.Context, owner, name string) ([]entities.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "asc",
		ListOptions: github.ListOptions{PerPage: c.perPage},
	}

	var all []entities.Issue
	for {
		var page []*github.Issue
		err := c.call(ctx, "list issues", func() (*github.Response, error) {
			var resp *github.Response
			var err error
			page, resp, err = c.client.Issues.ListByRepo(ctx, owner, name, opts)
			if err == nil {
				opts.Page = resp.NextPage
			}
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, issue := range page {
			if issue.IsPullRequest() {
				continue
			}
			all = append(all, toIssue(issue))
		}

		if opts.Page == 0 {
			break
		}
	}
	return all, nil
}

func toIssue(gi *github.Issue) entities.Issue {
	issue := entities.Issue{
		Number:    gi.GetNumber(),
		Title:     gi.GetTitle(),
		Body:      gi.GetBody(),
		State:     gi.GetState(),
		User:      entities.User{Login: gi.GetUser().GetLogin()},
		CreatedAt: gi.GetCreatedAt().Time.UTC(),
	}
	if gi.ClosedAt != nil {
		closed := gi.GetClosedAt().Time.UTC()
		issue.ClosedAt = &closed
	}
	if gi.UpdatedAt != nil {
		updated := gi.GetUpdatedAt().Time.UTC()
		issue.UpdatedAt = &updated
	}
	for _, l := range gi.Labels {
		issue.Labels = append(issue.Labels, entities.Label{Name: l.GetName(), Description: l.GetDescription()})
	}
	for _, a := range gi.Assignees {
		issue.Assignees = append(issue.Assignees, entities.Assignee{Login: a.GetLogin(), HTMLURL: a.GetHTMLURL()})
	}
	return issue
}

// GetFileContent downloads one file at the given revision.
func (c *GitHubClient) GetFileContent(ctx context.Context, owner, name, path, ref string) ([]byte, error) {
	var fc *github.RepositoryContent
	op := fmt.Sprintf("get contents %s@%s", path, ref)
	err := c.call(ctx, op, func() (*github.Response, error) {
		var resp *github.Response
		var err error
		fc, _, resp, err = c.client.Repositories.GetContents(ctx, owner, name, path, &github.RepositoryContentGetOptions{Ref: ref})
		return resp, err
	})
	if err != nil {
		return nil, err
	}
	if fc == nil {
		return nil, errcodes.External(op, errors.New("path is a directory"))
	}

	content, err := fc.GetContent()
	if err != nil {
		return nil, errcodes.External(op, err)
	}
	return []byte(content), nil
}
