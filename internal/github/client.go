// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/Gajesh2007/weekend-activity/internal/core"
)

// ChangedFile describes a single file touched by a commit or pull request,
// as returned by the diff endpoints.
type ChangedFile struct {
	Filename  string
	Additions int
	Deletions int
	Patch     string
}

// Client defines the source-control operations the tracker needs: listing
// activity in a window and fetching diffs for summarization.
type Client interface {
	ListCommits(ctx context.Context, owner, repo string, since, until time.Time) ([]*core.Commit, error)
	ListPullRequestsSince(ctx context.Context, owner, repo string, since time.Time) ([]*core.PullRequest, error)
	ListCommitFiles(ctx context.Context, owner, repo, sha string) ([]ChangedFile, error)
	ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient authenticates with a personal access token and wraps the
// official go-github client behind the tracker's Client interface.
func NewClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return &gitHubClient{client: github.NewClient(tc), logger: logger}
}

// ListCommits returns all commits committed within [since, until],
// translated into internal records. Pagination is handled transparently.
// Commits without an identifiable GitHub author come back with an empty
// AuthorUsername; the caller decides what to do with them.
func (g *gitHubClient) ListCommits(ctx context.Context, owner, repo string, since, until time.Time) ([]*core.Commit, error) {
	var all []*core.Commit
	opts := &github.CommitsListOptions{
		Since:       since,
		Until:       until,
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		commits, resp, err := g.client.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			g.logger.Error("failed to list commits", "owner", owner, "repo", repo, "error", err)
			return nil, err
		}
		for _, c := range commits {
			all = append(all, toCommitRecord(c))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListPullRequestsSince walks the repository's pull requests in descending
// creation order and stops at the first one created before since. This
// relies on the upstream feed actually being sorted newest-first: if that
// ordering is ever violated, older PRs past the break point are missed.
// That trade-off keeps the scan bounded and is deliberate.
func (g *gitHubClient) ListPullRequestsSince(ctx context.Context, owner, repo string, since time.Time) ([]*core.PullRequest, error) {
	var all []*core.PullRequest
	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		prs, resp, err := g.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			g.logger.Error("failed to list pull requests", "owner", owner, "repo", repo, "error", err)
			return nil, err
		}
		for _, pr := range prs {
			if pr.GetCreatedAt().Time.Before(since) {
				return all, nil
			}
			all = append(all, toPullRequestRecord(pr))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListCommitFiles returns the changed-file descriptors for a commit.
func (g *gitHubClient) ListCommitFiles(ctx context.Context, owner, repo, sha string) ([]ChangedFile, error) {
	commit, _, err := g.client.Repositories.GetCommit(ctx, owner, repo, sha, &github.ListOptions{PerPage: 100})
	if err != nil {
		g.logger.Error("failed to get commit diff", "owner", owner, "repo", repo, "sha", sha, "error", err)
		return nil, err
	}
	return toChangedFiles(commit.Files), nil
}

// ListPullRequestFiles returns all changed-file descriptors for a pull
// request, following pagination.
func (g *gitHubClient) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error) {
	var all []ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list PR files", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}
		all = append(all, toChangedFiles(files)...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

func toCommitRecord(c *github.RepositoryCommit) *core.Commit {
	return &core.Commit{
		SHA:            c.GetSHA(),
		Message:        c.GetCommit().GetMessage(),
		AuthorName:     c.GetCommit().GetAuthor().GetName(),
		AuthorEmail:    c.GetCommit().GetAuthor().GetEmail(),
		AuthorUsername: c.GetAuthor().GetLogin(),
		URL:            c.GetHTMLURL(),
		CommittedAt:    c.GetCommit().GetAuthor().GetDate().Time,
	}
}

func toPullRequestRecord(pr *github.PullRequest) *core.PullRequest {
	rec := &core.PullRequest{
		Number:         pr.GetNumber(),
		Title:          pr.GetTitle(),
		Body:           pr.Body,
		AuthorUsername: pr.GetUser().GetLogin(),
		URL:            pr.GetHTMLURL(),
		State:          pr.GetState(),
		CreatedAt:      pr.GetCreatedAt().Time,
		UpdatedAt:      pr.GetUpdatedAt().Time,
	}
	if pr.MergedAt != nil {
		t := pr.GetMergedAt().Time
		rec.MergedAt = &t
	}
	return rec
}

func toChangedFiles(files []*github.CommitFile) []ChangedFile {
	out := make([]ChangedFile, 0, len(files))
	for _, f := range files {
		out = append(out, ChangedFile{
			Filename:  f.GetFilename(),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Patch:     f.GetPatch(),
		})
	}
	return out
}
