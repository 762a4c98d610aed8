// Package tracker implements the repository sync engine: it pulls commit
// and pull-request activity for a window from GitHub, deduplicates against
// the store by natural key, persists what is new, and optionally enriches
// new records with model-generated summaries.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Gajesh2007/weekend-activity/internal/core"
	"github.com/Gajesh2007/weekend-activity/internal/github"
	"github.com/Gajesh2007/weekend-activity/internal/storage"
	"github.com/Gajesh2007/weekend-activity/internal/summary"
	"github.com/Gajesh2007/weekend-activity/internal/window"
)

// Engine syncs repositories one at a time. There is no cross-repository
// parallelism: a repository is fully processed (commits, then pull
// requests, then summaries) before the next one begins, and all of its
// writes share one batch.
type Engine struct {
	store      storage.Store
	gh         github.Client
	summarizer *summary.Summarizer
	logger     *slog.Logger
}

// NewEngine creates a sync engine. A nil summarizer disables summary
// generation entirely.
func NewEngine(store storage.Store, gh github.Client, summarizer *summary.Summarizer, logger *slog.Logger) *Engine {
	return &Engine{store: store, gh: gh, summarizer: summarizer, logger: logger}
}

// FetchActivity syncs every referenced repository for the window and
// merges the newly discovered records. The loop is sequential and stops at
// the first repository whose sync fails; repositories already synced keep
// their committed writes.
func (e *Engine) FetchActivity(ctx context.Context, refs []core.RepoRef, w window.Window) (core.ActivityBatch, error) {
	var all core.ActivityBatch
	for _, ref := range refs {
		batch, err := e.SyncRepository(ctx, ref, w)
		if err != nil {
			return core.ActivityBatch{}, fmt.Errorf("failed to sync %s: %w", ref.FullName(), err)
		}
		all.Merge(batch)
	}
	return all, nil
}

// SyncRepository syncs a single repository inside one write batch. On any
// error the batch is rolled back, so a failed sync leaves no partial rows
// behind for that repository.
func (e *Engine) SyncRepository(ctx context.Context, ref core.RepoRef, w window.Window) (core.ActivityBatch, error) {
	wb, err := e.store.Begin(ctx)
	if err != nil {
		return core.ActivityBatch{}, err
	}
	defer wb.Rollback() //nolint:errcheck // no-op after a successful commit

	batch, err := e.syncRepo(ctx, wb, ref, w)
	if err != nil {
		return core.ActivityBatch{}, err
	}

	if err := wb.Commit(); err != nil {
		return core.ActivityBatch{}, err
	}
	return batch, nil
}

func (e *Engine) syncRepo(ctx context.Context, wb *storage.WriteBatch, ref core.RepoRef, w window.Window) (core.ActivityBatch, error) {
	logger := e.logger.With("repo", ref.FullName())
	logger.Info("syncing repository", "start", w.Start, "end", w.End)

	repo, err := wb.GetOrCreateRepository(ctx, ref)
	if err != nil {
		return core.ActivityBatch{}, err
	}

	var batch core.ActivityBatch

	commits, err := e.gh.ListCommits(ctx, ref.Owner, ref.Name, w.Start, w.End)
	if err != nil {
		return core.ActivityBatch{}, fmt.Errorf("failed to list commits: %w", err)
	}
	for _, c := range commits {
		// Commits without an identifiable GitHub author are not recorded.
		if c.AuthorUsername == "" {
			continue
		}

		_, err := wb.CommitBySHA(ctx, c.SHA)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return core.ActivityBatch{}, err
		}

		c.RepositoryID = repo.ID
		if err := wb.InsertCommit(ctx, c); err != nil {
			return core.ActivityBatch{}, err
		}
		batch.Commits = append(batch.Commits, c)

		if err := e.summarizeCommit(ctx, wb, ref, c, logger); err != nil {
			return core.ActivityBatch{}, err
		}
	}

	prs, err := e.gh.ListPullRequestsSince(ctx, ref.Owner, ref.Name, w.Start)
	if err != nil {
		return core.ActivityBatch{}, fmt.Errorf("failed to list pull requests: %w", err)
	}
	for _, pr := range prs {
		// Created on or after the window end: skip, but keep scanning for
		// older PRs still inside the window.
		if !pr.CreatedAt.Before(w.End) {
			continue
		}

		_, err := wb.PullRequestByNumber(ctx, repo.ID, pr.Number)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return core.ActivityBatch{}, err
		}

		pr.RepositoryID = repo.ID
		if err := wb.InsertPullRequest(ctx, pr); err != nil {
			return core.ActivityBatch{}, err
		}
		batch.PullRequests = append(batch.PullRequests, pr)

		if err := e.summarizePR(ctx, wb, ref, pr, logger); err != nil {
			return core.ActivityBatch{}, err
		}
	}

	logger.Info("repository synced", "new_commits", len(batch.Commits), "new_prs", len(batch.PullRequests))
	return batch, nil
}

// summarizeCommit attaches a model summary to a freshly inserted commit.
// Summarization failures are logged and swallowed; only store errors
// propagate, since they poison the whole batch.
func (e *Engine) summarizeCommit(ctx context.Context, wb *storage.WriteBatch, ref core.RepoRef, c *core.Commit, logger *slog.Logger) error {
	if e.summarizer == nil {
		return nil
	}

	s, err := e.summarizer.SummarizeCommit(ctx, ref, c)
	if err != nil {
		logger.Warn("commit summarization failed", "sha", c.SHA, "error", err)
		return nil
	}
	if s == nil {
		return nil
	}

	if err := wb.AttachCommitSummary(ctx, c.ID, s); err != nil {
		return err
	}
	c.Summary = s
	return nil
}

func (e *Engine) summarizePR(ctx context.Context, wb *storage.WriteBatch, ref core.RepoRef, pr *core.PullRequest, logger *slog.Logger) error {
	if e.summarizer == nil {
		return nil
	}

	s, err := e.summarizer.SummarizePR(ctx, ref, pr)
	if err != nil {
		logger.Warn("PR summarization failed", "pr", pr.Number, "error", err)
		return nil
	}
	if s == nil {
		return nil
	}

	if err := wb.AttachPullRequestSummary(ctx, pr.ID, s); err != nil {
		return err
	}
	pr.Summary = s
	return nil
}
