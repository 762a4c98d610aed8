// Package storage implements the persistent store for repositories,
// commits, pull requests, summaries, and generated reports. Lookups use
// natural keys (commit SHA, repository+PR number) so that re-running a
// sync never creates duplicates.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Gajesh2007/weekend-activity/internal/core"
)

// ErrNotFound is returned when a lookup by natural key matches nothing.
var ErrNotFound = errors.New("storage: record not found")

// Store defines the interface for all database operations. Per-repository
// writes happen inside a WriteBatch so a failed sync leaves no partial
// state behind.
type Store interface {
	Begin(ctx context.Context) (*WriteBatch, error)
	SaveReport(ctx context.Context, report *core.Report) error
	GetReport(ctx context.Context, id int64) (*core.Report, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// Begin opens a write batch. The caller must either Commit or Rollback it.
func (s *postgresStore) Begin(ctx context.Context) (*WriteBatch, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &WriteBatch{tx: tx}, nil
}

// SaveReport inserts a generated report. Reports are write-once.
func (s *postgresStore) SaveReport(ctx context.Context, report *core.Report) error {
	query := `
		INSERT INTO weekend_reports (start_date, end_date, report_text, sent_to_slack)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		report.StartDate, report.EndDate, report.ReportText, report.SentToSlack,
	).Scan(&report.ID, &report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport retrieves a report by id.
func (s *postgresStore) GetReport(ctx context.Context, id int64) (*core.Report, error) {
	query := `
		SELECT id, start_date, end_date, report_text, sent_to_slack, created_at
		FROM weekend_reports
		WHERE id = $1`

	var r core.Report
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.StartDate, &r.EndDate, &r.ReportText, &r.SentToSlack, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report %d: %w", id, err)
	}
	return &r, nil
}

// WriteBatch scopes all writes of one repository sync to a single
// transaction: acquire with Store.Begin, perform the writes, then Commit,
// or Rollback to discard everything.
type WriteBatch struct {
	tx *sqlx.Tx
}

// Commit makes the batch's writes durable.
func (b *WriteBatch) Commit() error {
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// Rollback discards the batch. Calling it after Commit is a no-op error
// that callers may ignore, which keeps "defer batch.Rollback()" safe.
func (b *WriteBatch) Rollback() error {
	return b.tx.Rollback()
}

// GetOrCreateRepository resolves a repository by (owner, name), creating
// it with the derived full name on first encounter. Existing rows only
// get their updated_at refreshed; full_name never changes.
func (b *WriteBatch) GetOrCreateRepository(ctx context.Context, ref core.RepoRef) (*core.Repository, error) {
	var repo core.Repository
	query := `
		SELECT id, owner, name, full_name, created_at, updated_at
		FROM repositories
		WHERE owner = $1 AND name = $2`

	err := b.tx.QueryRowContext(ctx, query, ref.Owner, ref.Name).Scan(
		&repo.ID, &repo.Owner, &repo.Name, &repo.FullName, &repo.CreatedAt, &repo.UpdatedAt)
	if err == nil {
		_, err = b.tx.ExecContext(ctx, `UPDATE repositories SET updated_at = now() WHERE id = $1`, repo.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to touch repository %s: %w", ref.FullName(), err)
		}
		return &repo, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up repository %s: %w", ref.FullName(), err)
	}

	insert := `
		INSERT INTO repositories (owner, name, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, owner, name, full_name, created_at, updated_at`

	err = b.tx.QueryRowContext(ctx, insert, ref.Owner, ref.Name, ref.FullName()).Scan(
		&repo.ID, &repo.Owner, &repo.Name, &repo.FullName, &repo.CreatedAt, &repo.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository %s: %w", ref.FullName(), err)
	}
	return &repo, nil
}

// CommitBySHA looks a commit up by its hash. Returns ErrNotFound when the
// commit has never been recorded.
func (b *WriteBatch) CommitBySHA(ctx context.Context, sha string) (*core.Commit, error) {
	query := `
		SELECT id, sha, message, author_name, author_email, author_username,
		       url, committed_at, repository_id, created_at
		FROM commits
		WHERE sha = $1`

	var c core.Commit
	err := b.tx.QueryRowContext(ctx, query, sha).Scan(
		&c.ID, &c.SHA, &c.Message, &c.AuthorName, &c.AuthorEmail, &c.AuthorUsername,
		&c.URL, &c.CommittedAt, &c.RepositoryID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up commit %s: %w", sha, err)
	}
	return &c, nil
}

// InsertCommit persists a new commit record and fills in its id.
func (b *WriteBatch) InsertCommit(ctx context.Context, c *core.Commit) error {
	query := `
		INSERT INTO commits (sha, message, author_name, author_email, author_username,
		                     url, committed_at, repository_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := b.tx.QueryRowContext(ctx, query,
		c.SHA, c.Message, c.AuthorName, c.AuthorEmail, c.AuthorUsername,
		c.URL, c.CommittedAt, c.RepositoryID,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert commit %s: %w", c.SHA, err)
	}
	return nil
}

// PullRequestByNumber looks a pull request up by (repository, number).
func (b *WriteBatch) PullRequestByNumber(ctx context.Context, repositoryID int64, number int) (*core.PullRequest, error) {
	query := `
		SELECT id, number, title, body, author_username, url, state,
		       created_at, updated_at, merged_at, repository_id
		FROM pull_requests
		WHERE repository_id = $1 AND number = $2`

	var (
		pr       core.PullRequest
		body     sql.NullString
		mergedAt sql.NullTime
	)
	err := b.tx.QueryRowContext(ctx, query, repositoryID, number).Scan(
		&pr.ID, &pr.Number, &pr.Title, &body, &pr.AuthorUsername, &pr.URL, &pr.State,
		&pr.CreatedAt, &pr.UpdatedAt, &mergedAt, &pr.RepositoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up PR #%d: %w", number, err)
	}
	if body.Valid {
		pr.Body = &body.String
	}
	if mergedAt.Valid {
		pr.MergedAt = &mergedAt.Time
	}
	return &pr, nil
}

// InsertPullRequest persists a new pull request record and fills in its id.
func (b *WriteBatch) InsertPullRequest(ctx context.Context, pr *core.PullRequest) error {
	query := `
		INSERT INTO pull_requests (number, title, body, author_username, url, state,
		                           created_at, updated_at, merged_at, repository_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	err := b.tx.QueryRowContext(ctx, query,
		pr.Number, pr.Title, nullString(pr.Body), pr.AuthorUsername, pr.URL, pr.State,
		pr.CreatedAt, pr.UpdatedAt, nullTime(pr.MergedAt), pr.RepositoryID,
	).Scan(&pr.ID)
	if err != nil {
		return fmt.Errorf("failed to insert PR #%d: %w", pr.Number, err)
	}
	return nil
}

// AttachCommitSummary stores the summary for a commit. A commit has at
// most one summary; it is never rewritten.
func (b *WriteBatch) AttachCommitSummary(ctx context.Context, commitID int64, s *core.Summary) error {
	query := `
		INSERT INTO commit_summaries (commit_id, summary, impact_level)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := b.tx.QueryRowContext(ctx, query, commitID, s.Text, s.ImpactLevel).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to attach commit summary: %w", err)
	}
	return nil
}

// AttachPullRequestSummary stores the summary for a pull request.
func (b *WriteBatch) AttachPullRequestSummary(ctx context.Context, pullRequestID int64, s *core.Summary) error {
	query := `
		INSERT INTO pr_summaries (pull_request_id, summary, impact_level)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := b.tx.QueryRowContext(ctx, query, pullRequestID, s.Text, s.ImpactLevel).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to attach PR summary: %w", err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
