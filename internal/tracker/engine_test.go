package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gajesh2007/weekend-activity/internal/core"
	"github.com/Gajesh2007/weekend-activity/internal/github"
	"github.com/Gajesh2007/weekend-activity/internal/storage"
	"github.com/Gajesh2007/weekend-activity/internal/window"
)

type fakeGitHub struct {
	commits    []*core.Commit
	prs        []*core.PullRequest
	commitsErr error
	prsErr     error
}

func (f *fakeGitHub) ListCommits(_ context.Context, _, _ string, _, _ time.Time) ([]*core.Commit, error) {
	return f.commits, f.commitsErr
}

func (f *fakeGitHub) ListPullRequestsSince(_ context.Context, _, _ string, _ time.Time) ([]*core.PullRequest, error) {
	return f.prs, f.prsErr
}

func (f *fakeGitHub) ListCommitFiles(_ context.Context, _, _, _ string) ([]github.ChangedFile, error) {
	return nil, nil
}

func (f *fakeGitHub) ListPullRequestFiles(_ context.Context, _, _ string, _ int) ([]github.ChangedFile, error) {
	return nil, nil
}

func newTestEngine(t *testing.T, gh github.Client) (*Engine, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	store := storage.NewStore(sqlxDB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewEngine(store, gh, nil, logger), mock
}

var (
	testRef    = core.RepoRef{Owner: "acme", Name: "widgets"}
	testWindow = window.Window{
		Start: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
	}
)

func repoColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "owner", "name", "full_name", "created_at", "updated_at"})
}

func commitColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "sha", "message", "author_name", "author_email", "author_username",
		"url", "committed_at", "repository_id", "created_at",
	})
}

func prColumns() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "number", "title", "body", "author_username", "url", "state",
		"created_at", "updated_at", "merged_at", "repository_id",
	})
}

func TestSyncRepositoryFirstPass(t *testing.T) {
	now := testWindow.Start.Add(10 * time.Hour)
	gh := &fakeGitHub{
		commits: []*core.Commit{
			{SHA: "aaa111", Message: "Fix bug", AuthorName: "Alice", AuthorEmail: "a@x", AuthorUsername: "alice", URL: "https://x/1", CommittedAt: now},
			{SHA: "bbb222", Message: "No account", AuthorName: "Ghost", AuthorEmail: "g@x", URL: "https://x/2", CommittedAt: now},
		},
		prs: []*core.PullRequest{
			{Number: 7, Title: "Add feature", AuthorUsername: "alice", URL: "https://x/3", State: "open", CreatedAt: now, UpdatedAt: now},
		},
	}
	engine, mock := newTestEngine(t, gh)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, owner, name, full_name").
		WithArgs("acme", "widgets").
		WillReturnRows(repoColumns())
	mock.ExpectQuery("INSERT INTO repositories").
		WithArgs("acme", "widgets", "acme/widgets").
		WillReturnRows(repoColumns().AddRow(1, "acme", "widgets", "acme/widgets", time.Now(), time.Now()))

	// First commit is new; the authorless one never reaches the store.
	mock.ExpectQuery("SELECT id, sha, message").
		WithArgs("aaa111").
		WillReturnRows(commitColumns())
	mock.ExpectQuery("INSERT INTO commits").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(10, time.Now()))

	mock.ExpectQuery("SELECT id, number, title").
		WithArgs(int64(1), 7).
		WillReturnRows(prColumns())
	mock.ExpectQuery("INSERT INTO pull_requests").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))

	mock.ExpectCommit()

	batch, err := engine.SyncRepository(context.Background(), testRef, testWindow)
	require.NoError(t, err)

	require.Len(t, batch.Commits, 1)
	assert.Equal(t, "aaa111", batch.Commits[0].SHA)
	assert.Equal(t, int64(1), batch.Commits[0].RepositoryID)
	require.Len(t, batch.PullRequests, 1)
	assert.Equal(t, 7, batch.PullRequests[0].Number)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRepositorySecondPassIsIdempotent(t *testing.T) {
	now := testWindow.Start.Add(10 * time.Hour)
	gh := &fakeGitHub{
		commits: []*core.Commit{
			{SHA: "aaa111", Message: "Fix bug", AuthorUsername: "alice", URL: "https://x/1", CommittedAt: now},
		},
		prs: []*core.PullRequest{
			{Number: 7, Title: "Add feature", AuthorUsername: "alice", URL: "https://x/3", State: "open", CreatedAt: now, UpdatedAt: now},
		},
	}
	engine, mock := newTestEngine(t, gh)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, owner, name, full_name").
		WithArgs("acme", "widgets").
		WillReturnRows(repoColumns().AddRow(1, "acme", "widgets", "acme/widgets", time.Now(), time.Now()))
	mock.ExpectExec("UPDATE repositories SET updated_at").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Both records already exist, so no inserts happen.
	mock.ExpectQuery("SELECT id, sha, message").
		WithArgs("aaa111").
		WillReturnRows(commitColumns().AddRow(10, "aaa111", "Fix bug", "Alice", "a@x", "alice", "https://x/1", now, 1, time.Now()))
	mock.ExpectQuery("SELECT id, number, title").
		WithArgs(int64(1), 7).
		WillReturnRows(prColumns().AddRow(20, 7, "Add feature", nil, "alice", "https://x/3", "open", now, now, nil, 1))

	mock.ExpectCommit()

	batch, err := engine.SyncRepository(context.Background(), testRef, testWindow)
	require.NoError(t, err)

	assert.Empty(t, batch.Commits)
	assert.Empty(t, batch.PullRequests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRepositorySkipsPRsPastWindowEnd(t *testing.T) {
	gh := &fakeGitHub{
		prs: []*core.PullRequest{
			{Number: 9, Title: "Too new", AuthorUsername: "bob", CreatedAt: testWindow.End},
		},
	}
	engine, mock := newTestEngine(t, gh)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, owner, name, full_name").
		WithArgs("acme", "widgets").
		WillReturnRows(repoColumns().AddRow(1, "acme", "widgets", "acme/widgets", time.Now(), time.Now()))
	mock.ExpectExec("UPDATE repositories SET updated_at").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// No PR lookup or insert: the record is created at the window end.
	mock.ExpectCommit()

	batch, err := engine.SyncRepository(context.Background(), testRef, testWindow)
	require.NoError(t, err)

	assert.Empty(t, batch.PullRequests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyncRepositoryRollsBackOnListError(t *testing.T) {
	gh := &fakeGitHub{commitsErr: errors.New("api down")}
	engine, mock := newTestEngine(t, gh)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, owner, name, full_name").
		WithArgs("acme", "widgets").
		WillReturnRows(repoColumns().AddRow(1, "acme", "widgets", "acme/widgets", time.Now(), time.Now()))
	mock.ExpectExec("UPDATE repositories SET updated_at").
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	_, err := engine.SyncRepository(context.Background(), testRef, testWindow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchActivityStopsAtFirstFailure(t *testing.T) {
	gh := &fakeGitHub{commitsErr: errors.New("api down")}
	engine, mock := newTestEngine(t, gh)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, owner, name, full_name").
		WillReturnRows(repoColumns().AddRow(1, "acme", "widgets", "acme/widgets", time.Now(), time.Now()))
	mock.ExpectExec("UPDATE repositories SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	refs := []core.RepoRef{testRef, {Owner: "acme", Name: "gadgets"}}
	_, err := engine.FetchActivity(context.Background(), refs, testWindow)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme/widgets")
	// The second repository is never attempted: no further expectations.
	assert.NoError(t, mock.ExpectationsWereMet())
}
