package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Gajesh2007/weekend-activity/internal/core"
	"github.com/Gajesh2007/weekend-activity/internal/window"
)

var testWindow = window.Window{
	Start: time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC),
}

var defaultLimits = Limits{MaxCommitsPerUser: 10, MaxPRsPerUser: 5}

func commitBy(user, message, url string) *core.Commit {
	return &core.Commit{
		SHA:            "deadbeef",
		Message:        message,
		AuthorUsername: user,
		URL:            url,
		CommittedAt:    testWindow.Start.Add(6 * time.Hour),
	}
}

func prBy(user, title, url string) *core.PullRequest {
	return &core.PullRequest{
		Number:         1,
		Title:          title,
		AuthorUsername: user,
		URL:            url,
		State:          "open",
		CreatedAt:      testWindow.Start.Add(8 * time.Hour),
	}
}

func TestRenderNoActivity(t *testing.T) {
	for _, format := range []Format{FormatText, FormatSlack} {
		got := Render(core.ActivityBatch{}, testWindow, format, defaultLimits)
		assert.Equal(t, NoActivityMessage, got, "format %s", format)
	}
}

func TestRenderTextScenario(t *testing.T) {
	activity := core.ActivityBatch{
		Commits:      []*core.Commit{commitBy("alice", "Fix bug", "https://x/1")},
		PullRequests: []*core.PullRequest{prBy("alice", "Add feature", "https://x/2")},
	}

	got := Render(activity, testWindow, FormatText, defaultLimits)

	assert.Contains(t, got, "Weekend Warriors Report")
	assert.Contains(t, got, "@alice")
	assert.Contains(t, got, "Fix bug")
	assert.Contains(t, got, "Add feature")
	assert.Contains(t, got, "https://x/1")
	assert.Contains(t, got, "https://x/2")
	assert.NotContains(t, got, "@bob")
}

func TestRenderFirstLineOnly(t *testing.T) {
	activity := core.ActivityBatch{
		Commits: []*core.Commit{commitBy("alice", "Fix bug\n\nDetails here", "https://x/1")},
	}

	got := Render(activity, testWindow, FormatText, defaultLimits)

	assert.Contains(t, got, "- Fix bug\n")
	assert.NotContains(t, got, "Details here")
}

func TestRenderAuthorOrdering(t *testing.T) {
	activity := core.ActivityBatch{
		Commits: []*core.Commit{
			commitBy("bob", "Bob work", "https://x/b"),
			commitBy("alice", "Alice work", "https://x/a"),
		},
	}

	for _, format := range []Format{FormatText, FormatSlack} {
		got := Render(activity, testWindow, format, defaultLimits)
		aliceIdx := strings.Index(got, "@alice")
		bobIdx := strings.Index(got, "@bob")
		assert.Greater(t, aliceIdx, -1)
		assert.Greater(t, bobIdx, aliceIdx, "alice must precede bob in %s format", format)
	}
}

func TestRenderSlackHyperlinks(t *testing.T) {
	activity := core.ActivityBatch{
		Commits:      []*core.Commit{commitBy("alice", "Fix bug\nmore", "https://x/1")},
		PullRequests: []*core.PullRequest{prBy("alice", "Add feature", "https://x/2")},
	}

	got := Render(activity, testWindow, FormatSlack, defaultLimits)

	assert.Contains(t, got, "🚀 *Weekend Warriors Report*")
	assert.Contains(t, got, "*@alice*")
	assert.Contains(t, got, "<https://x/1|Fix bug>")
	assert.Contains(t, got, "<https://x/2|Add feature>")
}

func TestRenderSummaries(t *testing.T) {
	commit := commitBy("alice", "Fix bug", "https://x/1")
	commit.Summary = &core.Summary{Text: "Fixes a nil deref.", ImpactLevel: core.ImpactHigh}

	activity := core.ActivityBatch{Commits: []*core.Commit{commit}}

	text := Render(activity, testWindow, FormatText, defaultLimits)
	assert.Contains(t, text, "AI Summary: Fixes a nil deref.")
	assert.Contains(t, text, "Impact: HIGH")

	slackOut := Render(activity, testWindow, FormatSlack, defaultLimits)
	assert.Contains(t, slackOut, "_Fixes a nil deref._")
	assert.Contains(t, slackOut, "Impact: HIGH")
}

func TestRenderDisplayLimits(t *testing.T) {
	var commits []*core.Commit
	for _, msg := range []string{"first", "second", "third"} {
		commits = append(commits, commitBy("alice", msg, "https://x/"+msg))
	}

	got := Render(core.ActivityBatch{Commits: commits}, testWindow, FormatText, Limits{MaxCommitsPerUser: 2, MaxPRsPerUser: 5})

	// The count line reflects the full list even though only two entries
	// are displayed.
	assert.Contains(t, got, "3 commits:")
	assert.Contains(t, got, "first")
	assert.Contains(t, got, "second")
	assert.NotContains(t, got, "third")
}

func TestRenderZeroLimitHidesEntries(t *testing.T) {
	activity := core.ActivityBatch{
		Commits: []*core.Commit{
			commitBy("alice", "one", "https://x/1"),
			commitBy("alice", "two", "https://x/2"),
		},
		PullRequests: []*core.PullRequest{prBy("alice", "A PR", "https://x/3")},
	}

	got := Render(activity, testWindow, FormatText, Limits{MaxCommitsPerUser: 0, MaxPRsPerUser: 0})

	// Counts survive, the entries themselves do not.
	assert.Contains(t, got, "2 commits:")
	assert.Contains(t, got, "1 pull requests:")
	assert.NotContains(t, got, "- one")
	assert.NotContains(t, got, "- A PR")

	negative := Render(activity, testWindow, FormatText, Limits{MaxCommitsPerUser: -1, MaxPRsPerUser: -1})
	assert.NotContains(t, negative, "- one")
}

func TestRenderCountsPerAuthor(t *testing.T) {
	activity := core.ActivityBatch{
		Commits: []*core.Commit{
			commitBy("alice", "one", "https://x/1"),
			commitBy("alice", "two", "https://x/2"),
		},
		PullRequests: []*core.PullRequest{prBy("alice", "A PR", "https://x/3")},
	}

	got := Render(activity, testWindow, FormatText, defaultLimits)
	assert.Contains(t, got, "2 commits:")
	assert.Contains(t, got, "1 pull requests:")
}
