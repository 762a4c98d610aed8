// Package report groups collected activity by contributor and renders the
// digest. Rendering is a pure function of the activity batch, the window,
// and the display limits, so identical inputs always produce identical
// output.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Gajesh2007/weekend-activity/internal/core"
	"github.com/Gajesh2007/weekend-activity/internal/window"
)

// Format selects the digest output style.
type Format string

const (
	// FormatText is the plain-text digest.
	FormatText Format = "text"
	// FormatSlack is the Slack mrkdwn digest.
	FormatSlack Format = "slack"
)

// NoActivityMessage is returned when the window had no activity at all.
const NoActivityMessage = "No weekend activity to report! 😴"

// Limits bounds how many records are displayed per contributor. The
// per-contributor count lines still reflect the full totals. A limit of
// zero (or less) hides the record lines entirely, leaving just the count.
type Limits struct {
	MaxCommitsPerUser int
	MaxPRsPerUser     int
}

type userActivity struct {
	commits []*core.Commit
	prs     []*core.PullRequest
}

// Render produces the digest for an activity batch in the chosen format.
func Render(activity core.ActivityBatch, w window.Window, format Format, limits Limits) string {
	if activity.Empty() {
		return NoActivityMessage
	}

	byUser := groupByUser(activity)
	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	if format == FormatSlack {
		return renderSlack(byUser, users, w, limits)
	}
	return renderText(byUser, users, w, limits)
}

func groupByUser(activity core.ActivityBatch) map[string]*userActivity {
	byUser := make(map[string]*userActivity)
	get := func(username string) *userActivity {
		ua, ok := byUser[username]
		if !ok {
			ua = &userActivity{}
			byUser[username] = ua
		}
		return ua
	}

	for _, c := range activity.Commits {
		ua := get(c.AuthorUsername)
		ua.commits = append(ua.commits, c)
	}
	for _, pr := range activity.PullRequests {
		ua := get(pr.AuthorUsername)
		ua.prs = append(ua.prs, pr)
	}
	return byUser
}

func renderText(byUser map[string]*userActivity, users []string, w window.Window, limits Limits) string {
	lines := []string{
		"Weekend Warriors Report",
		fmt.Sprintf("Activity from %s to %s\n", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339)),
	}

	for _, username := range users {
		ua := byUser[username]
		lines = append(lines, fmt.Sprintf("\n👤 @%s", username))

		if len(ua.commits) > 0 {
			lines = append(lines, fmt.Sprintf("  • %d commits:", len(ua.commits)))
			for _, c := range capCommits(ua.commits, limits.MaxCommitsPerUser) {
				lines = append(lines, fmt.Sprintf("    - %s", firstLine(c.Message)))
				lines = append(lines, fmt.Sprintf("      %s", c.URL))
				if c.Summary != nil {
					lines = append(lines, fmt.Sprintf("      AI Summary: %s", c.Summary.Text))
					lines = append(lines, fmt.Sprintf("      Impact: %s", strings.ToUpper(string(c.Summary.ImpactLevel))))
				}
			}
		}

		if len(ua.prs) > 0 {
			lines = append(lines, fmt.Sprintf("  • %d pull requests:", len(ua.prs)))
			for _, pr := range capPRs(ua.prs, limits.MaxPRsPerUser) {
				lines = append(lines, fmt.Sprintf("    - %s", pr.Title))
				lines = append(lines, fmt.Sprintf("      %s", pr.URL))
				if pr.Summary != nil {
					lines = append(lines, fmt.Sprintf("      AI Summary: %s", pr.Summary.Text))
					lines = append(lines, fmt.Sprintf("      Impact: %s", strings.ToUpper(string(pr.Summary.ImpactLevel))))
				}
			}
		}
	}

	return strings.Join(lines, "\n")
}

func renderSlack(byUser map[string]*userActivity, users []string, w window.Window, limits Limits) string {
	lines := []string{
		"🚀 *Weekend Warriors Report*",
		fmt.Sprintf("_Activity from %s to %s_\n", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339)),
	}

	for _, username := range users {
		ua := byUser[username]
		lines = append(lines, fmt.Sprintf("\n👤 *@%s*", username))

		if len(ua.commits) > 0 {
			lines = append(lines, fmt.Sprintf("  • %d commits:", len(ua.commits)))
			for _, c := range capCommits(ua.commits, limits.MaxCommitsPerUser) {
				lines = append(lines, fmt.Sprintf("    - <%s|%s>", c.URL, firstLine(c.Message)))
				if c.Summary != nil {
					lines = append(lines, fmt.Sprintf("      _%s_", c.Summary.Text))
					lines = append(lines, fmt.Sprintf("      Impact: %s", strings.ToUpper(string(c.Summary.ImpactLevel))))
				}
			}
		}

		if len(ua.prs) > 0 {
			lines = append(lines, fmt.Sprintf("  • %d pull requests:", len(ua.prs)))
			for _, pr := range capPRs(ua.prs, limits.MaxPRsPerUser) {
				lines = append(lines, fmt.Sprintf("    - <%s|%s>", pr.URL, pr.Title))
				if pr.Summary != nil {
					lines = append(lines, fmt.Sprintf("      _%s_", pr.Summary.Text))
					lines = append(lines, fmt.Sprintf("      Impact: %s", strings.ToUpper(string(pr.Summary.ImpactLevel))))
				}
			}
		}
	}

	return strings.Join(lines, "\n")
}

// firstLine keeps only the first line of a commit message.
func firstLine(message string) string {
	if i := strings.Index(message, "\n"); i >= 0 {
		return message[:i]
	}
	return message
}

func capCommits(commits []*core.Commit, max int) []*core.Commit {
	if max < 0 {
		max = 0
	}
	if len(commits) > max {
		return commits[:max]
	}
	return commits
}

func capPRs(prs []*core.PullRequest, max int) []*core.PullRequest {
	if max < 0 {
		max = 0
	}
	if len(prs) > max {
		return prs[:max]
	}
	return prs
}
