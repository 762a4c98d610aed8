// Package core defines the domain records shared by the tracker, storage,
// summarization, and reporting components. These are plain data structures
// with explicit foreign keys; all cross-record lookups go through the
// storage layer.
package core

import (
	"fmt"
	"strings"
	"time"
)

// RepoRef identifies a tracked repository by its owner and name.
type RepoRef struct {
	Owner string
	Name  string
}

// FullName returns the canonical "owner/name" form.
func (r RepoRef) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// ParseRepoRef parses an "owner/name" string into a RepoRef.
func ParseRepoRef(s string) (RepoRef, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, fmt.Errorf("repository must be in owner/name format, got %q", s)
	}
	return RepoRef{Owner: parts[0], Name: parts[1]}, nil
}

// Repository is a tracked repository as persisted in the store. FullName is
// derived from Owner and Name at creation time and never changes.
type Repository struct {
	ID        int64
	Owner     string
	Name      string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Commit is a single commit record, identified globally by its SHA.
// Immutable once created except for summary attachment.
type Commit struct {
	ID             int64
	SHA            string
	Message        string
	AuthorName     string
	AuthorEmail    string
	AuthorUsername string
	URL            string
	CommittedAt    time.Time
	RepositoryID   int64
	CreatedAt      time.Time

	// Summary is populated by the storage layer when one exists; it is
	// nil for records that were never summarized.
	Summary *Summary
}

// PullRequest is a pull request record, identified by (repository, number).
type PullRequest struct {
	ID             int64
	Number         int
	Title          string
	Body           *string
	AuthorUsername string
	URL            string
	State          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	MergedAt       *time.Time
	RepositoryID   int64

	Summary *Summary
}

// ImpactLevel classifies the significance of a change as judged by the
// language model.
type ImpactLevel string

const (
	ImpactLow    ImpactLevel = "low"
	ImpactMedium ImpactLevel = "medium"
	ImpactHigh   ImpactLevel = "high"
)

// NormalizeImpact maps a free-form model answer onto one of the three
// impact levels, defaulting to medium for anything unrecognized.
func NormalizeImpact(s string) ImpactLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ImpactLow
	case "high":
		return ImpactHigh
	default:
		return ImpactMedium
	}
}

// Summary is a model-generated synopsis attached 1:1 to a commit or pull
// request. Created only when summarization succeeds; never updated.
type Summary struct {
	ID          int64
	Text        string
	ImpactLevel ImpactLevel
	CreatedAt   time.Time
}

// Report is a persisted digest: the window it covers, the full rendered
// text, and whether it was delivered to the messaging sink. Write-once.
type Report struct {
	ID          int64
	StartDate   time.Time
	EndDate     time.Time
	ReportText  string
	SentToSlack bool
	CreatedAt   time.Time
}

// ActivityBatch holds the commits and pull requests collected by one fetch
// pass, across one or all repositories.
type ActivityBatch struct {
	Commits      []*Commit
	PullRequests []*PullRequest
}

// Empty reports whether the batch contains no activity at all.
func (b ActivityBatch) Empty() bool {
	return len(b.Commits) == 0 && len(b.PullRequests) == 0
}

// Merge appends another batch's records to this one.
func (b *ActivityBatch) Merge(other ActivityBatch) {
	b.Commits = append(b.Commits, other.Commits...)
	b.PullRequests = append(b.PullRequests, other.PullRequests...)
}
