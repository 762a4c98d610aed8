// Package summary turns commit and pull-request diffs into short
// model-generated synopses with an impact classification. Everything here
// degrades softly: a missing diff, an unusable model response, or an
// upstream error produces no summary rather than a failed sync.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Gajesh2007/weekend-activity/internal/core"
	"github.com/Gajesh2007/weekend-activity/internal/github"
)

const systemRole = "You are a code review assistant."

// samplingTemperature keeps completions mildly varied, matching how the
// prompts were tuned.
const samplingTemperature = 0.7

// CompletionClient requests a single completion for a prompt.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type openAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a CompletionClient backed by the OpenAI chat
// completion API.
func NewOpenAIClient(apiKey, model string) CompletionClient {
	return &openAIClient{client: openai.NewClient(apiKey), model: model}
}

func (c *openAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRole},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: samplingTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Summarizer generates summaries for newly discovered activity.
type Summarizer struct {
	gh      github.Client
	llm     CompletionClient
	prompts *promptSet
	logger  *slog.Logger
}

// New creates a Summarizer using the given source-control and
// language-model capabilities.
func New(gh github.Client, llm CompletionClient, logger *slog.Logger) (*Summarizer, error) {
	prompts, err := loadPrompts()
	if err != nil {
		return nil, err
	}
	return &Summarizer{gh: gh, llm: llm, prompts: prompts, logger: logger}, nil
}

// SummarizeCommit produces a summary for a commit, or (nil, nil) when the
// diff is empty after filtering or the model response has no SUMMARY line.
// Only the model call itself surfaces an error; diff-fetch failures are
// logged and treated as an empty diff.
func (s *Summarizer) SummarizeCommit(ctx context.Context, repo core.RepoRef, commit *core.Commit) (*core.Summary, error) {
	files, err := s.gh.ListCommitFiles(ctx, repo.Owner, repo.Name, commit.SHA)
	if err != nil {
		s.logger.Warn("failed to fetch commit diff, skipping summary", "sha", shortSHA(commit.SHA), "error", err)
		return nil, nil
	}

	relevant := relevantFiles(files)
	if len(relevant) == 0 {
		s.logger.Debug("no relevant files in commit diff, skipping summary", "sha", shortSHA(commit.SHA))
		return nil, nil
	}

	prompt, err := s.prompts.render(commitPrompt, map[string]string{
		"Message": commit.Message,
		"Diff":    formatDiff(relevant),
	})
	if err != nil {
		return nil, err
	}

	return s.complete(ctx, prompt)
}

// SummarizePR produces a summary for a pull request, with the same soft
// failure behavior as SummarizeCommit.
func (s *Summarizer) SummarizePR(ctx context.Context, repo core.RepoRef, pr *core.PullRequest) (*core.Summary, error) {
	files, err := s.gh.ListPullRequestFiles(ctx, repo.Owner, repo.Name, pr.Number)
	if err != nil {
		s.logger.Warn("failed to fetch PR diff, skipping summary", "pr", pr.Number, "error", err)
		return nil, nil
	}

	relevant := relevantFiles(files)
	if len(relevant) == 0 {
		s.logger.Debug("no relevant files in PR diff, skipping summary", "pr", pr.Number)
		return nil, nil
	}

	body := "No description provided"
	if pr.Body != nil && *pr.Body != "" {
		body = *pr.Body
	}

	prompt, err := s.prompts.render(pullRequestPrompt, map[string]string{
		"Title": pr.Title,
		"Body":  body,
		"Diff":  formatDiff(relevant),
	})
	if err != nil {
		return nil, err
	}

	return s.complete(ctx, prompt)
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (*core.Summary, error) {
	raw, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return parseResponse(raw), nil
}

// parseResponse scans a completion for SUMMARY: and IMPACT: lines. The
// first occurrence of each prefix wins. No SUMMARY line means no summary;
// a missing IMPACT line defaults to medium.
func parseResponse(raw string) *core.Summary {
	var (
		text, impact         string
		haveText, haveImpact bool
	)
	for _, line := range strings.Split(raw, "\n") {
		if !haveText && strings.HasPrefix(line, "SUMMARY:") {
			text = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
			haveText = true
		} else if !haveImpact && strings.HasPrefix(line, "IMPACT:") {
			impact = strings.TrimSpace(strings.TrimPrefix(line, "IMPACT:"))
			haveImpact = true
		}
	}

	if text == "" {
		return nil
	}

	return &core.Summary{
		Text:        text,
		ImpactLevel: core.NormalizeImpact(impact),
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
