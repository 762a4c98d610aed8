package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gajesh2007/weekend-activity/internal/app"
	"github.com/Gajesh2007/weekend-activity/internal/core"
	"github.com/Gajesh2007/weekend-activity/internal/report"
	"github.com/Gajesh2007/weekend-activity/internal/slack"
	"github.com/Gajesh2007/weekend-activity/internal/window"
)

var (
	reportDate   string
	outputFormat string
	notify       bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a report of weekend activity",
	Long: `Generate a report of weekend activity across the configured
repositories. The weekend window is derived from the target date (today
when omitted) in the configured timezone.

Examples:
  weekend-activity report
  weekend-activity report --date 2024-02-05 --format slack --notify`,
	RunE: runReport,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Target date in YYYY-MM-DD format, defaults to today")
	reportCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text or slack")
	reportCmd.Flags().BoolVar(&notify, "notify", false, "Send the report to Slack (requires SLACK_WEBHOOK_URL)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format := report.Format(outputFormat)
	if format != report.FormatText && format != report.FormatSlack {
		return fmt.Errorf("invalid format %q, must be text or slack", outputFormat)
	}

	appInstance, cleanup, err := app.New(ctx, configPath)
	if err != nil {
		return err
	}
	defer cleanup()
	cfg := appInstance.Cfg

	var ref time.Time
	if reportDate != "" {
		parsed, err := time.Parse("2006-01-02", reportDate)
		if err != nil {
			return fmt.Errorf("date must be in YYYY-MM-DD format: %w", err)
		}
		// A date flag carries no zone: interpret it in the configured
		// timezone rather than converting from UTC.
		ref = window.AtZone(parsed, cfg.Location())
	}

	var notifier *slack.Notifier
	if notify {
		notifier, err = slack.NewNotifier(cfg.SlackWebhookURL, slack.Options{
			Channel:   cfg.Slack.Channel,
			Username:  cfg.Slack.Username,
			IconEmoji: cfg.Slack.IconEmoji,
		}, appInstance.Logger)
		if err != nil {
			return fmt.Errorf("--notify requires SLACK_WEBHOOK_URL: %w", err)
		}
	}

	w := window.Resolve(ref, cfg.Location())
	warnColor.Printf("Analyzing weekend activity for %s to %s\n",
		w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))

	activity, err := appInstance.Engine.FetchActivity(ctx, cfg.RepoRefs(), w)
	if err != nil {
		notifyFailure(ctx, notifier, err)
		return err
	}

	text := report.Render(activity, w, format, report.Limits{
		MaxCommitsPerUser: cfg.Summary.MaxCommitsPerUser,
		MaxPRsPerUser:     cfg.Summary.MaxPRsPerUser,
	})

	var deliveryErr error
	sent := false
	if notifier != nil && format == report.FormatSlack {
		deliveryErr = notifier.SendReport(ctx, text)
		sent = deliveryErr == nil
	}

	rec := &core.Report{
		StartDate:   w.Start,
		EndDate:     w.End,
		ReportText:  text,
		SentToSlack: sent,
	}
	if err := appInstance.Store.SaveReport(ctx, rec); err != nil {
		return err
	}

	if deliveryErr != nil {
		return deliveryErr
	}

	if sent {
		successColor.Println("Report sent to Slack!")
		return nil
	}

	boldColor.Println("\nWeekend Activity Summary")
	fmt.Println(text)
	return nil
}

// notifyFailure posts a best-effort error notice when a notifier is
// configured. The caller still returns the original error.
func notifyFailure(ctx context.Context, notifier *slack.Notifier, err error) {
	if notifier == nil {
		return
	}
	notifier.SendError(ctx, err.Error())
}
