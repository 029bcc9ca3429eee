package notificationservice

import (
	"context"
	"fmt"
	"strings"

	scannermodels "github.com/RobsonDevCode/pyninja/internal/scanner/models"
	"github.com/slack-go/slack"
)

type NotificationService interface {
	NotifyReport(ctx context.Context, report scannermodels.RunReport) error
}

// SlackNotifier posts the run summary to an incoming webhook.
type SlackNotifier struct {
	webhookUrl string
}

func NewSlackNotifier(webhookUrl string) *SlackNotifier {
	return &SlackNotifier{webhookUrl: webhookUrl}
}

func (s *SlackNotifier) NotifyReport(ctx context.Context, report scannermodels.RunReport) error {
	if s.webhookUrl == "" {
		return fmt.Errorf("slack webhook url not set")
	}

	message := &slack.WebhookMessage{Text: FormatReport(report)}
	if err := slack.PostWebhookContext(ctx, s.webhookUrl, message); err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}

	return nil
}

func FormatReport(report scannermodels.RunReport) string {
	var builder strings.Builder
	summary := report.Summary

	fmt.Fprintf(&builder, "*PyNinja Report* for `%s`\n\n", report.Metadata.ManifestPath)
	fmt.Fprintf(&builder, "*Packages*: %d\n", summary.TotalPackages)
	fmt.Fprintf(&builder, "*Vulnerabilities*: %d\n", summary.VulnerabilityCount)
	fmt.Fprintf(&builder, "*Updates available*: %d\n", summary.PackagesWithUpdates)
	fmt.Fprintf(&builder, "*Deprecated*: %d\n", summary.DeprecatedPackages)

	if len(report.Flagged.Vulnerable) > 0 {
		fmt.Fprintf(&builder, "*Vulnerable packages*: %s\n", strings.Join(report.Flagged.Vulnerable, ", "))
	}

	if report.Metadata.Partial {
		builder.WriteString("_analysis was cancelled, results are partial_\n")
	}

	return builder.String()
}
