package format

import (
	"fmt"
	"strings"
	"time"

	"pulse/internal/report"
)

// NothingToReport is rendered when no project qualifies for the digest.
const NothingToReport = "No projects with open critical milestones this period."

const (
	noneSentinel = "none"
	tbdSentinel  = "TBD"
)

// Digest renders the summaries as the webhook message body: a dated
// header, one markdown table row per project, and each project's most
// recent comments.
func Digest(summaries []report.ProjectSummary, now time.Time) string {
	header := fmt.Sprintf("*Critical milestone digest for %s*", now.Format("2006-01-02"))
	if len(summaries) == 0 {
		return header + "\n\n" + NothingToReport
	}

	var b strings.Builder
	b.WriteString(header + "\n\n")
	b.WriteString("| Project | Next Milestone | Due Date | Launch |\n")
	b.WriteString("| ------- | -------------- | -------- | ------ |\n")
	for _, summary := range summaries {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			summary.Project,
			milestoneName(summary.Next),
			milestoneDate(summary.Next),
			milestoneDate(summary.Launch))
	}

	for _, summary := range summaries {
		if len(summary.Comments) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n*%s, recent activity:*\n", summary.Project)
		for _, text := range summary.Comments {
			b.WriteString("- " + text + "\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func milestoneName(m *report.Milestone) string {
	if m == nil {
		return noneSentinel
	}
	return m.Name
}

func milestoneDate(m *report.Milestone) string {
	if m == nil {
		return noneSentinel
	}
	if m.DueOn == "" {
		return tbdSentinel
	}
	return m.DueOn
}
