package report

import (
	"context"
	"sort"
	"strings"

	"pulse/internal/config"
	"pulse/internal/tracker"
)

type milestoneOutcome struct {
	next   *Milestone
	launch *Milestone
	// launched marks a completed terminal milestone: the project is
	// excluded from the digest entirely.
	launched bool
	// actionable is set when the section has at least one open,
	// non-terminal milestone.
	actionable bool
}

// selectMilestones resolves the launch milestone and the next open
// milestone from a section's task list. Undated tasks do not compete
// for "next"; ties on the earliest date keep listing order.
func (p *Pipeline) selectMilestones(ctx context.Context, tasks []tracker.Task) milestoneOutcome {
	var out milestoneOutcome

	launchIdx := -1
	for i, task := range tasks {
		if p.matchesLaunch(task.Name) {
			launchIdx = i
			break
		}
	}
	if launchIdx >= 0 {
		launchTask := tasks[launchIdx]
		if launchTask.Completed {
			out.launched = true
			return out
		}
		out.launch = &Milestone{
			Name:  launchTask.Name,
			DueOn: p.resolveDueDate(ctx, launchTask),
		}
	}

	type candidate struct {
		name string
		due  string
	}
	var candidates []candidate
	for i, task := range tasks {
		if task.Completed || i == launchIdx {
			continue
		}
		out.actionable = true
		due := p.resolveDueDate(ctx, task)
		if due == "" {
			continue
		}
		candidates = append(candidates, candidate{name: task.Name, due: due})
	}

	// ISO-8601 dates compare correctly as strings.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].due < candidates[j].due
	})

	if len(candidates) > 0 {
		out.next = &Milestone{Name: candidates[0].name, DueOn: candidates[0].due}
	}
	return out
}

func (p *Pipeline) matchesLaunch(name string) bool {
	if p.opts.LaunchLabel == "" {
		return false
	}
	if p.opts.LaunchMatch == config.LaunchMatchSubstring {
		return strings.Contains(strings.ToLower(name), strings.ToLower(p.opts.LaunchLabel))
	}
	return strings.EqualFold(name, p.opts.LaunchLabel)
}

// resolveDueDate returns the task's due date, issuing one secondary
// detail fetch when the listing row omitted it. A failed fetch means
// the task has no date, never an error.
func (p *Pipeline) resolveDueDate(ctx context.Context, task tracker.Task) string {
	if task.DueOn != nil {
		return *task.DueOn
	}

	detail, err := p.api.GetTask(ctx, task.GID)
	if err != nil {
		p.log.Warn("due date fetch failed", "task", task.GID, "error", err)
		return ""
	}
	if detail.DueOn == nil {
		return ""
	}
	return *detail.DueOn
}
