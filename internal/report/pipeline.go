package report

import (
	"context"
	"log/slog"
	"strings"

	"pulse/internal/config"
	"pulse/internal/tracker"
)

// Tracker is the slice of the tracker client the pipeline consumes.
type Tracker interface {
	ListSections(ctx context.Context, projectGID string) ([]tracker.Section, error)
	ListSectionTasks(ctx context.Context, sectionGID string) ([]tracker.Task, error)
	GetTask(ctx context.Context, taskGID string) (tracker.Task, error)
	ListProjectTasks(ctx context.Context, projectGID string) ([]tracker.Task, error)
	ListStories(ctx context.Context, taskGID string) ([]tracker.Story, error)
}

// Options are the pipeline's tunables.
type Options struct {
	SectionLabel  string
	LaunchLabel   string
	LaunchMatch   string
	DraftPatterns []string
	CommentLimit  int
	FetchWorkers  int
}

// OptionsFromConfig extracts the pipeline tunables from runtime config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SectionLabel:  cfg.SectionLabel,
		LaunchLabel:   cfg.LaunchLabel,
		LaunchMatch:   cfg.LaunchMatch,
		DraftPatterns: cfg.DraftPatterns,
		CommentLimit:  cfg.CommentLimit,
		FetchWorkers:  cfg.FetchWorkers,
	}
}

// Pipeline runs the digest aggregation for a list of projects.
type Pipeline struct {
	api  Tracker
	opts Options
	log  *slog.Logger
}

// NewPipeline creates a pipeline. A nil logger falls back to the
// default slog logger.
func NewPipeline(api Tracker, opts Options, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CommentLimit <= 0 {
		opts.CommentLimit = config.DefaultCommentLimit
	}
	if opts.FetchWorkers <= 0 {
		opts.FetchWorkers = config.DefaultFetchWorkers
	}
	return &Pipeline{api: api, opts: opts, log: logger}
}

// Run produces one summary per qualifying project, preserving the
// order of the input listing. Upstream failures degrade to empty
// values per project or per task; Run itself never fails.
func (p *Pipeline) Run(ctx context.Context, projects []tracker.Project) []ProjectSummary {
	summaries := make([]ProjectSummary, 0, len(projects))
	for _, project := range projects {
		if p.isDraft(project.Name) {
			p.log.Debug("skipping draft project", "project", project.Name)
			continue
		}
		summary, ok := p.summarize(ctx, project)
		if !ok {
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func (p *Pipeline) summarize(ctx context.Context, project tracker.Project) (ProjectSummary, bool) {
	section, ok := p.resolveSection(ctx, project)
	if !ok {
		p.log.Debug("no milestone section", "project", project.Name)
		return ProjectSummary{}, false
	}

	tasks, err := p.api.ListSectionTasks(ctx, section.GID)
	if err != nil {
		p.log.Warn("section task listing failed; skipping project",
			"project", project.Name, "section", section.GID, "error", err)
		return ProjectSummary{}, false
	}

	outcome := p.selectMilestones(ctx, tasks)
	if outcome.launched {
		p.log.Debug("already launched", "project", project.Name)
		return ProjectSummary{}, false
	}
	if !outcome.actionable {
		p.log.Debug("no open milestones", "project", project.Name)
		return ProjectSummary{}, false
	}

	return ProjectSummary{
		Project:  project.Name,
		Next:     outcome.next,
		Launch:   outcome.launch,
		Comments: p.gatherComments(ctx, project.GID),
	}, true
}

// resolveSection finds the first section whose name contains the
// configured label, case-insensitively.
func (p *Pipeline) resolveSection(ctx context.Context, project tracker.Project) (tracker.Section, bool) {
	sections, err := p.api.ListSections(ctx, project.GID)
	if err != nil {
		p.log.Warn("section listing failed; skipping project",
			"project", project.Name, "error", err)
		return tracker.Section{}, false
	}

	label := strings.ToLower(p.opts.SectionLabel)
	for _, section := range sections {
		if strings.Contains(strings.ToLower(section.Name), label) {
			return section, true
		}
	}
	return tracker.Section{}, false
}

func (p *Pipeline) isDraft(name string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range p.opts.DraftPatterns {
		pattern = strings.TrimSpace(strings.ToLower(pattern))
		if pattern == "" {
			continue
		}
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
