package report

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type comment struct {
	createdAt time.Time
	text      string
}

type taskComments struct {
	index    int
	comments []comment
}

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// gatherComments lists a project's tasks flat and fans out story
// fetches over a bounded worker pool. A failed fetch contributes zero
// comments for that task only. Results are keyed by task position so
// the reduction is independent of worker completion order.
func (p *Pipeline) gatherComments(ctx context.Context, projectGID string) []string {
	tasks, err := p.api.ListProjectTasks(ctx, projectGID)
	if err != nil {
		p.log.Warn("project task listing failed; skipping comments",
			"project", projectGID, "error", err)
		return nil
	}
	if len(tasks) == 0 {
		return nil
	}

	jobs := make(chan int, len(tasks))
	results := make(chan taskComments, len(tasks))

	workers := p.opts.FetchWorkers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results <- taskComments{index: idx, comments: p.fetchComments(ctx, tasks[idx].GID)}
			}
		}()
	}

	for i := range tasks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	perTask := make([][]comment, len(tasks))
	for res := range results {
		perTask[res.index] = res.comments
	}

	var all []comment
	for _, batch := range perTask {
		all = append(all, batch...)
	}

	// Newest first; equal timestamps keep task listing order.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].createdAt.After(all[j].createdAt)
	})

	if len(all) > p.opts.CommentLimit {
		all = all[:p.opts.CommentLimit]
	}

	out := make([]string, 0, len(all))
	for _, c := range all {
		out = append(out, flattenText(c.text))
	}
	return out
}

func (p *Pipeline) fetchComments(ctx context.Context, taskGID string) []comment {
	stories, err := p.api.ListStories(ctx, taskGID)
	if err != nil {
		p.log.Warn("story fetch failed", "task", taskGID, "error", err)
		return nil
	}

	var out []comment
	for _, story := range stories {
		if !story.IsComment() {
			continue
		}
		out = append(out, comment{createdAt: story.CreatedAt, text: story.Text})
	}
	return out
}

// flattenText turns a possibly multi-line comment into one digest line.
func flattenText(text string) string {
	return strings.TrimSpace(newlineReplacer.Replace(text))
}
