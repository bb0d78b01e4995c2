// Package report implements the digest aggregation pipeline: it
// resolves each project's milestone section, selects the next open
// milestone and launch status, and gathers the most recent task
// comments across the project with a bounded concurrent fan-out.
package report

// Milestone is a named milestone with an optional calendar date.
// An empty DueOn means the milestone has no resolvable date (TBD).
type Milestone struct {
	Name  string `json:"name"`
	DueOn string `json:"due_on,omitempty"`
}

// ProjectSummary is one row of the digest. A nil Next or Launch
// renders as "none". Comments holds at most the configured number of
// entries, newest first, each normalized to a single line.
type ProjectSummary struct {
	Project  string     `json:"project"`
	Next     *Milestone `json:"next_milestone,omitempty"`
	Launch   *Milestone `json:"launch,omitempty"`
	Comments []string   `json:"comments,omitempty"`
}
