package tracker

import "time"

// Project is one project as listed by the tracker.
type Project struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Section is a named grouping of tasks inside a project.
type Section struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

// Task is a single task row. DueOn is nil when the listing endpoint
// omitted the field or the task carries no date.
type Task struct {
	GID       string  `json:"gid"`
	Name      string  `json:"name"`
	Completed bool    `json:"completed"`
	DueOn     *string `json:"due_on"`
}

// Story is one activity-log entry on a task. Comments carry
// resource_subtype "comment"; older API versions used the type field.
type Story struct {
	ResourceSubtype string    `json:"resource_subtype"`
	Type            string    `json:"type"`
	CreatedAt       time.Time `json:"created_at"`
	Text            string    `json:"text"`
}

// IsComment reports whether the story is a user-authored comment with
// non-empty text.
func (s Story) IsComment() bool {
	if s.Text == "" {
		return false
	}
	return s.ResourceSubtype == "comment" || (s.ResourceSubtype == "" && s.Type == "comment")
}

// TaskCreateRequest is the payload for creating a task from the
// inbound listener.
type TaskCreateRequest struct {
	Name     string   `json:"name"`
	Assignee string   `json:"assignee,omitempty"`
	Projects []string `json:"projects,omitempty"`
	DueOn    string   `json:"due_on,omitempty"`
	Notes    string   `json:"notes,omitempty"`
}
