package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "PULSE_HTTP_TIMEOUT"
	tokenEnvKey        = "PULSE_TRACKER_TOKEN"
)

// Client is a typed HTTP client for the tracker's REST API. Every
// response body arrives under a {"data": ...} envelope which the
// client unwraps before decoding.
type Client struct {
	baseURL   string
	http      *http.Client
	authToken string
	pageLimit int
}

// NewClient creates a tracker client for the given API base URL. The
// bearer token is read from PULSE_TRACKER_TOKEN.
func NewClient(baseURL string, pageLimit int) *Client {
	if pageLimit <= 0 {
		pageLimit = 100
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken: strings.TrimSpace(os.Getenv(tokenEnvKey)),
		pageLimit: pageLimit,
	}
}

// ListWorkspaceProjects lists the non-archived projects of a workspace.
func (c *Client) ListWorkspaceProjects(ctx context.Context, workspaceGID string) ([]Project, error) {
	query := url.Values{"archived": {"false"}}
	var projects []Project
	err := c.get(ctx, "/workspaces/"+url.PathEscape(workspaceGID)+"/projects", query, &projects)
	return projects, err
}

// ListPortfolioItems lists the projects collected in a portfolio.
func (c *Client) ListPortfolioItems(ctx context.Context, portfolioGID string) ([]Project, error) {
	var projects []Project
	err := c.get(ctx, "/portfolios/"+url.PathEscape(portfolioGID)+"/items", nil, &projects)
	return projects, err
}

// ListSections lists the sections of a project.
func (c *Client) ListSections(ctx context.Context, projectGID string) ([]Section, error) {
	var sections []Section
	err := c.get(ctx, "/projects/"+url.PathEscape(projectGID)+"/sections", nil, &sections)
	return sections, err
}

// ListSectionTasks lists the tasks of a section with name, completed
// and due_on populated when the service has them.
func (c *Client) ListSectionTasks(ctx context.Context, sectionGID string) ([]Task, error) {
	query := url.Values{"opt_fields": {"name,completed,due_on"}}
	var tasks []Task
	err := c.get(ctx, "/sections/"+url.PathEscape(sectionGID)+"/tasks", query, &tasks)
	return tasks, err
}

// GetTask fetches a single task's detail, used as the secondary
// due-date lookup when the listing row omitted due_on.
func (c *Client) GetTask(ctx context.Context, taskGID string) (Task, error) {
	var task Task
	err := c.get(ctx, "/tasks/"+url.PathEscape(taskGID), nil, &task)
	return task, err
}

// ListProjectTasks lists a project's tasks flat, across all sections.
func (c *Client) ListProjectTasks(ctx context.Context, projectGID string) ([]Task, error) {
	query := url.Values{"opt_fields": {"name,completed"}}
	var tasks []Task
	err := c.get(ctx, "/projects/"+url.PathEscape(projectGID)+"/tasks", query, &tasks)
	return tasks, err
}

// ListStories fetches the activity log of a task.
func (c *Client) ListStories(ctx context.Context, taskGID string) ([]Story, error) {
	query := url.Values{"opt_fields": {"resource_subtype,type,created_at,text"}}
	var stories []Story
	err := c.get(ctx, "/tasks/"+url.PathEscape(taskGID)+"/stories", query, &stories)
	return stories, err
}

// CreateTask creates a new task.
func (c *Client) CreateTask(ctx context.Context, req TaskCreateRequest) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &task)
	return task, err
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("limit", strconv.Itoa(c.pageLimit))
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// dataEnvelope wraps every tracker payload, requests and responses
// alike.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		inner, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(dataEnvelope{Data: inner})
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	var envelope dataEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	if envelope.Data == nil {
		return &APIError{Status: resp.StatusCode, Message: "response missing data envelope"}
	}
	return json.Unmarshal(envelope.Data, out)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && len(envelope.Errors) > 0 {
		apiErr.Message = envelope.Errors[0].Message
	}
	return apiErr
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
