package jira

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/respparse"
	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"
	perr "tasksync/internal/platform/errors"
	exdom "tasksync/internal/services/extraction/domain"
)

// statusNames are the workflow state names tried for each status, in order
var statusNames = map[status.Status][]string{
	status.ToDo:       {"To Do", "Open", "Backlog"},
	status.InProgress: {"In Progress", "Doing"},
	status.Completed:  {"Done", "Closed", "Resolved"},
}

// Owns reports whether id belongs to the configured project
func (c *Client) Owns(id string) bool {
	return c.opts.ProjectKey != "" && ticketid.Key(id) == c.opts.ProjectKey
}

type issueFields struct {
	Project      map[string]string `json:"project"`
	Summary      string            `json:"summary"`
	Description  adfDoc            `json:"description"`
	IssueType    map[string]string `json:"issuetype"`
	Assignee     map[string]string `json:"assignee,omitempty"`
	Labels       []string          `json:"labels,omitempty"`
	TimeTracking map[string]string `json:"timetracking,omitempty"`
}

// CreateIssue creates an issue for a new task and returns its key
func (c *Client) CreateIssue(ctx context.Context, t exdom.NewTaskItem) (string, error) {
	if c.opts.ProjectKey == "" {
		return "", perr.InvalidArgf("jira: project key is not configured")
	}
	f := issueFields{
		Project:     map[string]string{"key": c.opts.ProjectKey},
		Summary:     summaryOf(t.Description),
		Description: paragraphs(issueBody(t)),
		IssueType:   map[string]string{"name": issueType(t.WorkType)},
		Labels:      labels(t),
	}
	if id, ok := c.accountFor(t.Assignee); ok {
		f.Assignee = map[string]string{"accountId": id}
	}
	if t.EstimatedTime > 0 {
		f.TimeTracking = map[string]string{"originalEstimate": fmt.Sprintf("%gh", t.EstimatedTime)}
	}

	var out struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := c.do(ctx, "POST", "/rest/api/3/issue", map[string]any{"fields": f}, &out); err != nil {
		return "", err
	}
	if out.Key == "" {
		return "", perr.Upstreamf("jira: create returned no issue key")
	}
	key, ok := ticketid.Normalize(out.Key)
	if !ok {
		return "", perr.Upstreamf("jira: unexpected issue key %q", out.Key)
	}
	return key, nil
}

type transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   struct {
		Name string `json:"name"`
	} `json:"to"`
}

// Transition moves an issue to the workflow state matching to. Already being
// in that state is not an error
func (c *Client) Transition(ctx context.Context, key string, to status.Status) error {
	path := "/rest/api/3/issue/" + url.PathEscape(key) + "/transitions"
	var list struct {
		Transitions []transition `json:"transitions"`
	}
	if err := c.do(ctx, "GET", path, nil, &list); err != nil {
		return err
	}
	tr, ok := pickTransition(list.Transitions, to)
	if !ok {
		var cur struct {
			Fields struct {
				Status struct {
					Name string `json:"name"`
				} `json:"status"`
			} `json:"fields"`
		}
		if err := c.do(ctx, "GET", "/rest/api/3/issue/"+url.PathEscape(key)+"?fields=status", nil, &cur); err == nil &&
			matchesStatus(cur.Fields.Status.Name, to) {
			return nil
		}
		return perr.Newf(perr.ErrorCodeConflict, "jira: no transition of %s leads to %s", key, to)
	}
	return c.do(ctx, "POST", path, map[string]any{"transition": map[string]string{"id": tr.ID}}, nil)
}

// UpdateDescription replaces the issue description
func (c *Client) UpdateDescription(ctx context.Context, key, description string) error {
	body := map[string]any{"fields": map[string]any{"description": paragraphs(description)}}
	return c.do(ctx, "PUT", "/rest/api/3/issue/"+url.PathEscape(key), body, nil)
}

func (c *Client) accountFor(name string) (string, bool) {
	if c.accounts == nil || name == "" || name == assignee.TBD {
		return "", false
	}
	return c.accounts.AccountID(name)
}

func pickTransition(ts []transition, to status.Status) (transition, bool) {
	for _, t := range ts {
		if matchesStatus(t.To.Name, to) || matchesStatus(t.Name, to) {
			return t, true
		}
	}
	return transition{}, false
}

func matchesStatus(name string, to status.Status) bool {
	for _, n := range statusNames[to] {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return true
		}
	}
	return false
}

func issueType(w respparse.WorkType) string {
	if w == respparse.WorkBug {
		return "Bug"
	}
	return "Task"
}

func labels(t exdom.NewTaskItem) []string {
	var out []string
	if t.Type == respparse.Coding {
		out = append(out, "coding")
	} else {
		out = append(out, "non-coding")
	}
	if t.IsFuturePlan {
		out = append(out, "future-plan")
	}
	if t.ProjectCode != "" {
		out = append(out, strings.ReplaceAll(strings.TrimSpace(t.ProjectCode), " ", "-"))
	}
	return out
}

// summaryOf is the first line, capped at Jira's 255 character limit
func summaryOf(desc string) string {
	s, _, _ := strings.Cut(strings.TrimSpace(desc), "\n")
	if r := []rune(s); len(r) > 255 {
		s = string(r[:254]) + "…"
	}
	return s
}

func issueBody(t exdom.NewTaskItem) string {
	var b strings.Builder
	b.WriteString(t.Description)
	if t.Evidence != "" {
		fmt.Fprintf(&b, "\n\nFrom the meeting (%s): %q", strings.TrimSpace(t.Speaker), t.Evidence)
	}
	if t.CreationReason != "" {
		fmt.Fprintf(&b, "\n\nExtraction: %s (confidence %.2f)", t.CreationReason, t.CreationConfidence)
	}
	return b.String()
}
