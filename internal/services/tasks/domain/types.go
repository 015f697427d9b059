// Package domain holds the stored task model
package domain

import (
	"time"

	"tasksync/internal/core/status"
)

// Task is a stored task
type Task struct {
	ID               string        `json:"id"`
	TicketID         string        `json:"ticketId"`
	Description      string        `json:"description"`
	Status           status.Status `json:"status"`
	Assignee         string        `json:"assignee"`
	Type             string        `json:"type"`
	WorkType         string        `json:"workType"`
	IsFuturePlan     bool          `json:"isFuturePlan"`
	EstimatedHours   float64       `json:"estimatedHours"`
	TimeSpentHours   float64       `json:"timeSpentHours"`
	Priority         string        `json:"priority,omitempty"`
	StoryPoints      float64       `json:"storyPoints,omitempty"`
	ProjectCode      string        `json:"projectCode,omitempty"`
	SourceTranscript string        `json:"sourceTranscript,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// NewTask is a create request. An empty TicketID gets the next legacy id
type NewTask struct {
	TicketID         string        `json:"ticketId,omitempty"`
	Description      string        `json:"description" validate:"required,max=4000"`
	Status           status.Status `json:"status,omitempty"`
	Assignee         string        `json:"assignee"`
	Type             string        `json:"type"`
	WorkType         string        `json:"workType"`
	IsFuturePlan     bool          `json:"isFuturePlan"`
	EstimatedHours   float64       `json:"estimatedHours" validate:"gte=0"`
	TimeSpentHours   float64       `json:"timeSpentHours" validate:"gte=0"`
	Priority         string        `json:"priority,omitempty"`
	StoryPoints      float64       `json:"storyPoints,omitempty" validate:"gte=0"`
	ProjectCode      string        `json:"projectCode,omitempty"`
	SourceTranscript string        `json:"sourceTranscript,omitempty"`
}

// Filter narrows List
type Filter struct {
	Status   string `query:"status" validate:"omitempty,oneof=To-do In-progress Completed"`
	Assignee string `query:"assignee" validate:"omitempty,max=200"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=500"`
}
