package models

import "time"

const DefaultTaskStatus = "pending"

type Task struct {
	ID          string
	Title       string
	Description string
	Status      string
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskView is returned by create, get and update.
type TaskView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	User        string    `json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (t *Task) View() TaskView {
	return TaskView{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		User:        t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TaskListItem is a task in a listing, with its owner expanded.
// User is nil when the owning account no longer exists.
type TaskListItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	User        *Owner    `json:"user"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks []TaskListItem `json:"tasks"`
	Page  int            `json:"page"`
	Total int64          `json:"total"`
	Pages int64          `json:"pages"`
}

// TaskFilter narrows a task listing. Empty fields match everything.
type TaskFilter struct {
	UserID string
	Status string
}
