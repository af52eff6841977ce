package models

import (
	"strings"
	"time"
)

// Priority of a task
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the priorities in display order
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Status of a task. Any status may change to any other.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusComplete   Status = "Complete"
)

// Statuses lists the statuses in display order
var Statuses = []Status{StatusPending, StatusInProgress, StatusComplete}

// ParsePriority matches s case-insensitively against the known priorities
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, true
		}
	}
	return "", false
}

// ParseStatus matches s case-insensitively against the known statuses.
// "in-progress" and "in_progress" are accepted for command-line use.
func ParseStatus(s string) (Status, bool) {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(s))
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Task is an active task
type Task struct {
	ID          int64    `db:"id" json:"id"`
	Title       string   `db:"title" json:"title"`
	Description string   `db:"description" json:"description"`
	DueDate     Date     `db:"due_date" json:"due_date"`
	Priority    Priority `db:"priority" json:"priority"`
	Status      Status   `db:"status" json:"status"`
	Categories  string   `db:"categories" json:"categories"`
}

// IsComplete reports whether the task is done
func (t Task) IsComplete() bool {
	return t.Status == StatusComplete
}

// Tags splits the comma-separated categories into trimmed, non-empty tags
func (t Task) Tags() []string {
	return splitTags(t.Categories)
}

// DeletedTask is a recycle-bin snapshot. It has no link to the id of the
// task it was copied from.
type DeletedTask struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	DueDate     Date      `db:"due_date" json:"due_date"`
	Priority    Priority  `db:"priority" json:"priority"`
	Status      Status    `db:"status" json:"status"`
	Categories  string    `db:"categories" json:"categories"`
	DeletedAt   time.Time `db:"deleted_date" json:"deleted_date"`
}

// TaskInput carries the user-editable fields for create and update
type TaskInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description" validate:"max=2000"`
	DueDate     Date     `json:"due_date"`
	Priority    Priority `json:"priority" validate:"oneof=High Medium Low"`
	Status      Status   `json:"status" validate:"oneof=Pending 'In Progress' Complete"`
	Categories  string   `json:"categories" validate:"max=500"`
}

// InputOf returns the editable fields of t
func InputOf(t Task) TaskInput {
	return TaskInput{
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Status:      t.Status,
		Categories:  t.Categories,
	}
}

// Statistics is the aggregate shown next to the task list.
// Pending counts every task that is not Complete, including In Progress.
type Statistics struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
	DueToday  int `json:"due_today"`
	DueWeek   int `json:"due_week"`
	Overdue   int `json:"overdue"`
}

func splitTags(s string) []string {
	var tags []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
