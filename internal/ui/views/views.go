package views

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/tasktracker/internal/models"
	"github.com/tgienger/tasktracker/internal/tracker"
)

// TaskService is the part of the task engine the views drive.
// *tracker.Service implements it.
type TaskService interface {
	Create(ctx context.Context, in models.TaskInput) (*models.Task, error)
	Update(ctx context.Context, id int64, in models.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, term string) ([]models.Task, error)
	Statistics(ctx context.Context, asOf models.Date) (models.Statistics, error)
	CompletedCount(ctx context.Context) (int, error)
	ClearCompleted(ctx context.Context, confirm tracker.Confirm) (tracker.ClearResult, error)
	Deleted(ctx context.Context) ([]models.DeletedTask, error)
	Restore(ctx context.Context, deletedID int64) (*models.Task, error)
}

// Gate is the credential check in front of the task views.
// *auth.Gate implements it.
type Gate interface {
	Register(username, password string) error
	Login(username, password string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
}

// Settings persists small UI preferences. *db.DB implements it.
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

const lastSearchKey = "last_search"

// LoggedIn is sent once the gate accepted a user
type LoggedIn struct {
	Username string
}

// OpenRecycleBin asks the app to show the recycle bin
type OpenRecycleBin struct{}

// BackToTasks asks the app to return to the task list
type BackToTasks struct{}

// noticeMsg reports the outcome of an operation in the status bar
type noticeMsg struct {
	text string
	err  error
}

type clockMsg time.Time

// IsClockTick reports whether msg is the task list's one second clock tick
func IsClockTick(msg tea.Msg) bool {
	_, ok := msg.(clockMsg)
	return ok
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// truncate shortens s to width runes, marking the cut with an ellipsis
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}
