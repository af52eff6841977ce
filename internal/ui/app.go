package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tgienger/tasktracker/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewLogin View = iota
	ViewTasks
	ViewRecycleBin
)

type App struct {
	tasks    views.TaskService
	settings views.Settings
	log      *zap.Logger

	currentView View
	login       *views.LoginView
	taskList    *views.TaskListView
	recycleBin  *views.RecycleBinView
	width       int
	height      int
}

// NewApp creates the application, starting at the login screen
func NewApp(tasks views.TaskService, gate views.Gate, settings views.Settings, log *zap.Logger) *App {
	return &App{
		tasks:       tasks,
		settings:    settings,
		log:         log,
		currentView: ViewLogin,
		login:       views.NewLoginView(gate),
	}
}

func (a *App) Init() tea.Cmd {
	return a.login.Init()
}

// resize replays the last window size to a freshly shown view
func (a *App) resize() tea.Cmd {
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: a.width, Height: a.height}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Keep the task list sized while the bin is shown
		if a.taskList != nil && a.currentView != ViewTasks {
			a.taskList.Update(msg)
		}

	case views.LoggedIn:
		a.log.Info("opening task list", zap.String("username", msg.Username))
		a.currentView = ViewTasks
		a.taskList = views.NewTaskListView(a.tasks, a.settings, msg.Username)
		return a, tea.Batch(a.taskList.Init(), a.resize())

	case views.OpenRecycleBin:
		a.currentView = ViewRecycleBin
		a.recycleBin = views.NewRecycleBinView(a.tasks)
		return a, tea.Batch(a.recycleBin.Init(), a.resize())

	case views.BackToTasks:
		a.currentView = ViewTasks
		a.recycleBin = nil
		return a, tea.Batch(a.taskList.Reload(), a.resize())
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewLogin:
		_, cmd = a.login.Update(msg)
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewRecycleBin:
		// the clock keeps ticking for the task list underneath
		if a.taskList != nil && views.IsClockTick(msg) {
			_, cmd = a.taskList.Update(msg)
			return a, cmd
		}
		_, cmd = a.recycleBin.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTasks:
		if a.taskList != nil {
			return a.taskList.View()
		}
	case ViewRecycleBin:
		if a.recycleBin != nil {
			return a.recycleBin.View()
		}
	}
	return a.login.View()
}
