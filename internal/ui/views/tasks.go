package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
	"github.com/tgienger/tasktracker/internal/tracker"
	"github.com/tgienger/tasktracker/internal/ui/keys"
	"github.com/tgienger/tasktracker/internal/ui/styles"
)

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusSearchInput FocusArea = iota
	FocusTaskList
)

// Edit form fields, in tab order
const (
	fieldTitle = iota
	fieldDesc
	fieldDue
	fieldPriority
	fieldStatus
	fieldCategories
	fieldSave
	fieldCount
)

const (
	clockLayout = "03:04:05 PM"
	dateLayout  = "Monday, January 02, 2006"
)

// TaskListView shows the active tasks with statistics, search and the edit form
type TaskListView struct {
	tasks    TaskService
	settings Settings
	username string
	styles   *styles.Styles
	keys     keys.KeyMap
	now      func() time.Time

	width  int
	height int

	list   []models.Task
	stats  models.Statistics
	clock  time.Time
	loaded bool

	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model

	// Task creation/editing
	editing        bool
	editingNew     bool
	editID         int64
	editTitle      textinput.Model
	editDesc       textarea.Model
	editDue        textinput.Model
	editPriority   int // index into models.Priorities
	editStatus     int // index into models.Statuses
	editCategories textinput.Model
	editFocusIdx   int

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	confirmingClear bool
	clearCount      int

	notice    string
	noticeErr bool

	showHelpPopup bool
}

// NewTaskListView creates the task list for a logged in user. settings may be nil.
func NewTaskListView(tasks TaskService, settings Settings, username string) *TaskListView {
	search := textinput.New()
	search.Placeholder = "Search title, description, priority, categories..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 2000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = models.DateLayout
	editDue.CharLimit = 10

	editCategories := textinput.New()
	editCategories.Placeholder = "work, home"
	editCategories.CharLimit = 500

	return &TaskListView{
		tasks:          tasks,
		settings:       settings,
		username:       username,
		styles:         styles.NewStyles(),
		keys:           keys.DefaultKeyMap(),
		now:            time.Now,
		clock:          time.Now(),
		focus:          FocusTaskList,
		searchInput:    search,
		editTitle:      editTitle,
		editDesc:       editDesc,
		editDue:        editDue,
		editCategories: editCategories,
	}
}

func (v *TaskListView) Init() tea.Cmd {
	return tea.Batch(v.loadLastSearch, v.tick())
}

// Reload refreshes the list, e.g. after a restore from the recycle bin
func (v *TaskListView) Reload() tea.Cmd {
	return v.loadTasks()
}

type tasksLoadedMsg struct {
	term  string
	tasks []models.Task
	stats models.Statistics
	err   error
}

type lastSearchMsg struct {
	term string
}

func (v *TaskListView) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func (v *TaskListView) today() models.Date {
	return models.DateOf(v.now())
}

// loadTasks searches for the term currently in the search box. The term and
// date are read here, on the update loop, not inside the command.
func (v *TaskListView) loadTasks() tea.Cmd {
	term := v.searchTerm()
	today := v.today()
	return func() tea.Msg {
		ctx := context.Background()

		tasks, err := v.tasks.Search(ctx, term)
		if err != nil {
			return tasksLoadedMsg{term: term, err: err}
		}
		stats, err := v.tasks.Statistics(ctx, today)
		if err != nil {
			return tasksLoadedMsg{term: term, err: err}
		}
		return tasksLoadedMsg{term: term, tasks: tasks, stats: stats}
	}
}

func (v *TaskListView) searchTerm() string {
	return strings.TrimSpace(v.searchInput.Value())
}

func (v *TaskListView) loadLastSearch() tea.Msg {
	if v.settings == nil {
		return lastSearchMsg{}
	}
	term, err := v.settings.GetSetting(context.Background(), lastSearchKey)
	if err != nil {
		return lastSearchMsg{}
	}
	return lastSearchMsg{term: term}
}

func (v *TaskListView) saveLastSearch() tea.Cmd {
	if v.settings == nil {
		return nil
	}
	term := v.searchInput.Value()
	return func() tea.Msg {
		if err := v.settings.SetSetting(context.Background(), lastSearchKey, term); err != nil {
			return noticeMsg{err: err}
		}
		return nil
	}
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 50)
		v.editDesc.SetWidth(inputWidth)
		return v, nil

	case clockMsg:
		prev := models.DateOf(v.clock)
		v.clock = time.Time(msg)
		// day rollover changes what is due today and overdue
		if !models.DateOf(v.clock).Equal(prev) {
			return v, tea.Batch(v.tick(), v.loadTasks())
		}
		return v, v.tick()

	case lastSearchMsg:
		v.searchInput.SetValue(msg.term)
		return v, v.loadTasks()

	case tasksLoadedMsg:
		// a reply for an earlier search term is stale
		if msg.term != v.searchTerm() {
			return v, nil
		}
		if msg.err != nil {
			v.setError(msg.err)
			return v, nil
		}
		v.list = msg.tasks
		v.stats = msg.stats
		v.loaded = true
		if v.cursor >= len(v.list) {
			v.cursor = max(0, len(v.list)-1)
		}
		v.ensureVisible()
		return v, nil

	case noticeMsg:
		if msg.err != nil {
			v.setError(msg.err)
		} else if msg.text != "" {
			v.setNotice(msg.text)
		}
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.confirmingClear {
			return v.updateConfirmClear(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, v.saveLastSearch()
		case key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			v.cursor = 0
			return v, tea.Batch(v.loadTasks(), v.saveLastSearch())
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.cursor = 0
			return v, tea.Batch(cmd, v.loadTasks())
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		if v.searchInput.Value() != "" {
			v.searchInput.Reset()
			v.cursor = 0
			return v, tea.Batch(v.loadTasks(), v.saveLastSearch())
		}
		v.notice = ""
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.list)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit), key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			v.startEditTask(task)
			return v, textinput.Blink
		}
		v.setError(fmt.Errorf("%w: select a task to update", errs.ErrNotFound))
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Title
			return v, nil
		}
		v.setError(fmt.Errorf("%w: select a task to delete", errs.ErrNotFound))
		return v, nil

	case key.Matches(msg, v.keys.Clear):
		n, err := v.tasks.CompletedCount(context.Background())
		if err != nil {
			v.setError(err)
			return v, nil
		}
		if n == 0 {
			v.setNotice("No completed tasks to clear!")
			return v, nil
		}
		v.confirmingClear = true
		v.clearCount = n
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		return v, v.searchInput.Focus()

	case key.Matches(msg, v.keys.Bin):
		return v, func() tea.Msg { return OpenRecycleBin{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.tasks.Delete(context.Background(), v.deleteTargetID); err != nil {
			v.setError(err)
			return v, v.loadTasks()
		}
		v.setNotice(fmt.Sprintf("%q moved to the recycle bin", v.deleteTargetName))
		return v, v.loadTasks()
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateConfirmClear(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingClear = false
		res, err := v.tasks.ClearCompleted(context.Background(), func(int) bool { return true })
		if err != nil {
			v.setError(err)
			return v, v.loadTasks()
		}
		switch res.Outcome {
		case tracker.ClearNothing:
			v.setNotice("No completed tasks to clear!")
		default:
			v.setNotice(fmt.Sprintf("Cleared %d completed task(s)", res.Count))
		}
		return v, v.loadTasks()
	case "n", "N", "esc":
		v.confirmingClear = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + fieldCount - 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.editFocusIdx {
		case fieldDesc:
			// newline in the description
		case fieldSave:
			return v, v.saveTask()
		default:
			v.editFocusIdx++
			v.updateEditFocus()
			return v, nil
		}

	case key.Matches(msg, v.keys.Left), key.Matches(msg, v.keys.Right), msg.String() == " ":
		step := 1
		if key.Matches(msg, v.keys.Left) {
			step = -1
		}
		switch v.editFocusIdx {
		case fieldPriority:
			v.editPriority = cycle(v.editPriority, step, len(models.Priorities))
			return v, nil
		case fieldStatus:
			v.editStatus = cycle(v.editStatus, step, len(models.Statuses))
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case fieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case fieldDue:
		v.editDue, cmd = v.editDue.Update(msg)
	case fieldCategories:
		v.editCategories, cmd = v.editCategories.Update(msg)
	}
	return v, cmd
}

func cycle(idx, step, n int) int {
	return (idx + step + n) % n
}

func (v *TaskListView) selected() (models.Task, bool) {
	if len(v.list) == 0 || v.cursor >= len(v.list) {
		return models.Task{}, false
	}
	return v.list[v.cursor], true
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

func (v *TaskListView) visibleRows() int {
	return max(v.height-16, 3)
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editID = 0
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.SetValue(v.today().String())
	v.editPriority = indexOf(models.Priorities, models.PriorityMedium, models.PriorityMedium)
	v.editStatus = indexOf(models.Statuses, models.StatusPending, models.StatusPending)
	v.editCategories.Reset()
	v.editFocusIdx = fieldTitle
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(task models.Task) {
	v.editing = true
	v.editingNew = false
	v.editID = task.ID
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	v.editDue.SetValue(task.DueDate.String())
	v.editPriority = indexOf(models.Priorities, task.Priority, models.PriorityMedium)
	v.editStatus = indexOf(models.Statuses, task.Status, models.StatusPending)
	v.editCategories.SetValue(task.Categories)
	v.editFocusIdx = fieldTitle
	v.updateEditFocus()
}

// indexOf returns the position of item, or of fallback when item is not
// one of items (rows written by older versions may hold anything)
func indexOf[T comparable](items []T, item, fallback T) int {
	for _, want := range []T{item, fallback} {
		for i, it := range items {
			if it == want {
				return i
			}
		}
	}
	return 0
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()
	v.editCategories.Blur()
	switch v.editFocusIdx {
	case fieldTitle:
		v.editTitle.Focus()
	case fieldDesc:
		v.editDesc.Focus()
	case fieldDue:
		v.editDue.Focus()
	case fieldCategories:
		v.editCategories.Focus()
	}
}

// formInput reads the edit form. An empty due date is left for the engine to default.
func (v *TaskListView) formInput() (models.TaskInput, error) {
	in := models.TaskInput{
		Title:       v.editTitle.Value(),
		Description: v.editDesc.Value(),
		Priority:    models.Priorities[v.editPriority],
		Status:      models.Statuses[v.editStatus],
		Categories:  v.editCategories.Value(),
	}
	if due := strings.TrimSpace(v.editDue.Value()); due != "" {
		d, err := models.ParseDate(due)
		if err != nil {
			return in, fmt.Errorf("%w: %w", errs.ErrValidation, err)
		}
		in.DueDate = d
	}
	return in, nil
}

// saveTask submits the form. On failure the form stays open with the notice.
func (v *TaskListView) saveTask() tea.Cmd {
	in, err := v.formInput()
	if err != nil {
		v.setError(err)
		return nil
	}

	ctx := context.Background()
	var task *models.Task
	if v.editingNew {
		task, err = v.tasks.Create(ctx, in)
	} else {
		task, err = v.tasks.Update(ctx, v.editID, in)
	}
	if err != nil {
		v.setError(err)
		return nil
	}

	if v.editingNew {
		v.setNotice(fmt.Sprintf("Added %q", task.Title))
	} else {
		v.setNotice(fmt.Sprintf("Updated %q", task.Title))
	}
	v.editing = false
	return v.loadTasks()
}

func (v *TaskListView) setNotice(text string) {
	v.notice = text
	v.noticeErr = false
}

func (v *TaskListView) setError(err error) {
	v.notice = fmt.Sprintf("%s: %v", errs.Title(err), err)
	v.noticeErr = true
}

func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderConfirm("Delete Task?",
			fmt.Sprintf("%q will be moved to the recycle bin.", v.deleteTargetName))
	}

	if v.confirmingClear {
		return v.renderConfirm("Clear Completed Tasks?",
			fmt.Sprintf("Clear %d completed task(s)?", v.clearCount))
	}

	if v.editing {
		return v.renderEditForm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	b.WriteString(v.renderStats())
	b.WriteString("\n")
	b.WriteString(v.renderSearch())
	b.WriteString("\n\n")
	if !v.loaded {
		b.WriteString(v.styles.TitleMuted.Render("Loading..."))
	} else {
		b.WriteString(v.renderTaskList())
	}
	b.WriteString("\n")
	b.WriteString(v.renderNotice())
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := s.Title.Render("Task Tracker")
	if v.username != "" {
		title += s.TitleMuted.Render("  " + v.username)
	}
	clock := s.Clock.Render(v.clock.Format(clockLayout)) + "  " + s.TitleMuted.Render(v.clock.Format(dateLayout))

	gap := contentWidth - lipgloss.Width(title) - lipgloss.Width(clock)
	if gap < 2 {
		return lipgloss.JoinVertical(lipgloss.Left, title, clock)
	}
	return title + strings.Repeat(" ", gap) + clock
}

func (v *TaskListView) renderStats() string {
	s := v.styles
	st := v.stats

	stat := func(label string, n int) string {
		return s.StatLabel.Render(label+": ") + s.StatValue.Render(fmt.Sprint(n))
	}

	overdue := s.OnTime.Render("No Overdue Tasks")
	if st.Overdue > 0 {
		overdue = s.Overdue.Render(fmt.Sprintf("Overdue: %d", st.Overdue))
	}

	parts := []string{
		stat("Total", st.Total),
		stat("Completed", st.Completed),
		stat("Pending", st.Pending),
		stat("Due Today", st.DueToday),
		stat("Due This Week", st.DueWeek),
		overdue,
	}

	contentWidth := styles.ContentWidth(v.width)
	line := strings.Join(parts, "  ")
	if lipgloss.Width(line)+4 > contentWidth && contentWidth > 0 {
		line = lipgloss.JoinVertical(lipgloss.Left,
			strings.Join(parts[:3], "  "),
			strings.Join(parts[3:], "  "),
		)
	}
	return s.Panel.Render(line)
}

func (v *TaskListView) renderSearch() string {
	s := v.styles
	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	width := clamp(styles.ContentWidth(v.width)-4, 20, 60)
	return searchStyle.Width(width).Render(v.searchInput.View())
}

type column struct {
	title string
	width int
}

func (v *TaskListView) columns() []column {
	contentWidth := max(styles.ContentWidth(v.width), 60)
	fixed := 10 + 8 + 11 // due, priority, status
	flexible := contentWidth - fixed - 12
	titleWidth := max(flexible*3/5, 12)
	return []column{
		{"Title", titleWidth},
		{"Due", 10},
		{"Priority", 8},
		{"Status", 11},
		{"Categories", max(flexible-titleWidth, 8)},
	}
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles
	cols := v.columns()

	var header []string
	for _, c := range cols {
		header = append(header, s.ColumnHeader.Width(c.width+2).Render(c.title))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	if len(v.list) == 0 {
		msg := "No tasks. Press 'n' to create one."
		if v.searchInput.Value() != "" {
			msg = "No tasks match the search."
		}
		rows = append(rows, s.TitleMuted.Render(msg))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	end := min(v.scrollY+v.visibleRows(), len(v.list))
	for i := v.scrollY; i < end; i++ {
		rows = append(rows, v.renderTaskRow(v.list[i], cols, i == v.cursor && v.focus == FocusTaskList))
	}
	if end < len(v.list) {
		rows = append(rows, s.TitleMuted.Render(fmt.Sprintf("  … %d more", len(v.list)-end)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *TaskListView) renderTaskRow(task models.Task, cols []column, selected bool) string {
	s := v.styles
	values := []string{
		task.Title,
		task.DueDate.String(),
		string(task.Priority),
		string(task.Status),
		task.Categories,
	}

	cells := make([]string, len(cols))
	for i, c := range cols {
		text := truncate(strings.ReplaceAll(values[i], "\n", " "), c.width)

		cell := s.ListItem
		switch {
		case selected:
			cell = s.ListSelected
		case task.IsComplete():
			cell = s.Completed.Padding(0, 1)
		case i == 1:
			cell = s.Due(task.DueDate, v.today()).Padding(0, 1)
		case i == 2:
			cell = s.Priority(task.Priority).Padding(0, 1)
		}
		cells[i] = cell.Width(c.width + 2).Render(text)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	fieldStyle := func(idx int) lipgloss.Style {
		if v.editFocusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	btnStyle := s.Button
	if v.editFocusIdx == fieldSave {
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(v.editTitle.View()),
		"Description:",
		fieldStyle(fieldDesc).Render(v.editDesc.View()),
		"Due date:",
		fieldStyle(fieldDue).Width(14).Render(v.editDue.View()),
		"Priority:",
		fieldStyle(fieldPriority).Render(renderOptions(s, models.Priorities, v.editPriority, s.Priority)),
		"Status:",
		fieldStyle(fieldStatus).Render(renderOptions(s, models.Statuses, v.editStatus, func(models.Status) lipgloss.Style { return s.StatValue })),
		"Categories:",
		fieldStyle(fieldCategories).Width(inputWidth).Render(v.editCategories.View()),
		"",
		btnStyle.Render(" Save "),
		v.renderNotice(),
		s.TitleMuted.Render("Tab: next • ←→: change option • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func renderOptions[T ~string](s *styles.Styles, options []T, selected int, color func(T) lipgloss.Style) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if i == selected {
			parts[i] = color(o).Render("(•) " + string(o))
		} else {
			parts[i] = s.TitleMuted.Render("( ) " + string(o))
		}
	}
	return strings.Join(parts, "  ")
}

func (v *TaskListView) renderConfirm(title, body string) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(title),
		"",
		s.TitleMuted.Render(body),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderNotice() string {
	if v.notice == "" {
		return ""
	}
	if v.noticeErr {
		return v.styles.NoticeError.Render(v.notice)
	}
	return v.styles.Notice.Render(v.notice)
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(
		fmt.Sprintf("%s new • %s edit • %s del • %s search • %s clear done • %s bin • %s quit",
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("/"),
			s.HelpKey.Render("c"),
			s.HelpKey.Render("b"),
			s.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var items []string
	for _, b := range []key.Binding{
		v.keys.Up, v.keys.Down, v.keys.New, v.keys.Edit, v.keys.Delete,
		v.keys.Search, v.keys.Clear, v.keys.Bin, v.keys.Quit,
	} {
		h := b.Help()
		items = append(items, s.HelpKey.Width(8).Render(h.Key)+s.HelpDesc.Render(h.Desc))
	}
	items = append(items, "", s.TitleMuted.Render("Press any key to close"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, items...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
