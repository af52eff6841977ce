package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/models"
	"github.com/tgienger/tasktracker/internal/ui/keys"
	"github.com/tgienger/tasktracker/internal/ui/styles"
)

const deletedLayout = "2006-01-02 15:04:05"

// RecycleBinView lists deleted task snapshots and restores them
type RecycleBinView struct {
	tasks  TaskService
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	bin     []models.DeletedTask
	cursor  int
	scrollY int
	loaded  bool

	notice    string
	noticeErr bool
}

func NewRecycleBinView(tasks TaskService) *RecycleBinView {
	return &RecycleBinView{
		tasks:  tasks,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (v *RecycleBinView) Init() tea.Cmd {
	return v.loadDeleted
}

type deletedLoadedMsg struct {
	bin []models.DeletedTask
	err error
}

func (v *RecycleBinView) loadDeleted() tea.Msg {
	bin, err := v.tasks.Deleted(context.Background())
	return deletedLoadedMsg{bin: bin, err: err}
}

func (v *RecycleBinView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case deletedLoadedMsg:
		if msg.err != nil {
			v.setError(msg.err)
			return v, nil
		}
		v.bin = msg.bin
		v.loaded = true
		if v.cursor >= len(v.bin) {
			v.cursor = max(0, len(v.bin)-1)
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Bin), msg.String() == "q":
			return v, func() tea.Msg { return BackToTasks{} }
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
				v.ensureVisible()
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.bin)-1 {
				v.cursor++
				v.ensureVisible()
			}
		case key.Matches(msg, v.keys.Restore), key.Matches(msg, v.keys.Enter):
			return v, v.restoreSelected()
		}
	}

	return v, nil
}

func (v *RecycleBinView) restoreSelected() tea.Cmd {
	if len(v.bin) == 0 {
		v.setError(fmt.Errorf("%w: the recycle bin is empty", errs.ErrNotFound))
		return nil
	}

	d := v.bin[v.cursor]
	task, err := v.tasks.Restore(context.Background(), d.ID)
	if err != nil {
		v.setError(err)
		return nil
	}
	v.notice = fmt.Sprintf("Restored %q", task.Title)
	v.noticeErr = false
	return nil
}

func (v *RecycleBinView) setError(err error) {
	v.notice = fmt.Sprintf("%s: %v", errs.Title(err), err)
	v.noticeErr = true
}

func (v *RecycleBinView) visibleRows() int {
	return max(v.height-8, 3)
}

func (v *RecycleBinView) ensureVisible() {
	visible := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

func (v *RecycleBinView) View() string {
	s := v.styles
	contentWidth := max(styles.ContentWidth(v.width), 60)

	var b strings.Builder
	b.WriteString(s.Title.Render("Recycle Bin"))
	b.WriteString(s.TitleMuted.Render(fmt.Sprintf("  %d deleted task(s)", len(v.bin))))
	b.WriteString("\n\n")

	switch {
	case !v.loaded:
		b.WriteString(s.TitleMuted.Render("Loading..."))
	case len(v.bin) == 0:
		b.WriteString(s.TitleMuted.Render("Nothing here. Deleted tasks show up in the recycle bin."))
	default:
		titleWidth := max(contentWidth-19-10-8-11-12, 12)
		header := lipgloss.JoinHorizontal(lipgloss.Top,
			s.ColumnHeader.Width(titleWidth+2).Render("Title"),
			s.ColumnHeader.Width(12).Render("Due"),
			s.ColumnHeader.Width(10).Render("Priority"),
			s.ColumnHeader.Width(13).Render("Status"),
			s.ColumnHeader.Width(21).Render("Deleted"),
		)
		rows := []string{header}

		end := min(v.scrollY+v.visibleRows(), len(v.bin))
		for i := v.scrollY; i < end; i++ {
			d := v.bin[i]
			cell := s.ListItem
			if i == v.cursor {
				cell = s.ListSelected
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
				cell.Width(titleWidth+2).Render(truncate(d.Title, titleWidth)),
				cell.Width(12).Render(d.DueDate.String()),
				cell.Width(10).Render(string(d.Priority)),
				cell.Width(13).Render(string(d.Status)),
				cell.Width(21).Render(d.DeletedAt.Format(deletedLayout)),
			))
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	b.WriteString("\n")
	if v.notice != "" {
		if v.noticeErr {
			b.WriteString(s.NoticeError.Render(v.notice))
		} else {
			b.WriteString(s.Notice.Render(v.notice))
		}
	}
	b.WriteString(s.Help.Render(
		fmt.Sprintf("%s restore • %s back",
			s.HelpKey.Render("r"),
			s.HelpKey.Render("esc"),
		),
	))

	return styles.CenterView(b.String(), v.width, v.height)
}
