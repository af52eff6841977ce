package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/ui/keys"
	"github.com/tgienger/tasktracker/internal/ui/styles"
)

type loginMode int

const (
	modeLogin loginMode = iota
	modeForgot
)

// Login form focus positions
const (
	loginFocusUser = iota
	loginFocusPassword
	loginFocusLogin
	loginFocusRegister
	loginFocusCount
)

// LoginView is the credential gate shown before the task list
type LoginView struct {
	gate   Gate
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	mode     loginMode
	focusIdx int
	username textinput.Model
	password textinput.Model
	email    textinput.Model
	sending  bool

	notice    string
	noticeErr bool

	showHelpPopup bool
}

func NewLoginView(gate Gate) *LoginView {
	username := textinput.New()
	username.Placeholder = "Username"
	username.CharLimit = 100
	username.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 200
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	return &LoginView{
		gate:     gate,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		username: username,
		password: password,
		email:    email,
	}
}

func (v *LoginView) Init() tea.Cmd {
	return textinput.Blink
}

type resetSentMsg struct {
	ref string
	err error
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case resetSentMsg:
		v.sending = false
		if msg.err != nil {
			v.setNotice(fmt.Sprintf("%s: %v", errs.Title(msg.err), msg.err), true)
			return v, nil
		}
		v.mode = modeLogin
		v.updateFocus()
		v.setNotice("Reset notification sent (reference "+msg.ref+")", false)
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if msg.String() == "ctrl+c" {
			return v, tea.Quit
		}
		if v.mode == modeForgot {
			return v.updateForgot(msg)
		}
		return v.updateLogin(msg)
	}

	return v, nil
}

func (v *LoginView) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		return v, tea.Quit

	case msg.String() == "ctrl+f":
		v.mode = modeForgot
		v.email.Reset()
		v.notice = ""
		v.username.Blur()
		v.password.Blur()
		return v, v.email.Focus()

	case msg.String() == "ctrl+r":
		return v, v.register()

	case msg.String() == "?" && v.focusIdx >= loginFocusLogin:
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.Tab), msg.String() == "down":
		v.focusIdx = (v.focusIdx + 1) % loginFocusCount
		v.updateFocus()
		return v, nil

	case msg.String() == "shift+tab", msg.String() == "up":
		v.focusIdx = (v.focusIdx + loginFocusCount - 1) % loginFocusCount
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focusIdx {
		case loginFocusUser:
			v.focusIdx++
			v.updateFocus()
			return v, nil
		case loginFocusRegister:
			return v, v.register()
		default:
			return v, v.login()
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case loginFocusUser:
		v.username, cmd = v.username.Update(msg)
	case loginFocusPassword:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) updateForgot(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.sending {
		return v, nil
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = modeLogin
		v.email.Blur()
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		email := strings.TrimSpace(v.email.Value())
		v.sending = true
		v.setNotice("Sending...", false)
		return v, func() tea.Msg {
			ref, err := v.gate.ForgotPassword(context.Background(), email)
			return resetSentMsg{ref: ref, err: err}
		}
	}

	var cmd tea.Cmd
	v.email, cmd = v.email.Update(msg)
	return v, cmd
}

func (v *LoginView) login() tea.Cmd {
	username := v.username.Value()
	if err := v.gate.Login(username, v.password.Value()); err != nil {
		v.setNotice(errs.Title(err)+": invalid username or password", true)
		v.password.Reset()
		return nil
	}
	v.notice = ""
	return func() tea.Msg { return LoggedIn{Username: username} }
}

func (v *LoginView) register() tea.Cmd {
	username := v.username.Value()
	if err := v.gate.Register(username, v.password.Value()); err != nil {
		v.setNotice(fmt.Sprintf("%s: %v", errs.Title(err), err), true)
		return nil
	}
	v.setNotice("Registered "+username+", you can now log in", false)
	v.focusIdx = loginFocusLogin
	v.updateFocus()
	return nil
}

func (v *LoginView) setNotice(text string, isErr bool) {
	v.notice = text
	v.noticeErr = isErr
}

func (v *LoginView) updateFocus() {
	v.username.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case loginFocusUser:
		v.username.Focus()
	case loginFocusPassword:
		v.password.Focus()
	}
}

func (v *LoginView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	var form string
	if v.mode == modeForgot {
		form = v.renderForgot()
	} else {
		form = v.renderLogin()
	}

	contentWidth := styles.ContentWidth(v.width)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *LoginView) renderLogin() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-6, 20, 40)

	userStyle, passStyle := s.Input, s.Input
	loginBtn, registerBtn := s.Button, s.Button
	switch v.focusIdx {
	case loginFocusUser:
		userStyle = s.InputFocused
	case loginFocusPassword:
		passStyle = s.InputFocused
	case loginFocusLogin:
		loginBtn = s.ButtonFocused
	case loginFocusRegister:
		registerBtn = s.ButtonFocused
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Task Tracker"),
		"",
		"Username:",
		userStyle.Width(inputWidth).Render(v.username.View()),
		"",
		"Password:",
		passStyle.Width(inputWidth).Render(v.password.View()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			loginBtn.Render(" Login "),
			" ",
			registerBtn.Render(" Register "),
		),
		"",
		v.renderNotice(),
		s.TitleMuted.Render("Tab: next • ↵: login • Ctrl+R: register • Ctrl+F: forgot password"),
	)
}

func (v *LoginView) renderForgot() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-6, 20, 40)

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Forgot Password"),
		"",
		s.TitleMuted.Render("Credentials are stored on this machine only."),
		s.TitleMuted.Render("We can send a notification, but nothing is reset."),
		"",
		"Email:",
		s.InputFocused.Width(inputWidth).Render(v.email.View()),
		"",
		v.renderNotice(),
		s.TitleMuted.Render("↵: send • Esc: back"),
	)
}

func (v *LoginView) renderNotice() string {
	if v.notice == "" {
		return ""
	}
	if v.noticeErr {
		return v.styles.NoticeError.Render(v.notice)
	}
	return v.styles.Notice.Render(v.notice)
}

func (v *LoginView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("tab") + "     next field",
		s.HelpKey.Render("↵") + "       login",
		s.HelpKey.Render("ctrl+r") + "  register",
		s.HelpKey.Render("ctrl+f") + "  forgot password",
		s.HelpKey.Render("esc") + "     quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Panel.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
