package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// state represents the current phase of the session command.
type state int

const (
	stateInit       state = iota
	stateRefreshing       // renewing an existing session
	stateLoggingIn        // waiting for the login response
	stateOTP              // reading a one-time code from the user
	stateVerifying        // verifying token with server
	stateSuccess          // all done
	stateError            // fatal error
)

// statusKind distinguishes line types in the status log.
type statusKind int

const (
	statusOK   statusKind = iota
	statusWarn            // warning / non-fatal
	statusInfo            // neutral info
)

// statusLine is one row in the scrolling status log.
type statusLine struct {
	kind statusKind
	text string
}

// Model is the BubbleTea model for the session TUI.
type Model struct {
	state   state
	spinner spinner.Model
	width   int
	height  int

	// One-time code entry
	otpInput textinput.Model
	otpReply chan<- string

	// Success / error display
	account      string
	collective   string
	tokenPreview string
	dueIn        time.Duration
	errMsg       string

	// Scrolling status log shown below the main panel
	statusLines []statusLine

	// cancel aborts the running command. The program owns the terminal in
	// raw mode, so ctrl+c arrives here instead of as SIGINT.
	cancel context.CancelFunc
}

// Lipgloss styles, defined once at package level.
var (
	styleTitleBox = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 2)

	styleCodeBox = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("228")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("228")).
			Padding(0, 2)

	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleErr  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleBold = lipgloss.NewStyle().Bold(true)
)

// NewModel creates the initial TUI model. cancel, if not nil, is called
// when the user presses ctrl+c.
func NewModel(cancel context.CancelFunc) Model {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))),
	)

	in := textinput.New()
	in.Placeholder = "123456"
	in.CharLimit = 16

	return Model{
		state:    stateInit,
		spinner:  s,
		otpInput: in,
		cancel:   cancel,
	}
}

// Init starts the spinner animation.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	// ── Session lifecycle messages ───────────────────────────────────────────

	case MsgBanner:
		return m, nil

	case MsgTokenResolved:
		m.addStatus(statusInfo, "Using session token from "+msg.Origin)
		return m, nil

	case MsgTokenValid:
		m.addStatus(statusOK, "Session token is still valid")
		return m, nil

	case MsgNearExpiry:
		m.addStatus(statusWarn, fmt.Sprintf(
			"Session token nearly expired (age %s, threshold %s)",
			formatDuration(msg.Age),
			formatDuration(msg.Threshold),
		))
		return m, nil

	case MsgRefreshing:
		m.state = stateRefreshing
		m.addStatus(statusInfo, "Refreshing session...")
		return m, nil

	case MsgRefreshOK:
		m.addStatus(statusOK, "Session refreshed successfully")
		return m, nil

	case MsgRefreshFailed:
		m.addStatus(statusWarn, fmt.Sprintf("Refresh failed: %v", msg.Err))
		return m, nil

	case MsgLoggingIn:
		m.state = stateLoggingIn
		m.account = msg.Account
		m.addStatus(statusInfo, "Logging in as "+msg.Account)
		return m, nil

	case MsgSecondFactorRequired:
		m.addStatus(statusWarn, "Two-factor authentication required")
		return m, nil

	case MsgOTPRequired:
		m.state = stateOTP
		m.otpReply = msg.Reply
		m.otpInput.Reset()
		return m, m.otpInput.Focus()

	case MsgAuthSuccess:
		m.account = msg.Account
		m.collective = msg.Collective
		m.addStatus(statusOK, "Login successful!")
		return m, nil

	case MsgTokenSaved:
		m.addStatus(statusOK, "Session saved to "+msg.Path)
		return m, nil

	case MsgLoggedOut:
		m.addStatus(statusOK, "Session removed from "+msg.Path)
		return m, nil

	case MsgVerifying:
		m.state = stateVerifying
		m.addStatus(statusInfo, "Verifying token...")
		return m, nil

	case MsgVerifyOK:
		m.addStatus(statusOK, "Token verified successfully")
		return m, nil

	case MsgVerifyFailed:
		m.addStatus(statusWarn, fmt.Sprintf("Token verification failed: %v", msg.Err))
		return m, nil

	case MsgDone:
		m.tokenPreview = msg.Preview
		m.dueIn = msg.DueIn
		m.state = stateSuccess
		return m, nil

	case MsgFatal:
		m.errMsg = msg.Err.Error()
		m.state = stateError
		return m, nil
	}

	return m, nil
}

// handleKey routes key presses to code entry while it is active.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
		}
		if m.otpReply != nil {
			close(m.otpReply)
			m.otpReply = nil
		}
		return m, tea.Quit
	}

	if m.state != stateOTP || m.otpReply == nil {
		return m, nil
	}

	if msg.String() == "enter" {
		code := strings.TrimSpace(m.otpInput.Value())
		if code == "" {
			return m, nil
		}
		// reply is buffered; the send never blocks
		m.otpReply <- code
		m.otpReply = nil
		m.otpInput.Blur()
		m.state = stateLoggingIn
		m.addStatus(statusInfo, "Submitting one-time code...")
		return m, nil
	}

	var cmd tea.Cmd
	m.otpInput, cmd = m.otpInput.Update(msg)
	return m, cmd
}

// View renders the TUI.
func (m Model) View() tea.View {
	switch m.state {
	case stateSuccess:
		return tea.NewView(m.viewSuccess())
	case stateError:
		return tea.NewView(m.viewError())
	default:
		return tea.NewView(m.viewMain())
	}
}

// viewMain is shown while resolving, refreshing, logging in and verifying.
func (m Model) viewMain() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleTitleBox.Render("  Docspell Session  "))
	b.WriteString("\n\n")

	switch m.state {
	case stateOTP:
		b.WriteString(styleBold.Render("Two-factor authentication"))
		b.WriteString("\n")
		b.WriteString(styleDim.Render("Enter the code from your authenticator app:"))
		b.WriteString("\n\n")
		b.WriteString(styleCodeBox.Render(m.otpInput.View()))
		b.WriteString("\n\n")
		b.WriteString(styleDim.Render("enter to submit · ctrl+c to cancel"))
		b.WriteString("\n")

	case stateLoggingIn:
		b.WriteString(m.spinner.View())
		b.WriteString(" Logging in as " + m.account + "...\n")

	case stateRefreshing:
		b.WriteString(m.spinner.View())
		b.WriteString(" Refreshing session...\n")

	case stateVerifying:
		b.WriteString(m.spinner.View())
		b.WriteString(" Verifying token...\n")

	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" Initializing...\n")
	}

	b.WriteString(m.viewStatusLog())
	return b.String()
}

// viewSuccess is shown once a valid session is available.
func (m Model) viewSuccess() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleOK.Render("  ✓ Session ready"))
	b.WriteString("\n\n")

	if m.account != "" {
		b.WriteString(styleBold.Render("Account:        "))
		b.WriteString(m.account)
		if m.collective != "" {
			b.WriteString(styleDim.Render(" (" + m.collective + ")"))
		}
		b.WriteString("\n")
	}

	b.WriteString(styleBold.Render("Token:          "))
	b.WriteString(m.tokenPreview + "...\n")

	b.WriteString(styleBold.Render("Refresh due in: "))
	b.WriteString(formatDuration(m.dueIn) + "\n")

	b.WriteString(m.viewStatusLog())
	return b.String()
}

// viewError is shown when a fatal error occurs.
func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(styleErr.Render("  ✗ Authentication failed"))
	b.WriteString("\n\n")
	b.WriteString(styleDim.Render("  " + m.errMsg))
	b.WriteString("\n")

	b.WriteString(m.viewStatusLog())
	return b.String()
}

// viewStatusLog renders the scrolling status log.
func (m Model) viewStatusLog() string {
	if len(m.statusLines) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	for _, line := range m.statusLines {
		switch line.kind {
		case statusOK:
			b.WriteString(styleOK.Render("  ✓ " + line.text))
		case statusWarn:
			b.WriteString(styleWarn.Render("  ⚠ " + line.text))
		default:
			b.WriteString(styleDim.Render("  · " + line.text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// addStatus appends a line to the status log.
func (m *Model) addStatus(kind statusKind, text string) {
	m.statusLines = append(m.statusLines, statusLine{kind: kind, text: text})
}

// formatDuration formats a duration as "Xh Ym", "Xm Ys" or "Xs".
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d <= 0 {
		return "0s"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
