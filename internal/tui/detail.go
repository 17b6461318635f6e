package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/mfl/ghlite/internal/domain"
	"github.com/mfl/ghlite/internal/engine"
)

// DetailModel is the single-issue view: metadata and body in a scrollable
// viewport, the comment thread below, and a comment composer.
type DetailModel struct {
	// Dependencies
	engine *engine.Engine
	ctx    context.Context

	// Issue data
	issue    domain.Issue
	repo     domain.Repository
	comments []domain.Comment

	// UI components
	spinner      spinner.Model
	commentInput textarea.Model
	viewport     viewport.Model
	keymap       KeyMap

	// State
	commentMode     bool
	confirmToggle   bool // Awaiting y/n for close/reopen
	busy            bool // A mutation is in flight
	loadingComments bool
	errorMsg        string
	notice          string

	width  int
	height int
}

// NewDetailModel creates a detail view for one issue. repo is the issue's
// owning repository, resolved by the app from the snapshot.
func NewDetailModel(issue domain.Issue, repo domain.Repository, eng *engine.Engine, ctx context.Context, keymap KeyMap) DetailModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Write your comment here..."
	ta.CharLimit = 65535
	ta.SetHeight(5)
	ta.SetWidth(60) // Resized on WindowSizeMsg
	ta.ShowLineNumbers = false

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return DetailModel{
		engine:          eng,
		ctx:             ctx,
		issue:           issue,
		repo:            repo,
		spinner:         sp,
		commentInput:    ta,
		viewport:        vp,
		keymap:          keymap,
		loadingComments: true,
	}
}

// Init starts the comment fetch.
func (m DetailModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadComments(), tea.WindowSize())
}

// loadComments fetches the comment thread for this issue.
func (m DetailModel) loadComments() tea.Cmd {
	return func() tea.Msg {
		comments, err := m.engine.ListComments(m.ctx, m.repo.FullName, m.issue.Number)
		return CommentsLoadedMsg{Comments: comments, Err: err}
	}
}

// postComment submits the composer content.
func (m DetailModel) postComment(body string) tea.Cmd {
	return func() tea.Msg {
		return CommentPostedMsg{Err: m.engine.PostComment(m.ctx, m.repo.FullName, m.issue.Number, body)}
	}
}

// toggleState requests the opposite of the issue's current state. The local
// issue is not flipped here: the change only becomes visible through the
// refresh that follows a successful acknowledgment.
func (m DetailModel) toggleState() tea.Cmd {
	target := domain.StateClosed
	if m.issue.IsClosed() {
		target = domain.StateOpen
	}
	return func() tea.Msg {
		return StateChangedMsg{
			State: target,
			Err:   m.engine.SetIssueState(m.ctx, m.repo.FullName, m.issue.Number, target),
		}
	}
}

// Update handles messages and updates the model state.
func (m DetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 10
		m.commentInput.SetWidth(msg.Width - 6)
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CommentsLoadedMsg:
		m.loadingComments = false
		if msg.Err != nil {
			m.errorMsg = Describe(msg.Err)
		} else {
			m.comments = msg.Comments
			m.errorMsg = ""
		}
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case CommentPostedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errorMsg = Describe(msg.Err)
			return m, nil
		}
		// Reload the thread so the new comment shows up, and ask the app
		// for a background refresh to update the aggregate comment count.
		m.commentInput.Reset()
		m.commentMode = false
		m.notice = "Comment posted"
		m.loadingComments = true
		return m, tea.Batch(m.loadComments(), func() tea.Msg { return RequestRefreshMsg{} })

	case StateChangedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errorMsg = Describe(msg.Err)
			return m, nil
		}
		// Leave the detail view; the refresh will show the new state.
		return m, func() tea.Msg { return BackMsg{} }

	case tea.KeyMsg:
		if m.commentMode {
			return m.updateCommentMode(msg)
		}
		if m.confirmToggle {
			return m.updateConfirmToggle(msg)
		}
		return m.updateBrowsing(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DetailModel) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Back), key.Matches(msg, m.keymap.Quit):
		return m, func() tea.Msg { return BackMsg{} }

	case key.Matches(msg, m.keymap.Comment):
		m.commentMode = true
		m.errorMsg = ""
		m.notice = ""
		return m, m.commentInput.Focus()

	case key.Matches(msg, m.keymap.ToggleState):
		m.confirmToggle = true
		return m, nil

	case key.Matches(msg, m.keymap.Browser):
		if err := OpenInBrowser(m.repo, m.issue); err != nil {
			m.errorMsg = fmt.Sprintf("Failed to open browser: %v", err)
		}
		return m, nil

	case key.Matches(msg, m.keymap.Refresh):
		m.loadingComments = true
		return m, m.loadComments()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m DetailModel) updateCommentMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commentMode = false
		m.commentInput.Blur()
		return m, nil
	case "ctrl+s":
		body := strings.TrimSpace(m.commentInput.Value())
		if body == "" {
			m.errorMsg = "Comment is empty"
			return m, nil
		}
		m.busy = true
		m.errorMsg = ""
		return m, tea.Batch(m.spinner.Tick, m.postComment(body))
	}

	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return m, cmd
}

func (m DetailModel) updateConfirmToggle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmToggle = false
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, m.toggleState())
	default:
		m.confirmToggle = false
		return m, nil
	}
}

// renderContent builds the viewport body: metadata, issue body, thread.
func (m DetailModel) renderContent() string {
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("#%d %s", m.issue.Number, m.issue.Title)))
	b.WriteString("\n")

	meta := fmt.Sprintf("%s %s · %s · opened by %s · %s",
		statusDot(m.issue),
		m.issue.State,
		m.issue.RepositoryName,
		m.issue.User.Login,
		m.issue.CreatedAt.Format("2006-01-02"))
	if m.issue.ClosedAt != nil {
		meta += fmt.Sprintf(" · closed %s", m.issue.ClosedAt.Format("2006-01-02"))
	}
	b.WriteString(DimStyle.Render(meta))
	b.WriteString("\n\n")

	if m.issue.Body != nil && *m.issue.Body != "" {
		b.WriteString(wordwrap.String(*m.issue.Body, width))
	} else {
		b.WriteString(DimStyle.Render("No description."))
	}
	b.WriteString("\n\n")

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Comments (%d)", len(m.comments))))
	b.WriteString("\n")

	if m.loadingComments {
		b.WriteString(m.spinner.View() + " Loading comments...")
		return b.String()
	}

	if len(m.comments) == 0 {
		b.WriteString(DimStyle.Render("No comments yet."))
	}
	for _, comment := range m.comments {
		header := CommentAuthorStyle.Render(comment.User.Login) +
			DimStyle.Render(" · "+comment.CreatedAt.Format("2006-01-02 15:04"))
		b.WriteString(header)
		b.WriteString("\n")
		b.WriteString(wordwrap.String(comment.Body, width))
		b.WriteString("\n\n")
	}

	return b.String()
}

// View renders the model.
func (m DetailModel) View() string {
	var b strings.Builder

	b.WriteString(PanelBorderStyle.Width(m.viewport.Width + 2).Render(m.viewport.View()))
	b.WriteString("\n")

	switch {
	case m.commentMode:
		b.WriteString(FocusedPanelBorderStyle.Render(m.commentInput.View()))
		b.WriteString(HelpStyle.Render("\nctrl+s post · esc cancel"))
	case m.confirmToggle:
		action := "Close"
		if m.issue.IsClosed() {
			action = "Reopen"
		}
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("%s issue #%d? (y/n)", action, m.issue.Number)))
	case m.busy:
		b.WriteString(m.spinner.View() + " Working...")
	default:
		toggle := "x close"
		if m.issue.IsClosed() {
			toggle = "x reopen"
		}
		b.WriteString(HelpStyle.Render(fmt.Sprintf("c comment · %s · o browser · R reload · esc back", toggle)))
	}

	if m.errorMsg != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.errorMsg))
	}
	if m.notice != "" {
		b.WriteString("\n" + SuccessStyle.Render(m.notice))
	}

	return b.String()
}
