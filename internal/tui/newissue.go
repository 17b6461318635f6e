package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfl/ghlite/internal/domain"
	"github.com/mfl/ghlite/internal/engine"
)

// newIssueStage tracks the two-step flow: pick a repository, then write.
type newIssueStage int

const (
	stagePickRepo newIssueStage = iota
	stageCompose
)

// NewIssueModel is the create-issue form.
type NewIssueModel struct {
	engine *engine.Engine
	ctx    context.Context

	stage newIssueStage
	repo  domain.Repository

	repoList  list.Model
	titleIn   textinput.Model
	bodyIn    textarea.Model
	spinner   spinner.Model
	bodyFocus bool // False: title focused
	busy      bool
	errorMsg  string
}

// NewNewIssueModel creates the form over the snapshot's repositories.
func NewNewIssueModel(repos []domain.Repository, eng *engine.Engine, ctx context.Context) NewIssueModel {
	items := make([]list.Item, len(repos))
	for i, repo := range repos {
		items[i] = repoItem{repo: repo}
	}
	l := list.New(items, repoDelegate{}, 80, 20)
	l.Title = "New issue — select a repository"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	ti := textinput.New()
	ti.Placeholder = "Issue title"
	ti.CharLimit = 256
	ti.Width = 60

	ta := textarea.New()
	ta.Placeholder = "Describe the issue (optional)..."
	ta.CharLimit = 65535
	ta.SetHeight(8)
	ta.SetWidth(60)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return NewIssueModel{
		engine:   eng,
		ctx:      ctx,
		stage:    stagePickRepo,
		repoList: l,
		titleIn:  ti,
		bodyIn:   ta,
		spinner:  sp,
	}
}

// Init initializes the model.
func (m NewIssueModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// submit creates the issue.
func (m NewIssueModel) submit(title, body string) tea.Cmd {
	fullName := m.repo.FullName
	return func() tea.Msg {
		return IssueCreatedMsg{
			RepoFullName: fullName,
			Err:          m.engine.CreateIssue(m.ctx, fullName, title, body, nil),
		}
	}
}

// Update handles messages and updates the model state.
func (m NewIssueModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.repoList.SetWidth(msg.Width - 2)
		m.repoList.SetHeight(msg.Height - 4)
		m.titleIn.Width = msg.Width - 8
		m.bodyIn.SetWidth(msg.Width - 8)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case IssueCreatedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errorMsg = Describe(msg.Err)
			return m, nil
		}
		// The app handles the success: back to the list plus a refresh.
		return m, nil

	case tea.KeyMsg:
		if m.stage == stagePickRepo {
			return m.updatePickRepo(msg)
		}
		return m.updateCompose(msg)
	}

	return m, nil
}

func (m NewIssueModel) updatePickRepo(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.repoList.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return BackMsg{} }
		case "enter":
			if item, ok := m.repoList.SelectedItem().(repoItem); ok {
				m.repo = item.repo
				m.stage = stageCompose
				return m, m.titleIn.Focus()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.repoList, cmd = m.repoList.Update(msg)
	return m, cmd
}

func (m NewIssueModel) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		// Back to the repository picker, keeping the draft.
		m.stage = stagePickRepo
		m.titleIn.Blur()
		m.bodyIn.Blur()
		m.bodyFocus = false
		return m, nil

	case "tab", "shift+tab":
		m.bodyFocus = !m.bodyFocus
		if m.bodyFocus {
			m.titleIn.Blur()
			return m, m.bodyIn.Focus()
		}
		m.bodyIn.Blur()
		return m, m.titleIn.Focus()

	case "ctrl+s":
		title := strings.TrimSpace(m.titleIn.Value())
		if title == "" {
			m.errorMsg = "Title is required"
			return m, nil
		}
		m.busy = true
		m.errorMsg = ""
		return m, tea.Batch(m.spinner.Tick, m.submit(title, strings.TrimSpace(m.bodyIn.Value())))
	}

	var cmd tea.Cmd
	if m.bodyFocus {
		m.bodyIn, cmd = m.bodyIn.Update(msg)
	} else {
		m.titleIn, cmd = m.titleIn.Update(msg)
	}
	return m, cmd
}

// View renders the model.
func (m NewIssueModel) View() string {
	if m.stage == stagePickRepo {
		return m.repoList.View() + HelpStyle.Render("\nenter select · esc cancel")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("New issue in %s", m.repo.FullName)))
	b.WriteString("\n")
	b.WriteString(m.titleIn.View())
	b.WriteString("\n\n")
	b.WriteString(m.bodyIn.View())
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spinner.View() + " Creating issue...")
	} else {
		b.WriteString(HelpStyle.Render("tab switch field · ctrl+s create · esc back"))
	}
	if m.errorMsg != "" {
		b.WriteString("\n" + ErrorStyle.Render(m.errorMsg))
	}
	return b.String()
}
