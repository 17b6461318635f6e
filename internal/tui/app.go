package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mfl/ghlite/internal/config"
	"github.com/mfl/ghlite/internal/engine"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenIssues
	ScreenRepos
	ScreenDetail
	ScreenNewIssue
	ScreenSettings
)

// AppModel is the root Bubble Tea model that manages screen transitions.
// It owns the engine and is the only place refreshes are started, so the
// single-flight rule has one enforcement point in the UI as well.
type AppModel struct {
	// Dependencies
	engine *engine.Engine
	store  *config.Store
	ctx    context.Context
	keymap KeyMap

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	issuesModel   *IssueListModel
	helpModel     HelpModel
	showHelp      bool

	spinner    spinner.Model
	refreshing bool
	lastResult *engine.RefreshResult
	statusMsg  string
	errorMsg   string

	width  int
	height int
}

// NewAppModel creates the root model.
func NewAppModel(eng *engine.Engine, store *config.Store, ctx context.Context) AppModel {
	keymap := DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return AppModel{
		engine:        eng,
		store:         store,
		ctx:           ctx,
		keymap:        keymap,
		helpModel:     NewHelpModel(keymap),
		spinner:       sp,
		currentScreen: ScreenLoading,
	}
}

// Init either starts the first sync or, on a fresh install with no token,
// drops straight into settings.
func (m AppModel) Init() tea.Cmd {
	if m.store.Load().Token == "" {
		return func() tea.Msg { return OpenSettingsMsg{} }
	}
	return tea.Batch(m.spinner.Tick, m.refresh())
}

// refresh runs one engine refresh as a background command.
func (m AppModel) refresh() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.RefreshAll(m.ctx)
		if err != nil {
			return RefreshFailedMsg{Err: err}
		}
		return RefreshDoneMsg{Result: result}
	}
}

// showIssues switches to the issue list, building it from the current
// snapshot on first use.
func (m *AppModel) showIssues() tea.Cmd {
	if m.issuesModel == nil {
		model := NewIssueListModel(nil, m.keymap)
		m.issuesModel = &model
	}
	if snap := m.engine.Snapshot(); snap != nil {
		m.issuesModel.SetIssues(snap.Issues)
	}
	m.currentScreen = ScreenIssues
	m.currentModel = *m.issuesModel
	return tea.WindowSize()
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.refreshing || m.currentScreen == ScreenLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			// Children with their own spinners also need ticks.
			if m.currentModel != nil {
				var childCmd tea.Cmd
				m.currentModel, childCmd = m.currentModel.Update(msg)
				return m, tea.Batch(cmd, childCmd)
			}
			return m, cmd
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.currentScreen == ScreenIssues && key.Matches(msg, m.keymap.Help) {
			m.showHelp = true
			return m, nil
		}
		// The loading screen has no child model, so its retry/settings
		// keys are handled here.
		if m.currentScreen == ScreenLoading {
			switch {
			case key.Matches(msg, m.keymap.Refresh):
				return m, func() tea.Msg { return RequestRefreshMsg{} }
			case key.Matches(msg, m.keymap.Settings):
				return m, func() tea.Msg { return OpenSettingsMsg{} }
			}
			return m, nil
		}

	case QuitMsg:
		return m, tea.Quit

	case RequestRefreshMsg:
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.errorMsg = ""
		return m, tea.Batch(m.spinner.Tick, m.refresh())

	case RefreshDoneMsg:
		m.refreshing = false
		m.lastResult = msg.Result
		m.errorMsg = ""
		if len(msg.Result.Skipped) > 0 {
			m.statusMsg = fmt.Sprintf("%d repositories skipped", len(msg.Result.Skipped))
		} else {
			m.statusMsg = ""
		}
		// Keep the issue list current wherever the user is; only the
		// loading screen forces a transition.
		if m.issuesModel != nil {
			m.issuesModel.SetIssues(msg.Result.Snapshot.Issues)
			if m.currentScreen == ScreenIssues {
				m.currentModel = *m.issuesModel
			}
		}
		if m.currentScreen == ScreenLoading {
			return m, m.showIssues()
		}
		return m, nil

	case RefreshFailedMsg:
		m.refreshing = false
		m.errorMsg = Describe(msg.Err)
		return m, nil

	case OpenDetailMsg:
		repo, ok := m.engine.RepositoryByName(msg.Issue.RepositoryName)
		if !ok {
			m.errorMsg = fmt.Sprintf("Repository %q is not in the current snapshot", msg.Issue.RepositoryName)
			return m, nil
		}
		m.currentScreen = ScreenDetail
		detail := NewDetailModel(msg.Issue, repo, m.engine, m.ctx, m.keymap)
		m.currentModel = detail
		return m, detail.Init()

	case OpenReposMsg:
		snap := m.engine.Snapshot()
		if snap == nil {
			return m, nil
		}
		m.currentScreen = ScreenRepos
		repos := NewRepoListModel(snap.Repositories, m.keymap)
		m.currentModel = repos
		return m, repos.Init()

	case OpenNewIssueMsg:
		snap := m.engine.Snapshot()
		if snap == nil {
			return m, nil
		}
		m.currentScreen = ScreenNewIssue
		form := NewNewIssueModel(snap.Repositories, m.engine, m.ctx)
		m.currentModel = form
		return m, form.Init()

	case OpenSettingsMsg:
		m.currentScreen = ScreenSettings
		settings := NewSettingsModel(m.store)
		m.currentModel = settings
		return m, settings.Init()

	case OpenBrowserMsg:
		if repo, ok := m.engine.RepositoryByName(msg.Issue.RepositoryName); ok {
			if err := OpenInBrowser(repo, msg.Issue); err != nil {
				m.errorMsg = fmt.Sprintf("Failed to open browser: %v", err)
			}
		}
		return m, nil

	case BackMsg:
		return m, m.showIssues()

	case IssueCreatedMsg:
		if msg.Err == nil {
			m.statusMsg = fmt.Sprintf("Issue created in %s", msg.RepoFullName)
			return m, tea.Batch(m.showIssues(), func() tea.Msg { return RequestRefreshMsg{} })
		}
		// Failure: let the form display it.

	case SettingsSavedMsg:
		if msg.Err == nil {
			m.statusMsg = "Credentials saved"
			// The engine picks the new credentials up through the store's
			// change channel; all that is left is to sync with them.
			if m.engine.Snapshot() == nil {
				m.currentScreen = ScreenLoading
				m.currentModel = nil
			} else {
				return m, tea.Batch(m.showIssues(), func() tea.Msg { return RequestRefreshMsg{} })
			}
			return m, tea.Batch(m.spinner.Tick, m.refresh())
		}
	}

	// Delegate to the current screen's model.
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		if m.currentScreen == ScreenIssues {
			if im, ok := m.currentModel.(IssueListModel); ok {
				m.issuesModel = &im
			}
		}
		return m, cmd
	}

	return m, nil
}

// View renders the current screen plus the status bar.
func (m AppModel) View() string {
	if m.showHelp {
		return m.helpModel.View(m.width)
	}

	var view string
	switch {
	case m.currentScreen == ScreenLoading:
		view = m.spinner.View() + " Syncing with GitHub..."
		if m.errorMsg != "" {
			view += "\n\n" + ErrorStyle.Render(m.errorMsg) +
				HelpStyle.Render("\nR retry · s settings · ctrl+c quit")
		}
	case m.currentModel != nil:
		view = m.currentModel.View()
	}

	if m.currentScreen == ScreenIssues || m.currentScreen == ScreenLoading {
		view += "\n" + m.statusBar()
	}
	return view
}

// statusBar renders sync and rate-limit telemetry. Telemetry is shown,
// never acted upon.
func (m AppModel) statusBar() string {
	var parts []string

	if m.refreshing {
		parts = append(parts, m.spinner.View()+"syncing")
	} else if snap := m.engine.Snapshot(); snap != nil {
		parts = append(parts, fmt.Sprintf("synced %s", snap.FetchedAt.Format("15:04:05")))
		parts = append(parts, fmt.Sprintf("%d repos", len(snap.Repositories)))
		parts = append(parts, fmt.Sprintf("%d issues", len(snap.Issues)))
	}

	if rate := m.engine.RateLimit(); rate.Limit > 0 {
		parts = append(parts, fmt.Sprintf("rate %d/%d", rate.Remaining, rate.Limit))
	}
	if m.statusMsg != "" {
		parts = append(parts, SuccessStyle.Render(m.statusMsg))
	}
	if m.errorMsg != "" && m.currentScreen != ScreenLoading {
		parts = append(parts, ErrorStyle.Render(m.errorMsg))
	}

	bar := ""
	for i, p := range parts {
		if i > 0 {
			bar += " · "
		}
		bar += p
	}
	return StatusBarStyle.Render(bar)
}
