package tui

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/mfl/ghlite/internal/domain"
)

// stateFilter selects which issues the list shows.
type stateFilter int

const (
	filterOpen stateFilter = iota
	filterClosed
	filterAll
)

func (f stateFilter) String() string {
	switch f {
	case filterOpen:
		return "open"
	case filterClosed:
		return "closed"
	default:
		return "all"
	}
}

func (f stateFilter) matches(issue domain.Issue) bool {
	switch f {
	case filterOpen:
		return issue.IsOpen()
	case filterClosed:
		return issue.IsClosed()
	default:
		return true
	}
}

// issueItem wraps a domain.Issue for use in bubbles/list.
type issueItem struct {
	issue domain.Issue
}

func (i issueItem) FilterValue() string {
	return i.issue.Title + " " + i.issue.RepositoryName
}

func (i issueItem) title() string {
	return fmt.Sprintf("%s #%d %s", statusDot(i.issue), i.issue.Number, i.issue.Title)
}

func (i issueItem) description() string {
	return fmt.Sprintf("%s · %s · %s · %d comments",
		i.issue.RepositoryName,
		i.issue.User.Login,
		i.issue.UpdatedAt.Format("2006-01-02 15:04"),
		i.issue.Comments)
}

// issueDelegate is a custom item delegate for issue items.
type issueDelegate struct{}

func (d issueDelegate) Height() int                             { return 2 }
func (d issueDelegate) Spacing() int                            { return 1 }
func (d issueDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d issueDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(issueItem)
	if !ok {
		return
	}

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> ")+i.title())
		fmt.Fprint(w, "\n  "+DimStyle.Render(i.description()))
	} else {
		fmt.Fprint(w, "  "+i.title())
		fmt.Fprint(w, "\n  "+DimStyle.Render(i.description()))
	}
}

// IssueListModel is the aggregated issue list across all repositories.
type IssueListModel struct {
	list   list.Model
	keymap KeyMap

	issues []domain.Issue // full aggregate, unsorted ownership stays with the snapshot
	filter stateFilter

	width  int
	height int
}

// NewIssueListModel creates the issue list from a snapshot's aggregate.
func NewIssueListModel(issues []domain.Issue, keymap KeyMap) IssueListModel {
	m := IssueListModel{
		keymap: keymap,
		issues: issues,
		filter: filterOpen,
	}

	l := list.New(nil, issueDelegate{}, 80, 20)
	l.Title = "Issues"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle
	m.list = l
	m.rebuild()

	return m
}

// SetIssues replaces the aggregate after a refresh.
func (m *IssueListModel) SetIssues(issues []domain.Issue) {
	m.issues = issues
	m.rebuild()
}

// rebuild applies the state filter and display order. Ordering is a display
// concern: the engine hands the aggregate over untouched and the list shows
// it newest-first.
func (m *IssueListModel) rebuild() {
	visible := make([]domain.Issue, 0, len(m.issues))
	for _, issue := range m.issues {
		if m.filter.matches(issue) {
			visible = append(visible, issue)
		}
	}
	sort.SliceStable(visible, func(a, b int) bool {
		return visible[a].UpdatedAt.After(visible[b].UpdatedAt)
	})

	items := make([]list.Item, len(visible))
	for i, issue := range visible {
		items[i] = issueItem{issue: issue}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Issues (%s: %d)", m.filter, len(items))
}

// Selected returns the issue under the cursor.
func (m IssueListModel) Selected() (domain.Issue, bool) {
	item, ok := m.list.SelectedItem().(issueItem)
	if !ok {
		return domain.Issue{}, false
	}
	return item.issue, true
}

// Init initializes the model.
func (m IssueListModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m IssueListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 4) // Leave room for the status bar
		return m, nil

	case tea.KeyMsg:
		// While the fuzzy filter prompt is active, keys belong to it.
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, func() tea.Msg { return QuitMsg{} }

		case key.Matches(msg, m.keymap.Open):
			if issue, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenDetailMsg{Issue: issue} }
			}

		case key.Matches(msg, m.keymap.CycleFilter):
			m.filter = (m.filter + 1) % 3
			m.rebuild()
			return m, nil

		case key.Matches(msg, m.keymap.NewIssue):
			return m, func() tea.Msg { return OpenNewIssueMsg{} }

		case key.Matches(msg, m.keymap.Repos):
			return m, func() tea.Msg { return OpenReposMsg{} }

		case key.Matches(msg, m.keymap.Settings):
			return m, func() tea.Msg { return OpenSettingsMsg{} }

		case key.Matches(msg, m.keymap.Refresh):
			return m, func() tea.Msg { return RequestRefreshMsg{} }

		case key.Matches(msg, m.keymap.Browser):
			// The issue list does not hold repositories, so the app resolves
			// the owning repository's URL and opens it.
			if issue, ok := m.Selected(); ok {
				return m, func() tea.Msg { return OpenBrowserMsg{Issue: issue} }
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// OpenInBrowser opens an issue's page using the owning repository's URL.
func OpenInBrowser(repo domain.Repository, issue domain.Issue) error {
	return browser.OpenURL(fmt.Sprintf("%s/issues/%d", repo.HTMLURL, issue.Number))
}

// View renders the model.
func (m IssueListModel) View() string {
	return m.list.View()
}
