package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/mfl/ghlite/internal/domain"
	"github.com/mfl/ghlite/internal/wiki"
)

// repoItem wraps a domain.Repository for use in bubbles/list.
type repoItem struct {
	repo domain.Repository
}

func (i repoItem) FilterValue() string {
	return i.repo.FullName
}

func (i repoItem) title() string {
	return i.repo.FullName
}

func (i repoItem) description() string {
	desc := ""
	if i.repo.Description != nil {
		desc = *i.repo.Description + " · "
	}
	lang := "-"
	if i.repo.Language != nil {
		lang = *i.repo.Language
	}
	open := 0
	if i.repo.OpenIssues != nil {
		open = *i.repo.OpenIssues
	}
	return fmt.Sprintf("%s%s · ★ %d · ⑂ %d · %d open issues",
		desc, lang, i.repo.Stars, i.repo.Forks, open)
}

// repoDelegate is a custom item delegate for repository items.
type repoDelegate struct{}

func (d repoDelegate) Height() int                             { return 2 }
func (d repoDelegate) Spacing() int                            { return 1 }
func (d repoDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d repoDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(repoItem)
	if !ok {
		return
	}

	if index == m.Index() {
		fmt.Fprint(w, SelectedItemStyle.Render("> "+i.title()))
	} else {
		fmt.Fprint(w, NormalItemStyle.Render("  "+i.title()))
	}
	fmt.Fprint(w, "\n  "+DimStyle.Render(i.description()))
}

// RepoListModel shows the account's repositories with their metadata.
type RepoListModel struct {
	list   list.Model
	keymap KeyMap
	notice string
}

// NewRepoListModel creates the repository list from a snapshot.
func NewRepoListModel(repos []domain.Repository, keymap KeyMap) RepoListModel {
	items := make([]list.Item, len(repos))
	for i, repo := range repos {
		items[i] = repoItem{repo: repo}
	}

	l := list.New(items, repoDelegate{}, 80, 20)
	l.Title = fmt.Sprintf("Repositories (%d)", len(repos))
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = TitleStyle

	return RepoListModel{list: l, keymap: keymap}
}

// Init initializes the model.
func (m RepoListModel) Init() tea.Cmd {
	return tea.WindowSize()
}

// Update handles messages and updates the model state.
func (m RepoListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width - 2)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, m.keymap.Back), key.Matches(msg, m.keymap.Quit):
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keymap.Browser):
			if item, ok := m.list.SelectedItem().(repoItem); ok {
				if err := browser.OpenURL(item.repo.HTMLURL); err != nil {
					m.notice = ErrorStyle.Render(fmt.Sprintf("Failed to open browser: %v", err))
				}
			}
			return m, nil

		case key.Matches(msg, m.keymap.Wiki):
			if item, ok := m.list.SelectedItem().(repoItem); ok {
				info := wiki.Check(item.repo)
				if !info.Available {
					m.notice = DimStyle.Render("This repository has no wiki")
					return m, nil
				}
				if err := browser.OpenURL(info.URL); err != nil {
					m.notice = ErrorStyle.Render(fmt.Sprintf("Failed to open browser: %v", err))
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m RepoListModel) View() string {
	view := m.list.View()
	if m.notice != "" {
		view += "\n" + m.notice
	}
	view += HelpStyle.Render("\no open in browser · w open wiki · esc back")
	return view
}
