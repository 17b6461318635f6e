package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfl/ghlite/internal/domain"
)

func sampleIssues() []domain.Issue {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Issue{
		{Number: 1, Title: "oldest open", State: domain.StateOpen, UpdatedAt: base, RepositoryName: "a"},
		{Number: 2, Title: "closed", State: domain.StateClosed, UpdatedAt: base.Add(1 * time.Hour), RepositoryName: "a"},
		{Number: 3, Title: "newest open", State: domain.StateOpen, UpdatedAt: base.Add(2 * time.Hour), RepositoryName: "b"},
	}
}

func visibleNumbers(m IssueListModel) []int {
	items := m.list.Items()
	numbers := make([]int, 0, len(items))
	for _, item := range items {
		numbers = append(numbers, item.(issueItem).issue.Number)
	}
	return numbers
}

func TestIssueList_DefaultsToOpenNewestFirst(t *testing.T) {
	m := NewIssueListModel(sampleIssues(), DefaultKeyMap())

	assert.Equal(t, filterOpen, m.filter)
	assert.Equal(t, []int{3, 1}, visibleNumbers(m))
}

func TestIssueList_FilterCycles(t *testing.T) {
	m := NewIssueListModel(sampleIssues(), DefaultKeyMap())

	cycle := func() {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
		m = updated.(IssueListModel)
	}

	cycle()
	assert.Equal(t, filterClosed, m.filter)
	assert.Equal(t, []int{2}, visibleNumbers(m))

	cycle()
	assert.Equal(t, filterAll, m.filter)
	assert.Equal(t, []int{3, 2, 1}, visibleNumbers(m))

	cycle()
	assert.Equal(t, filterOpen, m.filter)
	assert.Equal(t, []int{3, 1}, visibleNumbers(m))
}

func TestIssueList_SetIssuesReplacesAggregate(t *testing.T) {
	m := NewIssueListModel(sampleIssues(), DefaultKeyMap())

	m.SetIssues([]domain.Issue{
		{Number: 9, Title: "fresh", State: domain.StateOpen, UpdatedAt: time.Now()},
	})

	assert.Equal(t, []int{9}, visibleNumbers(m))
}

func TestIssueList_SelectedReturnsIssueUnderCursor(t *testing.T) {
	m := NewIssueListModel(sampleIssues(), DefaultKeyMap())

	issue, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, 3, issue.Number)

	m.SetIssues(nil)
	_, ok = m.Selected()
	assert.False(t, ok)
}

func TestIssueList_TitleShowsFilterAndCount(t *testing.T) {
	m := NewIssueListModel(sampleIssues(), DefaultKeyMap())
	assert.Equal(t, "Issues (open: 2)", m.list.Title)
}
