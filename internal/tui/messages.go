// Package tui provides Bubble Tea models for the interactive TUI. It is a
// pure consumer of the engine: it reads snapshots, invokes mutations, and
// renders whatever error the engine surfaces.
package tui

import (
	"github.com/mfl/ghlite/internal/domain"
	"github.com/mfl/ghlite/internal/engine"
)

// RefreshDoneMsg is emitted when a refresh commits a new snapshot.
type RefreshDoneMsg struct {
	Result *engine.RefreshResult
}

// RefreshFailedMsg is emitted when a refresh fails outright.
type RefreshFailedMsg struct {
	Err error
}

// OpenDetailMsg is emitted when the user selects an issue.
type OpenDetailMsg struct {
	Issue domain.Issue
}

// OpenBrowserMsg asks the app to open the selected issue's page in the
// system browser.
type OpenBrowserMsg struct {
	Issue domain.Issue
}

// OpenReposMsg is emitted when the user opens the repository list.
type OpenReposMsg struct{}

// OpenNewIssueMsg is emitted when the user starts a new issue.
type OpenNewIssueMsg struct{}

// OpenSettingsMsg is emitted when the user opens settings.
type OpenSettingsMsg struct{}

// BackMsg is emitted when a child screen wants to return to the issue list.
type BackMsg struct{}

// RequestRefreshMsg asks the app to start a refresh.
type RequestRefreshMsg struct{}

// CommentsLoadedMsg delivers an issue's comments to the detail view.
type CommentsLoadedMsg struct {
	Comments []domain.Comment
	Err      error
}

// CommentPostedMsg reports the outcome of posting a comment.
type CommentPostedMsg struct {
	Err error
}

// StateChangedMsg reports the outcome of a close/reopen mutation.
type StateChangedMsg struct {
	State string // the state that was requested
	Err   error
}

// IssueCreatedMsg reports the outcome of creating an issue.
type IssueCreatedMsg struct {
	RepoFullName string
	Err          error
}

// SettingsSavedMsg reports the outcome of saving credentials.
type SettingsSavedMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}
