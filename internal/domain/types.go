// Package domain defines the normalized domain types for the issue tracker.
// These types double as the wire schema: json tags translate the API's
// snake_case field names uniformly, so every resource decodes the same way.
package domain

import (
	"strings"
	"time"
)

// Issue states as reported by the API. There are exactly two.
const (
	StateOpen   = "open"
	StateClosed = "closed"
	StateAll    = "all" // list filter only, never a stored state
)

// Repository represents a repository owned by the configured account.
type Repository struct {
	ID          int64   `json:"id"`        // Remote-assigned, immutable
	Name        string  `json:"name"`      // Short name (e.g., "sample-repo")
	FullName    string  `json:"full_name"` // "owner/name"
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
	Language    *string `json:"language"`
	Stars       int     `json:"stargazers_count"`
	Forks       int     `json:"forks_count"`
	OpenIssues  *int    `json:"open_issues_count"`
	HasWiki     *bool   `json:"has_wiki"`
}

// Owner returns the owner half of FullName, or "" if FullName is malformed.
func (r Repository) Owner() string {
	owner, _, ok := strings.Cut(r.FullName, "/")
	if !ok {
		return ""
	}
	return owner
}

// User represents the author of an issue or comment.
type User struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

// Issue represents an issue in a single repository.
//
// RepositoryName is not part of the wire format: the per-repository issues
// endpoint does not echo the repository it belongs to, so the aggregation
// engine stamps it after fetch. It is the one field written post-decode.
type Issue struct {
	ID             int64      `json:"id"`     // Remote-assigned, immutable
	Number         int        `json:"number"` // Per-repository sequence
	Title          string     `json:"title"`
	Body           *string    `json:"body"`
	State          string     `json:"state"` // StateOpen or StateClosed
	User           User       `json:"user"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ClosedAt       *time.Time `json:"closed_at"`
	Comments       int        `json:"comments"`
	RepositoryName string     `json:"-"` // Stamped by the engine, never decoded
}

// IsOpen reports whether the issue is open.
func (i Issue) IsOpen() bool {
	return i.State == StateOpen
}

// IsClosed reports whether the issue is closed.
func (i Issue) IsClosed() bool {
	return i.State == StateClosed
}

// Status is the derived three-way triage classification used for display
// color coding. It is computed from the two real states plus the comment
// count and is never stored, so it cannot drift from them.
type Status int

const (
	StatusNew       Status = iota // Open, no discussion yet
	StatusDiscussed               // Open with at least one comment
	StatusResolved                // Closed
)

// Status classifies the issue for display purposes.
func (i Issue) Status() Status {
	switch {
	case i.IsClosed():
		return StatusResolved
	case i.Comments > 0:
		return StatusDiscussed
	default:
		return StatusNew
	}
}

// Comment represents a single comment on an issue. Comments are fetched per
// issue on demand and are not retained across views.
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `json:"user"`
}

// Snapshot is the result of one full aggregation pass: the account's
// repositories plus the union of their issues. A snapshot is immutable once
// produced and is replaced wholesale by the next successful refresh.
type Snapshot struct {
	Repositories []Repository
	Issues       []Issue
	FetchedAt    time.Time
}

// RateLimit carries the API quota telemetry reported on each response.
// It is display-only; nothing in the client or engine acts on it.
type RateLimit struct {
	Limit     int       // Requests allowed per window
	Remaining int       // Requests left in the current window
	Reset     time.Time // When the window resets
}
