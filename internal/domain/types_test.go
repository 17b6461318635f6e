package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue_StateDerivations(t *testing.T) {
	open := Issue{State: StateOpen}
	closed := Issue{State: StateClosed}

	assert.True(t, open.IsOpen())
	assert.False(t, open.IsClosed())
	assert.True(t, closed.IsClosed())
	assert.False(t, closed.IsOpen())
}

func TestIssue_Status(t *testing.T) {
	tests := []struct {
		name  string
		issue Issue
		want  Status
	}{
		{"open without comments is new", Issue{State: StateOpen, Comments: 0}, StatusNew},
		{"open with comments is discussed", Issue{State: StateOpen, Comments: 3}, StatusDiscussed},
		{"closed is resolved", Issue{State: StateClosed, Comments: 0}, StatusResolved},
		{"closed with comments is still resolved", Issue{State: StateClosed, Comments: 5}, StatusResolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.issue.Status())
		})
	}
}

func TestRepository_Owner(t *testing.T) {
	assert.Equal(t, "alice", Repository{FullName: "alice/repo"}.Owner())
	assert.Equal(t, "", Repository{FullName: "just-a-name"}.Owner())
}

func TestIssue_DecodesWireFormat(t *testing.T) {
	// A trimmed real-world payload: snake_case names, RFC3339 timestamps.
	payload := `{
		"id": 123456,
		"number": 7,
		"title": "Window forgets its size",
		"body": null,
		"state": "open",
		"user": {"login": "alice", "avatar_url": "https://example.test/a.png"},
		"created_at": "2025-10-25T15:48:00Z",
		"updated_at": "2025-10-26T09:12:30Z",
		"closed_at": null,
		"comments": 2
	}`

	var issue Issue
	require.NoError(t, json.Unmarshal([]byte(payload), &issue))

	assert.Equal(t, int64(123456), issue.ID)
	assert.Equal(t, 7, issue.Number)
	assert.Nil(t, issue.Body)
	assert.Equal(t, "alice", issue.User.Login)
	assert.Equal(t, time.Date(2025, 10, 25, 15, 48, 0, 0, time.UTC), issue.CreatedAt)
	assert.Nil(t, issue.ClosedAt)
	assert.Equal(t, 2, issue.Comments)

	// The repository name never rides along on the wire.
	assert.Empty(t, issue.RepositoryName)
}
