package gh

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mfl/ghlite/internal/domain"
)

// repoListOptions are the query parameters for ListRepositories.
type repoListOptions struct {
	PerPage int    `url:"per_page"`
	Sort    string `url:"sort"`
}

// issueListOptions are the query parameters for ListIssues.
type issueListOptions struct {
	State   string `url:"state"`
	PerPage int    `url:"per_page"`
}

// ListRepositories returns up to one page of the user's repositories,
// most recently updated first.
func (c *Client) ListRepositories(ctx context.Context, username string) ([]domain.Repository, error) {
	url, err := c.endpoint("users", username, "repos")
	if err != nil {
		return nil, err
	}

	var repos []domain.Repository
	opts := repoListOptions{PerPage: perPage, Sort: "updated"}
	if err := c.do(ctx, http.MethodGet, url, opts, nil, http.StatusOK, &repos); err != nil {
		return nil, fmt.Errorf("failed to list repositories for %s: %w", username, err)
	}
	return repos, nil
}

// issuePayload wraps the wire issue with the one extra field needed to tell
// issues from pull requests: the issues endpoint returns both, and only
// pull requests carry a pull_request key.
type issuePayload struct {
	domain.Issue
	PullRequest *json.RawMessage `json:"pull_request"`
}

// ListIssues returns up to one page of a repository's issues. state must be
// one of open, closed, or all. Pull requests are filtered out. The returned
// issues carry no repository name; the caller stamps it.
func (c *Client) ListIssues(ctx context.Context, repoFullName, state string) ([]domain.Issue, error) {
	switch state {
	case domain.StateOpen, domain.StateClosed, domain.StateAll:
	default:
		return nil, fmt.Errorf("%w: unknown issue state %q", ErrInvalidRequest, state)
	}

	owner, name, err := splitFullName(repoFullName)
	if err != nil {
		return nil, err
	}
	url, err := c.endpoint("repos", owner, name, "issues")
	if err != nil {
		return nil, err
	}

	var payload []issuePayload
	opts := issueListOptions{State: state, PerPage: perPage}
	if err := c.do(ctx, http.MethodGet, url, opts, nil, http.StatusOK, &payload); err != nil {
		return nil, fmt.Errorf("failed to list issues for %s: %w", repoFullName, err)
	}

	issues := make([]domain.Issue, 0, len(payload))
	for _, p := range payload {
		if p.PullRequest != nil {
			continue
		}
		issues = append(issues, p.Issue)
	}
	return issues, nil
}

// ListComments returns up to one page of an issue's comments, oldest first.
func (c *Client) ListComments(ctx context.Context, repoFullName string, issueNumber int) ([]domain.Comment, error) {
	if issueNumber <= 0 {
		return nil, fmt.Errorf("%w: issue number %d", ErrInvalidRequest, issueNumber)
	}

	owner, name, err := splitFullName(repoFullName)
	if err != nil {
		return nil, err
	}
	url, err := c.endpoint("repos", owner, name, "issues", strconv.Itoa(issueNumber), "comments")
	if err != nil {
		return nil, err
	}

	var comments []domain.Comment
	if err := c.do(ctx, http.MethodGet, url, nil, nil, http.StatusOK, &comments); err != nil {
		return nil, fmt.Errorf("failed to list comments for %s#%d: %w", repoFullName, issueNumber, err)
	}
	return comments, nil
}
