package gh

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mfl/ghlite/internal/domain"
)

// Mutation bodies carry only the fields the API requires; nothing of the
// local view of the resource is echoed back.
type (
	commentBody struct {
		Body string `json:"body"`
	}

	stateBody struct {
		State string `json:"state"`
	}

	issueBody struct {
		Title  string   `json:"title"`
		Body   string   `json:"body,omitempty"`
		Labels []string `json:"labels,omitempty"`
	}
)

// PostComment adds a comment to an issue. The API acknowledges a created
// comment with 201.
func (c *Client) PostComment(ctx context.Context, repoFullName string, issueNumber int, body string) error {
	if body == "" {
		return fmt.Errorf("%w: empty comment body", ErrInvalidRequest)
	}
	if issueNumber <= 0 {
		return fmt.Errorf("%w: issue number %d", ErrInvalidRequest, issueNumber)
	}

	owner, name, err := splitFullName(repoFullName)
	if err != nil {
		return err
	}
	url, err := c.endpoint("repos", owner, name, "issues", strconv.Itoa(issueNumber), "comments")
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodPost, url, nil, commentBody{Body: body}, http.StatusCreated, nil); err != nil {
		return fmt.Errorf("failed to post comment to %s#%d: %w", repoFullName, issueNumber, err)
	}
	return nil
}

// SetIssueState opens or closes an issue. These are the only two states the
// API surface has; the state-patch acknowledges with 200.
func (c *Client) SetIssueState(ctx context.Context, repoFullName string, issueNumber int, state string) error {
	switch state {
	case domain.StateOpen, domain.StateClosed:
	default:
		return fmt.Errorf("%w: issue state %q", ErrInvalidRequest, state)
	}
	if issueNumber <= 0 {
		return fmt.Errorf("%w: issue number %d", ErrInvalidRequest, issueNumber)
	}

	owner, name, err := splitFullName(repoFullName)
	if err != nil {
		return err
	}
	url, err := c.endpoint("repos", owner, name, "issues", strconv.Itoa(issueNumber))
	if err != nil {
		return err
	}

	if err := c.do(ctx, http.MethodPatch, url, nil, stateBody{State: state}, http.StatusOK, nil); err != nil {
		return fmt.Errorf("failed to set %s#%d to %s: %w", repoFullName, issueNumber, state, err)
	}
	return nil
}

// CreateIssue opens a new issue. Body and labels are optional and omitted
// from the request entirely when empty.
func (c *Client) CreateIssue(ctx context.Context, repoFullName, title, body string, labels []string) error {
	if title == "" {
		return fmt.Errorf("%w: empty issue title", ErrInvalidRequest)
	}

	owner, name, err := splitFullName(repoFullName)
	if err != nil {
		return err
	}
	url, err := c.endpoint("repos", owner, name, "issues")
	if err != nil {
		return err
	}

	payload := issueBody{Title: title, Body: body, Labels: labels}
	if err := c.do(ctx, http.MethodPost, url, nil, payload, http.StatusCreated, nil); err != nil {
		return fmt.Errorf("failed to create issue in %s: %w", repoFullName, err)
	}
	return nil
}
