// Package engine aggregates many independent API calls into one consistent
// in-memory snapshot. Its one hard rule: a single broken repository must
// never block visibility into all the others.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mfl/ghlite/internal/config"
	"github.com/mfl/ghlite/internal/domain"
)

var logger = log.WithField("package", "engine")

// ErrRefreshInFlight indicates a refresh was requested while another one is
// still running. Refreshes are not queued; the caller simply waits for the
// running one to finish.
var ErrRefreshInFlight = errors.New("a refresh is already in flight")

// defaultWorkers bounds the per-repository fan-out. Kept small: the refresh
// issues one request per repository and the account may own dozens.
const defaultWorkers = 4

// Remote is the API surface the engine drives. *gh.Client implements it;
// tests substitute fakes.
type Remote interface {
	ListRepositories(ctx context.Context, username string) ([]domain.Repository, error)
	ListIssues(ctx context.Context, repoFullName, state string) ([]domain.Issue, error)
	ListComments(ctx context.Context, repoFullName string, issueNumber int) ([]domain.Comment, error)
	PostComment(ctx context.Context, repoFullName string, issueNumber int, body string) error
	SetIssueState(ctx context.Context, repoFullName string, issueNumber int, state string) error
	CreateIssue(ctx context.Context, repoFullName, title, body string, labels []string) error
	RateLimit() domain.RateLimit
}

// CredentialSource supplies credentials and announces changes to them.
// *config.Store implements it.
type CredentialSource interface {
	Load() config.Credentials
	Subscribe() <-chan config.Credentials
}

// RemoteFactory builds a Remote for a set of credentials. The engine calls
// it again whenever the credentials change.
type RemoteFactory func(config.Credentials) Remote

// SkippedRepo records a repository whose issue fetch failed during a
// refresh. The refresh itself still succeeds.
type SkippedRepo struct {
	FullName string
	Err      error
}

// RefreshResult is the outcome of one successful refresh: the committed
// snapshot plus the repositories that were skipped on the way.
type RefreshResult struct {
	Snapshot *domain.Snapshot
	Skipped  []SkippedRepo
}

// Engine owns the current snapshot and all traffic to the remote API.
type Engine struct {
	creds     CredentialSource
	newRemote RemoteFactory
	workers   int

	mu      sync.Mutex         // guards remote + current
	remote  Remote             // built lazily, rebuilt on credential change
	current config.Credentials // credentials remote was built from
	changes <-chan config.Credentials

	snapshot   atomic.Pointer[domain.Snapshot]
	refreshing atomic.Bool
}

// New creates an engine reading credentials from creds and talking to the
// API through remotes built by factory.
func New(creds CredentialSource, factory RemoteFactory) *Engine {
	return &Engine{
		creds:     creds,
		newRemote: factory,
		workers:   defaultWorkers,
		changes:   creds.Subscribe(),
	}
}

// SetWorkers overrides the fan-out bound. Values are clamped to [1, 10].
func (e *Engine) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	e.workers = n
}

// client returns the current Remote and the credentials it was built from,
// rebuilding it first if the credential store has announced a change since
// the last call.
func (e *Engine) client() (Remote, config.Credentials) {
	e.mu.Lock()
	defer e.mu.Unlock()

	select {
	case c := <-e.changes:
		e.remote = e.newRemote(c)
		e.current = c
	default:
	}

	if e.remote == nil {
		e.current = e.creds.Load()
		e.remote = e.newRemote(e.current)
	}
	return e.remote, e.current
}

// Snapshot returns the most recently committed snapshot, or nil before the
// first successful refresh. Callers must treat it as read-only.
func (e *Engine) Snapshot() *domain.Snapshot {
	return e.snapshot.Load()
}

// RateLimit returns the remote's current quota telemetry.
func (e *Engine) RateLimit() domain.RateLimit {
	remote, _ := e.client()
	return remote.RateLimit()
}

// RefreshAll fetches everything owned by the configured account and commits
// it as a new snapshot. Two phases: the repository list (whose failure fails
// the whole refresh, since there is nothing to aggregate without it), then a
// bounded fan-out of per-repository issue fetches where each failure is
// logged, recorded, and skipped. Each fetched issue is stamped with its
// repository's name before it joins the aggregate. Nothing is committed if
// the context is cancelled mid-flight. At most one refresh runs at a time;
// a second caller gets ErrRefreshInFlight.
func (e *Engine) RefreshAll(ctx context.Context) (*RefreshResult, error) {
	if !e.refreshing.CompareAndSwap(false, true) {
		return nil, ErrRefreshInFlight
	}
	defer e.refreshing.Store(false)

	remote, creds := e.client()

	repos, err := remote.ListRepositories(ctx, creds.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}

	results := FanOut(ctx, e.workers, repos, func(ctx context.Context, repo domain.Repository) ([]domain.Issue, error) {
		return remote.ListIssues(ctx, repo.FullName, domain.StateAll)
	})

	var (
		issues  []domain.Issue
		skipped []SkippedRepo
	)
	for _, res := range results {
		if res.Err != nil {
			logger.WithField("repo", res.Input.FullName).WithError(res.Err).
				Warn("skipping repository, issue fetch failed")
			skipped = append(skipped, SkippedRepo{FullName: res.Input.FullName, Err: res.Err})
			continue
		}
		for _, issue := range res.Value {
			issue.RepositoryName = res.Input.Name
			issues = append(issues, issue)
		}
	}

	// An abandoned refresh commits nothing, not even the repositories that
	// happened to finish before the cancellation.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &domain.Snapshot{
		Repositories: repos,
		Issues:       issues,
		FetchedAt:    time.Now(),
	}
	e.snapshot.Store(snap)

	return &RefreshResult{Snapshot: snap, Skipped: skipped}, nil
}

// RepositoryByName finds a repository in the current snapshot by its short
// name, the same name issues are stamped with.
func (e *Engine) RepositoryByName(name string) (domain.Repository, bool) {
	snap := e.Snapshot()
	if snap == nil {
		return domain.Repository{}, false
	}
	for _, repo := range snap.Repositories {
		if repo.Name == name {
			return repo, true
		}
	}
	return domain.Repository{}, false
}

// The mutation operations below proxy to the remote unchanged. They are
// never retried here: the API is not idempotent, and a silent retry could
// duplicate a comment or an issue. After a success the caller re-runs
// RefreshAll; local state is never flipped optimistically.

// ListComments fetches the comments of one issue.
func (e *Engine) ListComments(ctx context.Context, repoFullName string, issueNumber int) ([]domain.Comment, error) {
	remote, _ := e.client()
	return remote.ListComments(ctx, repoFullName, issueNumber)
}

// PostComment adds a comment to an issue.
func (e *Engine) PostComment(ctx context.Context, repoFullName string, issueNumber int, body string) error {
	remote, _ := e.client()
	return remote.PostComment(ctx, repoFullName, issueNumber, body)
}

// SetIssueState opens or closes an issue.
func (e *Engine) SetIssueState(ctx context.Context, repoFullName string, issueNumber int, state string) error {
	remote, _ := e.client()
	return remote.SetIssueState(ctx, repoFullName, issueNumber, state)
}

// CreateIssue opens a new issue in a repository.
func (e *Engine) CreateIssue(ctx context.Context, repoFullName, title, body string, labels []string) error {
	remote, _ := e.client()
	return remote.CreateIssue(ctx, repoFullName, title, body, labels)
}
