package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfl/ghlite/internal/config"
	"github.com/mfl/ghlite/internal/domain"
)

// fakeRemote implements Remote with pluggable behavior per method.
type fakeRemote struct {
	listRepos    func(ctx context.Context, username string) ([]domain.Repository, error)
	listIssues   func(ctx context.Context, fullName, state string) ([]domain.Issue, error)
	listComments func(ctx context.Context, fullName string, n int) ([]domain.Comment, error)
	postComment  func(ctx context.Context, fullName string, n int, body string) error
	setState     func(ctx context.Context, fullName string, n int, state string) error
	createIssue  func(ctx context.Context, fullName, title, body string, labels []string) error
}

func (f *fakeRemote) ListRepositories(ctx context.Context, username string) ([]domain.Repository, error) {
	return f.listRepos(ctx, username)
}

func (f *fakeRemote) ListIssues(ctx context.Context, fullName, state string) ([]domain.Issue, error) {
	return f.listIssues(ctx, fullName, state)
}

func (f *fakeRemote) ListComments(ctx context.Context, fullName string, n int) ([]domain.Comment, error) {
	return f.listComments(ctx, fullName, n)
}

func (f *fakeRemote) PostComment(ctx context.Context, fullName string, n int, body string) error {
	return f.postComment(ctx, fullName, n, body)
}

func (f *fakeRemote) SetIssueState(ctx context.Context, fullName string, n int, state string) error {
	return f.setState(ctx, fullName, n, state)
}

func (f *fakeRemote) CreateIssue(ctx context.Context, fullName, title, body string, labels []string) error {
	return f.createIssue(ctx, fullName, title, body, labels)
}

func (f *fakeRemote) RateLimit() domain.RateLimit {
	return domain.RateLimit{}
}

// fakeSource implements CredentialSource backed by a plain value.
type fakeSource struct {
	creds config.Credentials
	ch    chan config.Credentials
}

func newFakeSource(username string) *fakeSource {
	return &fakeSource{
		creds: config.Credentials{Username: username, Token: "tok"},
		ch:    make(chan config.Credentials, 1),
	}
}

func (s *fakeSource) Load() config.Credentials { return s.creds }

func (s *fakeSource) Subscribe() <-chan config.Credentials { return s.ch }

func repo(id int64, fullName, name string) domain.Repository {
	return domain.Repository{ID: id, FullName: fullName, Name: name}
}

func issue(id int64, number int, title, state string) domain.Issue {
	return domain.Issue{ID: id, Number: number, Title: title, State: state}
}

func newTestEngine(remote Remote, username string) *Engine {
	return New(newFakeSource(username), func(config.Credentials) Remote { return remote })
}

func TestRefreshAll_AggregatesAndStamps(t *testing.T) {
	remote := &fakeRemote{
		listRepos: func(_ context.Context, username string) ([]domain.Repository, error) {
			assert.Equal(t, "alice", username)
			return []domain.Repository{repo(1, "alice/a", "a"), repo(2, "alice/c", "c")}, nil
		},
		listIssues: func(_ context.Context, fullName, state string) ([]domain.Issue, error) {
			assert.Equal(t, domain.StateAll, state)
			switch fullName {
			case "alice/a":
				return []domain.Issue{issue(10, 1, "one", "open"), issue(11, 2, "two", "closed")}, nil
			default:
				return []domain.Issue{issue(20, 1, "three", "open")}, nil
			}
		},
	}

	eng := newTestEngine(remote, "alice")
	result, err := eng.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Snapshot.Repositories, 2)
	require.Len(t, result.Snapshot.Issues, 3)
	assert.Empty(t, result.Skipped)

	// Every issue carries the short name of the repository it came from,
	// even though the fake payloads carried none.
	for _, is := range result.Snapshot.Issues {
		switch is.ID {
		case 10, 11:
			assert.Equal(t, "a", is.RepositoryName)
		case 20:
			assert.Equal(t, "c", is.RepositoryName)
		}
	}
}

func TestRefreshAll_OneRepoFailingDoesNotAbort(t *testing.T) {
	// alice/a has two issues, alice/b fails, alice/c has one. The refresh
	// must still report all three repositories and three issues.
	fetchErr := errors.New("repository moved")
	remote := &fakeRemote{
		listRepos: func(_ context.Context, _ string) ([]domain.Repository, error) {
			return []domain.Repository{
				repo(1, "alice/a", "a"),
				repo(2, "alice/b", "b"),
				repo(3, "alice/c", "c"),
			}, nil
		},
		listIssues: func(_ context.Context, fullName, _ string) ([]domain.Issue, error) {
			switch fullName {
			case "alice/a":
				return []domain.Issue{issue(10, 1, "x", "open"), issue(11, 2, "y", "open")}, nil
			case "alice/b":
				return nil, fetchErr
			default:
				return []domain.Issue{issue(30, 1, "z", "open")}, nil
			}
		},
	}

	eng := newTestEngine(remote, "alice")
	result, err := eng.RefreshAll(context.Background())
	require.NoError(t, err, "a per-repository failure must not fail the refresh")

	assert.Len(t, result.Snapshot.Repositories, 3)
	assert.Len(t, result.Snapshot.Issues, 3)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "alice/b", result.Skipped[0].FullName)
	assert.ErrorIs(t, result.Skipped[0].Err, fetchErr)

	for _, is := range result.Snapshot.Issues {
		assert.NotEqual(t, "b", is.RepositoryName)
	}
}

func TestRefreshAll_RepoListFailureFailsRefresh(t *testing.T) {
	listErr := errors.New("boom")
	remote := &fakeRemote{
		listRepos: func(_ context.Context, _ string) ([]domain.Repository, error) {
			return nil, listErr
		},
	}

	eng := newTestEngine(remote, "alice")
	_, err := eng.RefreshAll(context.Background())

	assert.ErrorIs(t, err, listErr)
	assert.Nil(t, eng.Snapshot(), "a failed refresh must not commit a snapshot")
}

func TestRefreshAll_ReplacesSnapshotWholesale(t *testing.T) {
	var pass atomic.Int64
	remote := &fakeRemote{
		listRepos: func(_ context.Context, _ string) ([]domain.Repository, error) {
			if pass.Add(1) == 1 {
				return []domain.Repository{repo(1, "alice/a", "a")}, nil
			}
			return []domain.Repository{repo(2, "alice/b", "b")}, nil
		},
		listIssues: func(_ context.Context, _, _ string) ([]domain.Issue, error) {
			return nil, nil
		},
	}

	eng := newTestEngine(remote, "alice")
	first, err := eng.RefreshAll(context.Background())
	require.NoError(t, err)
	second, err := eng.RefreshAll(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first.Snapshot, second.Snapshot)
	assert.Equal(t, "alice/b", eng.Snapshot().Repositories[0].FullName)
	// The first snapshot is untouched: snapshots are replaced, not edited.
	assert.Equal(t, "alice/a", first.Snapshot.Repositories[0].FullName)
}

func TestRefreshAll_SingleFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var startOnce sync.Once
	remote := &fakeRemote{
		listRepos: func(_ context.Context, _ string) ([]domain.Repository, error) {
			startOnce.Do(func() { close(started) })
			<-release
			return nil, nil
		},
	}

	eng := newTestEngine(remote, "alice")

	done := make(chan error, 1)
	go func() {
		_, err := eng.RefreshAll(context.Background())
		done <- err
	}()

	<-started
	_, err := eng.RefreshAll(context.Background())
	assert.ErrorIs(t, err, ErrRefreshInFlight)

	close(release)
	require.NoError(t, <-done)

	// Once the first refresh finishes, a new one is allowed again.
	_, err = eng.RefreshAll(context.Background())
	assert.NoError(t, err)
}

func TestRefreshAll_CancellationCommitsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	remote := &fakeRemote{
		listRepos: func(_ context.Context, _ string) ([]domain.Repository, error) {
			return []domain.Repository{repo(1, "alice/a", "a"), repo(2, "alice/b", "b")}, nil
		},
		listIssues: func(_ context.Context, _, _ string) ([]domain.Issue, error) {
			cancel() // Shut down mid-flight
			return []domain.Issue{issue(10, 1, "x", "open")}, nil
		},
	}

	eng := newTestEngine(remote, "alice")
	_, err := eng.RefreshAll(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, eng.Snapshot())
}

func TestEngine_RebuildsRemoteOnCredentialChange(t *testing.T) {
	var builds atomic.Int64
	remote := &fakeRemote{
		listRepos: func(_ context.Context, _ string) ([]domain.Repository, error) { return nil, nil },
	}
	source := newFakeSource("alice")
	eng := New(source, func(config.Credentials) Remote {
		builds.Add(1)
		return remote
	})

	_, err := eng.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, builds.Load())

	// No change announced: the remote is reused.
	_, err = eng.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, builds.Load())

	// Announce a credential change; the next use rebuilds.
	source.ch <- config.Credentials{Username: "alice", Token: "newtok"}
	_, err = eng.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, builds.Load())
}

func TestMutations_PropagateWithoutRetry(t *testing.T) {
	mutErr := errors.New("server exploded")
	var postCalls, stateCalls, createCalls atomic.Int64
	remote := &fakeRemote{
		postComment: func(_ context.Context, _ string, _ int, _ string) error {
			postCalls.Add(1)
			return mutErr
		},
		setState: func(_ context.Context, _ string, _ int, _ string) error {
			stateCalls.Add(1)
			return mutErr
		},
		createIssue: func(_ context.Context, _, _, _ string, _ []string) error {
			createCalls.Add(1)
			return mutErr
		},
	}

	eng := newTestEngine(remote, "alice")
	ctx := context.Background()

	assert.ErrorIs(t, eng.PostComment(ctx, "alice/a", 1, "hi"), mutErr)
	assert.ErrorIs(t, eng.SetIssueState(ctx, "alice/a", 1, domain.StateClosed), mutErr)
	assert.ErrorIs(t, eng.CreateIssue(ctx, "alice/a", "t", "", nil), mutErr)

	// Mutations are not idempotent remotely; exactly one attempt each.
	assert.EqualValues(t, 1, postCalls.Load())
	assert.EqualValues(t, 1, stateCalls.Load())
	assert.EqualValues(t, 1, createCalls.Load())
}

func TestRepositoryByName(t *testing.T) {
	remote := &fakeRemote{
		listRepos: func(_ context.Context, _ string) ([]domain.Repository, error) {
			return []domain.Repository{repo(1, "alice/a", "a")}, nil
		},
		listIssues: func(_ context.Context, _, _ string) ([]domain.Issue, error) { return nil, nil },
	}

	eng := newTestEngine(remote, "alice")

	_, ok := eng.RepositoryByName("a")
	assert.False(t, ok, "no snapshot yet")

	_, err := eng.RefreshAll(context.Background())
	require.NoError(t, err)

	got, ok := eng.RepositoryByName("a")
	require.True(t, ok)
	assert.Equal(t, "alice/a", got.FullName)

	_, ok = eng.RepositoryByName("nope")
	assert.False(t, ok)
}

func TestRefreshAll_SetsFetchedAt(t *testing.T) {
	remote := &fakeRemote{
		listRepos:  func(_ context.Context, _ string) ([]domain.Repository, error) { return nil, nil },
		listIssues: func(_ context.Context, _, _ string) ([]domain.Issue, error) { return nil, nil },
	}

	before := time.Now()
	result, err := newTestEngine(remote, "alice").RefreshAll(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Snapshot.FetchedAt.Before(before))
}
