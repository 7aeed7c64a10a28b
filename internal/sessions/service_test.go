package sessions

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fake repo for testing
type fakeRepo struct {
	store map[string]*Attempt
	takes int
}

func (f *fakeRepo) Create(ctx context.Context, a *Attempt) error {
	if f.store == nil {
		f.store = map[string]*Attempt{}
	}
	f.store[a.ID] = a
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (*Attempt, error) {
	a, ok := f.store[id]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (f *fakeRepo) Take(ctx context.Context, id string) (*Attempt, error) {
	f.takes++
	a, ok := f.store[id]
	if !ok {
		return nil, nil
	}
	delete(f.store, id)
	return a, nil
}

func TestBeginAndConsume(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	a, err := svc.Begin(ctx, "/")
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.Len(t, a.State, 64)
	require.WithinDuration(t, time.Now().UTC().Add(time.Minute), a.ExpiresAt, 2*time.Second)

	got, err := svc.Consume(ctx, a.ID, a.State)
	require.NoError(t, err)
	require.Equal(t, "/", got.RedirectURI)

	// single use
	_, err = svc.Consume(ctx, a.ID, a.State)
	require.ErrorIs(t, err, ErrStateMismatch)
}

func TestBeginIssuesDistinctStates(t *testing.T) {
	svc := NewService(&fakeRepo{}, 0)
	a, err := svc.Begin(context.Background(), "/")
	require.NoError(t, err)
	b, err := svc.Begin(context.Background(), "/")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.State, b.State)
	assert.Equal(t, 10*time.Minute, svc.TTL())
}

func TestConsumeMismatchDeletesAttempt(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	a, err := svc.Begin(ctx, "/")
	require.NoError(t, err)

	_, err = svc.Consume(ctx, a.ID, "forged")
	require.ErrorIs(t, err, ErrStateMismatch)
	require.Equal(t, 1, repo.takes)
	require.Empty(t, repo.store)

	// the real state no longer works either
	_, err = svc.Consume(ctx, a.ID, a.State)
	require.ErrorIs(t, err, ErrStateMismatch)
}

func TestConsumeRejectsMissingInput(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	_, err := svc.Consume(ctx, "", "x")
	require.ErrorIs(t, err, ErrStateMismatch)
	require.Zero(t, repo.takes)
	_, err = svc.Consume(ctx, "unknown", "x")
	require.ErrorIs(t, err, ErrStateMismatch)
}

func TestConsumeEmptyStateClearsAttempt(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	a, err := svc.Begin(ctx, "/")
	require.NoError(t, err)

	_, err = svc.Consume(ctx, a.ID, "")
	require.ErrorIs(t, err, ErrStateMismatch)
	require.Empty(t, repo.store)

	_, err = svc.Consume(ctx, a.ID, a.State)
	require.ErrorIs(t, err, ErrStateMismatch)
}

func TestConsumeRejectsExpired(t *testing.T) {
	repo := &fakeRepo{store: map[string]*Attempt{
		"old": {ID: "old", State: "s", ExpiresAt: time.Now().UTC().Add(-time.Second)},
	}}
	svc := NewService(repo, time.Minute)
	_, err := svc.Consume(context.Background(), "old", "s")
	require.ErrorIs(t, err, ErrStateMismatch)
	require.Empty(t, repo.store)
}

func TestServiceWithMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, time.Minute)
	ctx := context.Background()

	a, err := svc.Begin(ctx, "/")
	require.NoError(t, err)
	stale := &Attempt{ID: "stale", State: "s", ExpiresAt: time.Now().UTC().Add(-time.Second)}
	require.NoError(t, repo.Create(ctx, stale))
	got, err := repo.Get(ctx, "stale")
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = svc.Consume(ctx, a.ID, a.State)
	require.NoError(t, err)
	got, err = repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestConcurrentConsumeSucceedsOnce(t *testing.T) {
	svc := NewService(NewMemoryRepository(), time.Minute)
	assertSingleConsume(t, svc)
}

// assertSingleConsume races several callbacks for one state and expects
// exactly one of them to get the attempt.
func assertSingleConsume(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	a, err := svc.Begin(ctx, "/")
	require.NoError(t, err)

	const workers = 16
	var ok, mismatched atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Consume(ctx, a.ID, a.State)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrStateMismatch):
				mismatched.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()
	require.Equal(t, int32(1), ok.Load())
	require.Equal(t, int32(workers-1), mismatched.Load())
}
