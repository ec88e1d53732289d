package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mingle-social/apiserver/internal/store"
	"github.com/mingle-social/apiserver/types"
)

// fakePostRepo is an in-memory PostRepository safe for concurrent use.
type fakePostRepo struct {
	mu     sync.Mutex
	nextID int
	posts  map[int]types.Post
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{nextID: 1, posts: map[int]types.Post{}}
}

func (r *fakePostRepo) List(ctx context.Context, offset, limit int) ([]types.Post, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	posts := make([]types.Post, 0, len(r.posts))
	for _, post := range r.posts {
		posts = append(posts, post)
	}
	return posts, len(posts), nil
}

func (r *fakePostRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []types.Post
	for _, post := range r.posts {
		if post.OwnerID == ownerID {
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func (r *fakePostRepo) Get(ctx context.Context, id int) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (r *fakePostRepo) Create(ctx context.Context, post types.Post) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = r.nextID
	r.nextID++
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Update(ctx context.Context, post types.Post) (types.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[post.ID]; !ok {
		return types.Post{}, store.ErrNotFound
	}
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

type reactionKey struct {
	userID int
	postID int
}

// fakeReactionStore mirrors the transactional store: a single lock keeps
// the reaction rows and the per-post counters in step.
type fakeReactionStore struct {
	mu        sync.Mutex
	reactions map[reactionKey]types.ReactionKind
	counts    map[int]types.ReactionCounts

	// failures makes the next N mutations fail with ErrConflict.
	failures int
}

func newFakeReactionStore() *fakeReactionStore {
	return &fakeReactionStore{
		reactions: map[reactionKey]types.ReactionKind{},
		counts:    map[int]types.ReactionCounts{},
	}
}

func (s *fakeReactionStore) Get(ctx context.Context, userID, postID int) (types.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind, ok := s.reactions[reactionKey{userID, postID}]
	if !ok {
		return types.Reaction{}, store.ErrNotFound
	}
	return types.Reaction{UserID: userID, PostID: postID, Kind: kind}, nil
}

func (s *fakeReactionStore) Set(ctx context.Context, userID, postID int, kind types.ReactionKind) (types.ReactionCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--
		return types.ReactionCounts{}, store.ErrConflict
	}

	key := reactionKey{userID, postID}
	counts := s.counts[postID]

	existing, ok := s.reactions[key]
	switch {
	case !ok:
		counts = bump(counts, kind, 1)
	case existing == kind:
		// no-op
	default:
		counts = bump(counts, existing, -1)
		counts = bump(counts, kind, 1)
	}
	s.reactions[key] = kind
	s.counts[postID] = counts
	return counts, nil
}

func (s *fakeReactionStore) Clear(ctx context.Context, userID, postID int) (types.ReactionCounts, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures > 0 {
		s.failures--
		return types.ReactionCounts{}, store.ErrConflict
	}

	key := reactionKey{userID, postID}
	counts := s.counts[postID]
	if existing, ok := s.reactions[key]; ok {
		counts = bump(counts, existing, -1)
		delete(s.reactions, key)
		s.counts[postID] = counts
	}
	return counts, nil
}

func bump(c types.ReactionCounts, kind types.ReactionKind, delta int) types.ReactionCounts {
	if kind == types.ReactionLike {
		c.Likes += delta
	} else {
		c.Dislikes += delta
	}
	return c
}

func newTestReactionEngine(t *testing.T) (*ReactionEngine, *fakePostRepo, *fakeReactionStore) {
	t.Helper()
	posts := newFakePostRepo()
	reactions := newFakeReactionStore()
	return NewReactionEngine(posts, reactions), posts, reactions
}

func seedPost(t *testing.T, posts *fakePostRepo, ownerID int) types.Post {
	t.Helper()
	post, err := posts.Create(context.Background(), types.Post{OwnerID: ownerID, Text: "hello"})
	require.NoError(t, err)
	return post
}

func TestSetReaction(t *testing.T) {
	engine, posts, _ := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	counts, err := engine.SetReaction(context.Background(), 2, post.ID, types.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, types.ReactionCounts{Likes: 1}, counts)

	counts, err = engine.SetReaction(context.Background(), 3, post.ID, types.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, types.ReactionCounts{Likes: 1, Dislikes: 1}, counts)
}

func TestSetReactionRepeatIsIdempotent(t *testing.T) {
	engine, posts, _ := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	for i := 0; i < 3; i++ {
		counts, err := engine.SetReaction(context.Background(), 2, post.ID, types.ReactionLike)
		require.NoError(t, err)
		assert.Equal(t, types.ReactionCounts{Likes: 1}, counts)
	}
}

func TestSetReactionFlip(t *testing.T) {
	engine, posts, _ := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	_, err := engine.SetReaction(context.Background(), 2, post.ID, types.ReactionLike)
	require.NoError(t, err)

	counts, err := engine.SetReaction(context.Background(), 2, post.ID, types.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, types.ReactionCounts{Likes: 0, Dislikes: 1}, counts)
}

func TestSetReactionRejectsOwner(t *testing.T) {
	engine, posts, _ := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	_, err := engine.SetReaction(context.Background(), 1, post.ID, types.ReactionLike)
	assert.ErrorIs(t, err, ErrSelfReaction)
}

func TestSetReactionRejectsUnknownKind(t *testing.T) {
	engine, posts, _ := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	_, err := engine.SetReaction(context.Background(), 2, post.ID, types.ReactionKind("meh"))
	assert.Error(t, err)
}

func TestSetReactionMissingPost(t *testing.T) {
	engine, _, _ := newTestReactionEngine(t)

	_, err := engine.SetReaction(context.Background(), 2, 999, types.ReactionLike)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSetReactionRetriesOnConflict(t *testing.T) {
	engine, posts, reactions := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	reactions.failures = 1
	counts, err := engine.SetReaction(context.Background(), 2, post.ID, types.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, types.ReactionCounts{Likes: 1}, counts)
}

func TestSetReactionGivesUpAfterOneRetry(t *testing.T) {
	engine, posts, reactions := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	reactions.failures = 2
	_, err := engine.SetReaction(context.Background(), 2, post.ID, types.ReactionLike)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestClearReaction(t *testing.T) {
	engine, posts, _ := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	_, err := engine.SetReaction(context.Background(), 2, post.ID, types.ReactionLike)
	require.NoError(t, err)

	counts, err := engine.ClearReaction(context.Background(), 2, post.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ReactionCounts{}, counts)

	// Clearing again is a no-op.
	counts, err = engine.ClearReaction(context.Background(), 2, post.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ReactionCounts{}, counts)
}

func TestGetReaction(t *testing.T) {
	engine, posts, _ := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	_, found, err := engine.GetReaction(context.Background(), 2, post.ID)
	require.NoError(t, err)
	assert.False(t, found)

	_, err = engine.SetReaction(context.Background(), 2, post.ID, types.ReactionDislike)
	require.NoError(t, err)

	reaction, found, err := engine.GetReaction(context.Background(), 2, post.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, types.ReactionDislike, reaction.Kind)
}

func TestSetReactionConcurrent(t *testing.T) {
	engine, posts, reactions := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	const reactors = 50

	var wg sync.WaitGroup
	for i := 0; i < reactors; i++ {
		wg.Add(1)
		go func(userID int) {
			defer wg.Done()
			kind := types.ReactionLike
			if userID%2 == 0 {
				kind = types.ReactionDislike
			}
			_, err := engine.SetReaction(context.Background(), userID, post.ID, kind)
			assert.NoError(t, err)
		}(i + 2)
	}
	wg.Wait()

	counts := reactions.counts[post.ID]
	assert.Equal(t, reactors, counts.Likes+counts.Dislikes)
	assert.Equal(t, 25, counts.Likes)
	assert.Equal(t, 25, counts.Dislikes)
}

func TestSetReactionConcurrentSameUser(t *testing.T) {
	engine, posts, reactions := newTestReactionEngine(t)
	post := seedPost(t, posts, 1)

	const attempts = 20

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kind := types.ReactionLike
			if i%2 == 0 {
				kind = types.ReactionDislike
			}
			_, err := engine.SetReaction(context.Background(), 2, post.ID, kind)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Whatever interleaving won, exactly one reaction stands.
	counts := reactions.counts[post.ID]
	assert.Equal(t, 1, counts.Likes+counts.Dislikes)
}
