package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/pagemeta/internal/cache"
	"github.com/conduit-lang/pagemeta/internal/config"
)

func samplePost() *Post {
	return &Post{
		Slug:        "hello-world",
		Title:       "Hello World",
		Description: "The first post",
		Author:      "Ada",
		Image:       "/images/hello.png",
		Keywords:    []string{"intro", "hello"},
		PublishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func setupSQLite(t *testing.T) *SQLStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	s := NewSQLStore(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLStore_SaveAndLoad(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SavePost(ctx, samplePost()))

	got, err := s.LoadPost(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", got.Title)
	assert.Equal(t, []string{"intro", "hello"}, got.Keywords)
	assert.True(t, samplePost().PublishedAt.Equal(got.PublishedAt))

	updated := samplePost()
	updated.Title = "Hello Again"
	updated.Keywords = nil
	require.NoError(t, s.SavePost(ctx, updated))

	got, err = s.LoadPost(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello Again", got.Title)
	assert.Empty(t, got.Keywords)
}

func TestSQLStore_LoadMissing(t *testing.T) {
	s := setupSQLite(t)
	_, err := s.LoadPost(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.True(t, IsNotFound(err))
}

func TestSQLStore_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT slug, title").
		WithArgs("broken").
		WillReturnError(errors.New("connection reset"))

	_, err = NewSQLStore(db).LoadPost(context.Background(), "broken")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SaveAndMigrateErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS posts").WillReturnError(errors.New("permission denied"))
	mock.ExpectExec("INSERT INTO posts").WillReturnError(errors.New("disk full"))

	s := NewSQLStore(db)
	assert.ErrorContains(t, s.Migrate(context.Background()), "permission denied")
	assert.ErrorContains(t, s.SavePost(context.Background(), samplePost()), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

type countingSource struct {
	calls atomic.Int32
	gate  chan struct{}
	post  *Post
}

func (s *countingSource) LoadPost(ctx context.Context, slug string) (*Post, error) {
	s.calls.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.post == nil || s.post.Slug != slug {
		return nil, ErrPostNotFound
	}
	p := *s.post
	return &p, nil
}

func TestPosts_ReadThrough(t *testing.T) {
	c := cache.NewMemory(cache.DefaultConfig())
	defer c.Close()
	src := &countingSource{post: samplePost()}
	posts := NewPosts(c, src, time.Minute, nil)
	ctx := context.Background()

	got, err := posts.Get(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", got.Title)

	got, err = posts.Get(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", got.Title)
	assert.EqualValues(t, 1, src.calls.Load())

	_, err = posts.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPosts_CoalescesConcurrentMisses(t *testing.T) {
	c := cache.NewMemory(cache.DefaultConfig())
	defer c.Close()
	src := &countingSource{post: samplePost(), gate: make(chan struct{})}
	posts := NewPosts(c, src, time.Minute, nil)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := posts.Get(context.Background(), "hello-world")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestPosts_CacheOnly(t *testing.T) {
	c := cache.NewMemory(cache.DefaultConfig())
	defer c.Close()
	posts := NewPosts(c, nil, time.Minute, nil)
	ctx := context.Background()

	_, err := posts.Get(ctx, "hello-world")
	assert.ErrorIs(t, err, ErrPostNotFound)

	require.NoError(t, posts.Put(ctx, samplePost()))
	got, err := posts.Get(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Author)
}

func TestPosts_PutWritesThroughToSQL(t *testing.T) {
	s := setupSQLite(t)
	c := cache.NewMemory(cache.DefaultConfig())
	defer c.Close()
	posts := NewPosts(c, s, time.Minute, nil)
	ctx := context.Background()

	require.NoError(t, posts.Put(ctx, samplePost()))

	stored, err := s.LoadPost(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World", stored.Title)
}

func TestOpen_Backends(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  config.StoreConfig
	}{
		{"memory", config.StoreConfig{Backend: config.BackendMemory}},
		{"redis", config.StoreConfig{Backend: config.BackendRedis, RedisAddr: mr.Addr()}},
		{"sqlite", config.StoreConfig{Backend: config.BackendSQLite, DSN: filepath.Join(t.TempDir(), "posts.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, closeFn, err := Open(ctx, tt.cfg, nil)
			require.NoError(t, err)
			defer func() { assert.NoError(t, closeFn()) }()

			require.NoError(t, posts.Put(ctx, samplePost()))
			got, err := posts.Get(ctx, "hello-world")
			require.NoError(t, err)
			assert.Equal(t, "Hello World", got.Title)
		})
	}
}

func TestOpen_Unsupported(t *testing.T) {
	_, _, err := Open(context.Background(), config.StoreConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)

	_, err = OpenSQL(context.Background(), "etcd", "")
	assert.Error(t, err)
}
