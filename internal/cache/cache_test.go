package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var out []string
	hit, err := c.Get(ctx, KeyQuizzes, &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, KeyQuizzes, []string{"Đề 01", "Đề 02"}, time.Minute))
	hit, err = c.Get(ctx, KeyQuizzes, &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"Đề 01", "Đề 02"}, out)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", 1, time.Second))
	now = now.Add(2 * time.Second)

	var v int
	hit, err := c.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	require.NoError(t, c.Set(ctx, KeyQuizzes, 1, 0))
	require.NoError(t, c.Set(ctx, QuestionsBySubjectKey("Mạng"), 2, 0))
	require.NoError(t, c.Set(ctx, "other", 3, 0))

	require.NoError(t, c.DeletePattern(ctx, CatalogGlob))

	var v int
	hit, _ := c.Get(ctx, KeyQuizzes, &v)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, QuestionsBySubjectKey("Mạng"), &v)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "other", &v)
	assert.True(t, hit)

	require.NoError(t, c.Delete(ctx, "other"))
	hit, _ = c.Get(ctx, "other", &v)
	assert.False(t, hit)
}

func TestNew_FallsBackToMemory(t *testing.T) {
	_, ok := New(nil, nil).(*MemoryCache)
	assert.True(t, ok)
}

func TestMatchGlob(t *testing.T) {
	assert.True(t, matchGlob(CatalogGlob, QuestionsBySubjectKey("TCP/IP")))
	assert.True(t, matchGlob("quiz:*:quizzes", KeyQuizzes))
	assert.False(t, matchGlob(CatalogGlob, "session:1"))
}
