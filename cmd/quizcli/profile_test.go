package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_DefaultAndRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")

	p, err := loadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", p.Server)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "store.json"), p.Store)

	p.Server = "http://quiz.example.com"
	p.Timeout = 0
	require.NoError(t, saveProfile(path, p))

	got, err := loadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://quiz.example.com", got.Server)
	assert.Equal(t, 15, got.Timeout)
}

func TestParseAnswer(t *testing.T) {
	idx, ok, err := parseAnswer("2", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok, err = parseAnswer("  ", 4)
	require.NoError(t, err)
	assert.False(t, ok)

	idx, ok, err = parseAnswer("c", 4)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, _, err = parseAnswer("5", 4)
	assert.Error(t, err)
	_, _, err = parseAnswer("x", 4)
	assert.Error(t, err)
}
