package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestOffsetSurvivesReopen(t *testing.T) {
	s, path := openTemp(t)

	off, err := s.Offset()
	require.NoError(t, err)
	assert.Zero(t, off)

	require.NoError(t, s.SetOffset(12345))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	off, err = s.Offset()
	require.NoError(t, err)
	assert.Equal(t, 12345, off)
}

func TestSetOffsetRejectsNegative(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()
	require.Error(t, s.SetOffset(-1))
}

func TestTouchChat(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	first := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	chat, err := s.TouchChat(-100123, "news room", first)
	require.NoError(t, err)
	assert.Equal(t, 1, chat.Messages)

	chat, err = s.TouchChat(-100123, "", second)
	require.NoError(t, err)
	assert.Equal(t, 2, chat.Messages)
	assert.Equal(t, "news room", chat.Title)

	got, err := s.Chat(-100123)
	require.NoError(t, err)
	assert.True(t, got.FirstSeen.Equal(first))
	assert.True(t, got.LastSeen.Equal(second))
}

func TestChatNotFound(t *testing.T) {
	s, _ := openTemp(t)
	defer s.Close()

	_, err := s.Chat(99)
	require.ErrorIs(t, err, ErrNotFound)
}
