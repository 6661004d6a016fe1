package session

import (
	"context"
	"testing"
	"time"

	"github.com/matst80/council-finder/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager(t *testing.T) {
	m := NewManager(testLoader(t, store.DefaultLoaderOptions()), Options{})
	s, done := m.Create(context.Background(), koganei)
	assert.True(t, <-done)
	assert.NotEmpty(t, s.Id)

	got, err := m.Get(s.Id)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Len(t, got.View().Rows, 2)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, 0, m.Prune(time.Hour))
	assert.Equal(t, 1, m.Prune(-time.Second))
	assert.Equal(t, 0, m.Len())
}
