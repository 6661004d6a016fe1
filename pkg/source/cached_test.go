package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matst80/council-finder/pkg/cache"
	"github.com/matst80/council-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedSourceReadsThrough(t *testing.T) {
	mem := NewMemorySource()
	mem.Set("132101", types.FormatScript, []byte(`window.a = [];`))
	src := NewCachedSource(mem, cache.NewMemory(), time.Minute, nil)
	m := types.Municipality{Code: "132101", Name: "小金井市"}
	ctx := context.Background()

	first, err := src.Fetch(ctx, m)
	require.NoError(t, err)
	second, err := src.Fetch(ctx, m)
	require.NoError(t, err)

	assert.Equal(t, 1, mem.Fetches("132101"))
	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, types.FormatScript, second.Format)
	assert.Equal(t, m, second.Municipality)

	require.NoError(t, src.Invalidate(ctx, "132101"))
	_, err = src.Fetch(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Fetches("132101"))
}

func TestCachedSourceDoesNotCacheFailures(t *testing.T) {
	mem := NewMemorySource()
	mem.Fail("1", errors.New("boom"))
	src := NewCachedSource(mem, cache.NewMemory(), time.Minute, nil)
	m := types.Municipality{Code: "1"}

	_, err := src.Fetch(context.Background(), m)
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
	_, err = src.Fetch(context.Background(), m)
	assert.Error(t, err)
	assert.Equal(t, 2, mem.Fetches("1"))
}
