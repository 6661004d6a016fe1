package overview

import (
	"context"
	"errors"
	"testing"

	"github.com/matst80/council-finder/pkg/catalog"
	"github.com/matst80/council-finder/pkg/source"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	c, err := catalog.New([]types.Municipality{
		{Code: "132144", Name: "国分寺市", Prefecture: "13_東京都"},
		{Code: "132101", Name: "小金井市", Prefecture: "13_東京都"},
		{Code: "132098", Name: "町田市", Prefecture: "13_東京都"},
		{Code: "112089", Name: "所沢市", Prefecture: "11_埼玉県"},
	})
	require.NoError(t, err)
	src := source.NewMemorySource()
	require.NoError(t, src.SetMembers("132101",
		types.Member{Name: "田中", Affiliation: "A", SocialHandle: "tanaka"},
		types.Member{Name: "佐藤", Affiliation: "B"},
		types.Member{Name: "伊藤", Affiliation: "A"},
	))
	require.NoError(t, src.SetMembers("132144", types.Member{Name: "鈴木", Affiliation: "A", SocialHandle: "suzuki"}))
	src.Fail("132098", errors.New("missing"))
	src.Fail("112089", errors.New("missing"))

	ov, err := Build(context.Background(), c, store.NewLoader(c, src, store.DefaultLoaderOptions()), nil)
	require.NoError(t, err)

	require.Len(t, ov.Prefectures, 1, "prefecture without data is skipped")
	tokyo := ov.Prefectures[0]
	assert.Equal(t, "東京都", tokyo.Name)
	require.Len(t, tokyo.Municipalities, 2)
	assert.Equal(t, "132101", tokyo.Municipalities[0].Code)
	assert.Equal(t, 3, tokyo.Municipalities[0].Total)
	assert.Equal(t, 1, tokyo.Municipalities[0].WithHandle)
	assert.Equal(t, 33, tokyo.Municipalities[0].Percent)
	assert.Equal(t, map[string]int{"A": 2, "B": 1}, tokyo.Municipalities[0].Affiliations)
	assert.Equal(t, 100, tokyo.Municipalities[1].Percent)
	assert.Equal(t, 4, ov.Total)
	assert.Equal(t, 2, ov.WithHandle)
	assert.Len(t, ov.Entries(), 2)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 50, Percent(1, 2))
}
