package store

import (
	"context"
	"errors"
	"testing"

	"github.com/matst80/council-finder/pkg/catalog"
	"github.com/matst80/council-finder/pkg/source"
	"github.com/matst80/council-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]types.Municipality{
		{Code: "132144", Name: "国分寺市", Prefecture: "13_東京都"},
		{Code: "132101", Name: "小金井市", Prefecture: "13_東京都"},
		{Code: "112089", Name: "所沢市", Prefecture: "11_埼玉県"},
	})
	require.NoError(t, err)
	return c
}

func names(s *Store) []string {
	ret := []string{}
	for m := range s.All() {
		ret = append(ret, m.Name)
	}
	return ret
}

func TestLoadMunicipality(t *testing.T) {
	src := source.NewMemorySource()
	require.NoError(t, src.SetMembers("132101",
		types.Member{Name: "田中", Reading: "たなか", Affiliation: "A"},
		types.Member{Name: "佐藤", Reading: "さとう", Affiliation: "B", SocialHandle: "h1"},
	))
	l := NewLoader(testCatalog(t), src, DefaultLoaderOptions())

	s, err := l.Load(context.Background(), types.Scope{Kind: types.ScopeMunicipality, Id: "132101"})
	require.NoError(t, err)
	assert.Equal(t, []string{"田中", "佐藤"}, names(s))
	assert.Equal(t, types.VariantFlat, s.Variant())
	for m := range s.All() {
		assert.Empty(t, m.Municipality, "single scope members are not tagged")
	}
}

func TestLoadMunicipalityLegacyVariant(t *testing.T) {
	src := source.NewMemorySource()
	src.Set("132101", types.FormatJSON, []byte(`{"議員": [{"議員名": "田中", "政党・会派": "A", "profile_url": "https://example.jp"}]}`))
	l := NewLoader(testCatalog(t), src, DefaultLoaderOptions())

	s, err := l.Load(context.Background(), types.Scope{Kind: types.ScopeMunicipality, Id: "132101"})
	require.NoError(t, err)
	assert.Equal(t, types.VariantLegacy, s.Variant())
	assert.Equal(t, "https://example.jp", s.Members()[0].ProfileURL)
}

func TestLoadMunicipalityFailureIsTerminal(t *testing.T) {
	src := source.NewMemorySource()
	src.Fail("132101", errors.New("404"))
	l := NewLoader(testCatalog(t), src, DefaultLoaderOptions())

	s, err := l.Load(context.Background(), types.Scope{Kind: types.ScopeMunicipality, Id: "132101"})
	assert.Nil(t, s)
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
}

func TestLoadUnknownScope(t *testing.T) {
	l := NewLoader(testCatalog(t), source.NewMemorySource(), DefaultLoaderOptions())
	_, err := l.Load(context.Background(), types.Scope{Kind: types.ScopeMunicipality, Id: "000000"})
	assert.ErrorIs(t, err, types.ErrScopeNotFound)
	_, err = l.Resolve("nowhere")
	assert.ErrorIs(t, err, types.ErrScopeNotFound)
}

func TestLoadPrefectureOrderAndTagging(t *testing.T) {
	src := source.NewMemorySource()
	require.NoError(t, src.SetMembers("132144", types.Member{Name: "鈴木", Affiliation: "X"}))
	require.NoError(t, src.SetMembers("132101",
		types.Member{Name: "太田", Affiliation: "Y"},
		types.Member{Name: "中井", Affiliation: "Y"},
	))
	opts := DefaultLoaderOptions()
	opts.Concurrency = 8
	l := NewLoader(testCatalog(t), src, opts)

	s, err := l.Load(context.Background(), types.Scope{Kind: types.ScopePrefecture, Id: "13_東京都"})
	require.NoError(t, err)
	assert.Equal(t, []string{"太田", "中井", "鈴木"}, names(s), "members follow municipality code order")
	assert.Equal(t, types.VariantAggregate, s.Variant())
	members := s.Members()
	assert.Equal(t, "小金井市", members[0].Municipality)
	assert.Equal(t, "132101", members[0].MunicipalityCode)
	assert.Equal(t, "国分寺市", members[2].Municipality)
}

func TestLoadPrefecturePartialFailure(t *testing.T) {
	for _, tc := range []struct {
		policy   PartialFailurePolicy
		warnings int
	}{
		{PartialFailureSilent, 0},
		{PartialFailureWarn, 1},
	} {
		src := source.NewMemorySource()
		require.NoError(t, src.SetMembers("132144", types.Member{Name: "鈴木", Affiliation: "X", SocialHandle: "h"}))
		src.Fail("132101", errors.New("script error"))
		opts := DefaultLoaderOptions()
		opts.Policy = tc.policy
		l := NewLoader(testCatalog(t), src, opts)

		s, err := l.Load(context.Background(), types.Scope{Kind: types.ScopePrefecture, Id: "13_東京都"})
		require.NoError(t, err)
		assert.Equal(t, []string{"鈴木"}, names(s))
		require.Len(t, s.Failed(), 1)
		assert.Equal(t, "132101", s.Failed()[0].Code)
		assert.Len(t, s.Warnings(), tc.warnings)
	}
}

func TestLoadPrefectureAllFailed(t *testing.T) {
	src := source.NewMemorySource()
	l := NewLoader(testCatalog(t), src, DefaultLoaderOptions())
	_, err := l.Load(context.Background(), types.Scope{Kind: types.ScopePrefecture, Id: "13_東京都"})
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
}

func TestLoadInvalidPayloadIsUnavailable(t *testing.T) {
	src := source.NewMemorySource()
	src.Set("132101", types.FormatJSON, []byte(`[{"氏名": ""}]`))
	l := NewLoader(testCatalog(t), src, DefaultLoaderOptions())
	_, err := l.Load(context.Background(), types.Scope{Kind: types.ScopeMunicipality, Id: "132101"})
	assert.ErrorIs(t, err, types.ErrSourceUnavailable)
	assert.ErrorIs(t, err, source.ErrInvalidRecord)
}

func TestLoadCancelled(t *testing.T) {
	src := source.NewMemorySource()
	require.NoError(t, src.SetMembers("132101", types.Member{Name: "a", Affiliation: "b"}))
	l := NewLoader(testCatalog(t), src, DefaultLoaderOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := l.Load(ctx, types.Scope{Kind: types.ScopeMunicipality, Id: "132101"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePartialFailurePolicy(t *testing.T) {
	p, err := ParsePartialFailurePolicy("WARN")
	assert.NoError(t, err)
	assert.Equal(t, PartialFailureWarn, p)
	p, err = ParsePartialFailurePolicy("")
	assert.NoError(t, err)
	assert.Equal(t, PartialFailureSilent, p)
	_, err = ParsePartialFailurePolicy("loud")
	assert.Error(t, err)
}

func TestNilStoreIsEmpty(t *testing.T) {
	var s *Store
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, names(s))
	assert.Empty(t, s.Members())
	assert.Equal(t, 0, Empty(types.Scope{Id: "x"}).Len())
}
