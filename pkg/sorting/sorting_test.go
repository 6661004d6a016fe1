package sorting

import (
	"errors"
	"slices"
	"testing"

	"github.com/matst80/council-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMembers() []types.Member {
	return []types.Member{
		{Name: "田中", Reading: "たなか", Affiliation: "A"},
		{Name: "佐藤", Reading: "さとう", Affiliation: "B", SocialHandle: "h1"},
		{Name: "鈴木", Affiliation: "A", SocialHandle: "h2"},
		{Name: "高橋", Reading: "たかはし", Affiliation: "B"},
		{Name: "伊藤", Reading: "いとう", Affiliation: "A"},
	}
}

func namesOf(members []types.Member) []string {
	ret := make([]string, len(members))
	for i, m := range members {
		ret[i] = m.Name
	}
	return ret
}

func TestSortBySocialHandle(t *testing.T) {
	members := []types.Member{
		{Name: "田中", Reading: "たなか", Affiliation: "A"},
		{Name: "佐藤", Reading: "さとう", Affiliation: "B", SocialHandle: "h1"},
	}
	res := Apply(members, types.SortSocialHandle, true)
	assert.Equal(t, []string{"田中", "佐藤"}, namesOf(res), "absent sorts before present ascending")
	res = Apply(members, types.SortSocialHandle, false)
	assert.Equal(t, []string{"佐藤", "田中"}, namesOf(res))
}

func TestSortByReadingMissingFirst(t *testing.T) {
	res := Apply(testMembers(), types.SortReading, true)
	assert.Equal(t, []string{"鈴木", "伊藤", "佐藤", "高橋", "田中"}, namesOf(res))
}

func TestSortIsStableInBothDirections(t *testing.T) {
	res := Apply(testMembers(), types.SortAffiliation, true)
	assert.Equal(t, []string{"田中", "鈴木", "伊藤", "佐藤", "高橋"}, namesOf(res))

	res = Apply(testMembers(), types.SortAffiliation, false)
	assert.Equal(t, []string{"佐藤", "高橋", "田中", "鈴木", "伊藤"}, namesOf(res))
}

func TestSortIsPermutation(t *testing.T) {
	in := testMembers()
	for _, field := range FieldsFor(types.VariantAggregate) {
		for _, asc := range []bool{true, false} {
			out := Apply(in, field, asc)
			require.Len(t, out, len(in))
			a := namesOf(in)
			b := namesOf(out)
			slices.Sort(a)
			slices.Sort(b)
			assert.Equal(t, a, b, "field %s asc %v", field, asc)
		}
	}
}

func TestSortDoesNotModifyInput(t *testing.T) {
	in := testMembers()
	before := namesOf(in)
	_ = Apply(in, types.SortReading, false)
	assert.Equal(t, before, namesOf(in))
}

func TestToggleTwiceRestoresOrder(t *testing.T) {
	s := NewSorter(CodePoint{})
	state := State{}.Activate(types.SortName)
	first := s.ApplyState(testMembers(), state)

	state = state.Activate(types.SortName)
	assert.False(t, state.Ascending)
	toggled := s.ApplyState(first, state)

	state = state.Activate(types.SortName)
	assert.True(t, state.Ascending)
	again := s.ApplyState(toggled, state)

	assert.Equal(t, namesOf(first), namesOf(again))
}

func TestStateActivate(t *testing.T) {
	var state State
	assert.False(t, state.IsActive())
	assert.Equal(t, "", state.Direction())

	state = state.Activate(types.SortReading)
	assert.Equal(t, State{Field: types.SortReading, Ascending: true}, state)
	state = state.Activate(types.SortReading)
	assert.Equal(t, "desc", state.Direction())
	state = state.Activate(types.SortAffiliation)
	assert.Equal(t, State{Field: types.SortAffiliation, Ascending: true}, state, "new field resets to ascending")
}

func TestInactiveStateKeepsOrder(t *testing.T) {
	in := testMembers()
	out := NewSorter(nil).ApplyState(in, State{})
	assert.Equal(t, namesOf(in), namesOf(out))
}

func TestCheckField(t *testing.T) {
	assert.NoError(t, CheckField(types.VariantAggregate, types.SortMunicipality))
	err := CheckField(types.VariantFlat, types.SortMunicipality)
	assert.True(t, errors.Is(err, ErrFieldNotAvailable))
	assert.NoError(t, CheckField(types.VariantLegacy, types.SortSocialHandle))
}

func TestCollators(t *testing.T) {
	c, err := NewCollator("codepoint")
	require.NoError(t, err)
	assert.Less(t, c.Compare("あ", "い"), 0)

	c, err = NewCollator("")
	require.NoError(t, err)
	assert.Less(t, c.Compare("さとう", "たなか"), 0)
	assert.Less(t, c.Compare("", "あ"), 0)
	assert.Equal(t, 0, c.Compare("たなか", "たなか"))

	_, err = NewCollator("not a tag!")
	assert.Error(t, err)
}
