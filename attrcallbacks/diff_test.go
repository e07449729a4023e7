package attrcallbacks_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/attribute-callbacks-go/attrcallbacks"
)

func values(elements []attrcallbacks.Element) []any {
	out := make([]any, 0, len(elements))
	for _, element := range elements {
		out = append(out, element.Value)
	}

	return out
}

//nolint:funlen
func Test_Diff_Sequences(t *testing.T) {
	tests := []struct {
		name        string
		before      any
		after       any
		wantAdded   []any
		wantRemoved []any
	}{
		{
			name:        "element_appended",
			before:      []string{"red"},
			after:       []string{"red", "blue"},
			wantAdded:   []any{"blue"},
			wantRemoved: []any{},
		},
		{
			name:        "element_removed",
			before:      []string{"red", "blue"},
			after:       []string{"blue"},
			wantAdded:   []any{},
			wantRemoved: []any{"red"},
		},
		{
			name:        "identical_sequences",
			before:      []string{"red", "blue"},
			after:       []string{"red", "blue"},
			wantAdded:   []any{},
			wantRemoved: []any{},
		},
		{
			name:        "reordering_is_not_a_change",
			before:      []int{1, 2, 3},
			after:       []int{3, 2, 1},
			wantAdded:   []any{},
			wantRemoved: []any{},
		},
		{
			name:        "nil_before_means_everything_added",
			before:      nil,
			after:       []string{"a", "b"},
			wantAdded:   []any{"a", "b"},
			wantRemoved: []any{},
		},
		{
			name:        "nil_after_means_everything_removed",
			before:      []string{"a", "b"},
			after:       []string(nil),
			wantAdded:   []any{},
			wantRemoved: []any{"a", "b"},
		},
		{
			name:        "duplicate_present_on_both_sides_is_no_change",
			before:      []string{"a"},
			after:       []string{"a", "a"},
			wantAdded:   []any{},
			wantRemoved: []any{},
		},
		{
			name:        "duplicates_missing_on_other_side_are_reported_each_time",
			before:      []string{"a"},
			after:       []string{"b", "a", "b"},
			wantAdded:   []any{"b", "b"},
			wantRemoved: []any{},
		},
		{
			name:        "additions_keep_sequence_order",
			before:      []int{2},
			after:       []int{5, 2, 1, 4},
			wantAdded:   []any{5, 1, 4},
			wantRemoved: []any{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			diff, err := attrcallbacks.Diff(tc.before, tc.after)

			require.NoError(t, err)
			assert.Equal(t, tc.wantAdded, values(diff.Added))
			assert.Equal(t, tc.wantRemoved, values(diff.Removed))
		})
	}
}

func Test_Diff_When_MapValueIsReplaced_Then_OneRemovalAndOneAddition(t *testing.T) {
	// arrange
	before := map[string]string{"a": "5"}
	after := map[string]string{"a": "6"}

	// act
	diff, err := attrcallbacks.Diff(before, after)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []attrcallbacks.Element{{Key: "a", Value: "6", Keyed: true}}, diff.Added)
	assert.Equal(t, []attrcallbacks.Element{{Key: "a", Value: "5", Keyed: true}}, diff.Removed)
}

func Test_Diff_When_MapsDiffer_Then_PairsAreReportedInKeyOrder(t *testing.T) {
	// arrange
	before := map[string]int{"z": 1, "b": 2}
	after := map[string]int{"z": 1, "c": 3, "a": 4}

	// act
	diff, err := attrcallbacks.Diff(before, after)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []attrcallbacks.Element{
		{Key: "a", Value: 4, Keyed: true},
		{Key: "c", Value: 3, Keyed: true},
	}, diff.Added)
	assert.Equal(t, []attrcallbacks.Element{{Key: "b", Value: 2, Keyed: true}}, diff.Removed)
}

func Test_Diff_When_MapKeysRenderAlike_Then_OrderIsStillDeterministic(t *testing.T) {
	// arrange
	after := map[any]any{"1": "text", 1: "int", int64(1): "int64"}
	want := []attrcallbacks.Element{
		{Key: 1, Value: "int", Keyed: true},
		{Key: int64(1), Value: "int64", Keyed: true},
		{Key: "1", Value: "text", Keyed: true},
	}

	for range 50 {
		// act
		diff, err := attrcallbacks.Diff(nil, after)

		// assert
		require.NoError(t, err)
		require.Equal(t, want, diff.Added)
	}
}

func Test_Diff_When_SameCollection_Then_DiffIsEmpty(t *testing.T) {
	for _, collection := range []any{
		[]string{"red", "blue"},
		map[string]string{"a": "1", "b": "2"},
		[]int{},
	} {
		diff, err := attrcallbacks.Diff(collection, collection)

		require.NoError(t, err)
		assert.True(t, diff.IsEmpty())
	}
}

func Test_Diff_When_InputsAreDiffed_Then_TheyAreNotModified(t *testing.T) {
	// arrange
	before := []string{"a", "b"}
	after := []string{"b", "c"}
	tags := map[string]string{"k": "v"}

	// act
	_, err := attrcallbacks.Diff(before, after)
	require.NoError(t, err)
	_, err = attrcallbacks.Diff(tags, map[string]string{})
	require.NoError(t, err)

	// assert
	assert.Equal(t, []string{"a", "b"}, before)
	assert.Equal(t, []string{"b", "c"}, after)
	assert.Equal(t, map[string]string{"k": "v"}, tags)
}

func Test_Diff_When_NotCollections_Then_ErrNotCollection(t *testing.T) {
	tests := []struct {
		name   string
		before any
		after  any
	}{
		{name: "scalars", before: "a", after: "b"},
		{name: "sequence_and_map", before: []string{"a"}, after: map[string]string{"a": "b"}},
		{name: "sequence_and_scalar", before: []string{"a"}, after: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := attrcallbacks.Diff(tc.before, tc.after)

			assert.ErrorIs(t, err, attrcallbacks.ErrNotCollection)
		})
	}
}

func Test_DiffKind_When_DeclaredKindDoesNotMatchValue_Then_ErrNotCollection(t *testing.T) {
	_, err := attrcallbacks.DiffKind(attrcallbacks.KindMap, []string{"a"}, nil)

	assert.ErrorIs(t, err, attrcallbacks.ErrNotCollection)
}

func Test_IsCollection(t *testing.T) {
	assert.True(t, attrcallbacks.IsCollection([]string{}))
	assert.True(t, attrcallbacks.IsCollection(map[string]int{}))
	assert.False(t, attrcallbacks.IsCollection("text"))
	assert.False(t, attrcallbacks.IsCollection(nil))
}
