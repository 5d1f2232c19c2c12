package utils

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestMaxBy(t *testing.T) {
	type stay struct {
		id  string
		out int
	}
	stays := []stay{{"a", 3}, {"b", 9}, {"c", 9}, {"d", 1}}

	best, ok := MaxBy(stays, func(x, y stay) bool { return x.out < y.out })

	assert.True(t, ok)
	assert.Equal(t, "b", best.id)

	_, ok = MaxBy([]stay{}, func(x, y stay) bool { return x.out < y.out })
	assert.False(t, ok)
}

func TestChunk(t *testing.T) {
	got := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if diff := cmp.Diff([][]int{{1, 2}, {3, 4}, {5}}, got); diff != "" {
		t.Errorf("Chunk mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, Chunk([]int{}, 25))
}

func TestSortedSlice(t *testing.T) {
	set := NewMapSet[string]()
	for _, date := range []string{"2024-01-03", "2024-01-01", "2024-01-03", "2024-01-02"} {
		set.Add(date)
	}

	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, SortedSlice(set))
}
