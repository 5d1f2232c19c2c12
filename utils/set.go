package utils

import (
	"cmp"
	"slices"

	"golang.org/x/exp/maps"
)

type MapSet[T comparable] struct {
	internalMap map[T]struct{}
}

func NewMapSet[T comparable]() *MapSet[T] {
	return &MapSet[T]{internalMap: make(map[T]struct{})}
}

func (m *MapSet[T]) Add(elem T) {
	m.internalMap[elem] = struct{}{}
}

// ToSlice returns the elements in no particular order.
func (m *MapSet[T]) ToSlice() []T {
	return maps.Keys(m.internalMap)
}

// SortedSlice returns the elements of an ordered set in ascending order.
func SortedSlice[T cmp.Ordered](set *MapSet[T]) []T {
	elems := set.ToSlice()
	slices.Sort(elems)
	return elems
}
