package utils

// MaxBy returns the element for which less reports every other element as
// smaller. Ties keep the first occurrence.
func MaxBy[T any](elems []T, less func(a, b T) bool) (T, bool) {
	var best T
	if len(elems) == 0 {
		return best, false
	}
	best = elems[0]
	for _, elem := range elems[1:] {
		if less(best, elem) {
			best = elem
		}
	}
	return best, true
}

func Filter[T any](elems []T, keep func(T) bool) []T {
	filtered := make([]T, 0, len(elems))
	for _, elem := range elems {
		if keep(elem) {
			filtered = append(filtered, elem)
		}
	}
	return filtered
}

func Chunk[T any](elems []T, size int) [][]T {
	var chunks [][]T
	for size < len(elems) {
		elems, chunks = elems[size:], append(chunks, elems[:size])
	}
	if len(elems) > 0 {
		chunks = append(chunks, elems)
	}
	return chunks
}
