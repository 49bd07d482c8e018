// Package sliceutils holds small generic slice helpers.
package sliceutils

// Cut returns slice[start:end] with both offsets clamped to the slice
// bounds. Negative offsets count back from the last element, so callers
// never have to pre-check lengths before truncating.
func Cut[T any](slice []T, start, end int) []T {
	if len(slice) == 0 {
		return slice
	}

	if start < 0 {
		start = len(slice) - 1 + start
	}
	if end < 0 {
		end = len(slice) - 1 + end
	}

	return slice[max(start, 0):min(end, len(slice))]
}
