package utils

import "slices"

func SliceAppendUnique[S ~[]E, E comparable](s S, v E) S {
	if slices.Contains(s, v) {
		return s
	}
	s = append(s, v)
	return s
}
