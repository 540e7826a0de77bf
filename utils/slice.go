package utils

// Map returns mapper applied to every element of src, in order.
func Map[T, U any](src []T, mapper func(T) U) []U {
	dst := make([]U, len(src))
	for i := range src {
		dst[i] = mapper(src[i])
	}
	return dst
}

// Filter keeps the elements of src that match; src is not modified.
func Filter[T any](src []T, keep func(T) bool) []T {
	var dst []T
	for _, item := range src {
		if keep(item) {
			dst = append(dst, item)
		}
	}
	return dst
}

func Contains[T comparable](items []T, want T) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
