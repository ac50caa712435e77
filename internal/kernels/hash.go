package kernels

// Unique returns the distinct values of data in first-occurrence order
func Unique[T comparable](data []T) []T {
	seen := make(map[T]struct{}, len(data))
	out := make([]T, 0, len(data))
	for _, v := range data {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// ValueCounts counts occurrences of each distinct value of data; values come
// back in first-occurrence order, not sorted by count
func ValueCounts[T comparable](data []T) (values []T, counts []int64) {
	idx := make(map[T]int, len(data))
	for _, v := range data {
		if i, ok := idx[v]; ok {
			counts[i]++
			continue
		}
		idx[v] = len(values)
		values = append(values, v)
		counts = append(counts, 1)
	}
	return values, counts
}

// Factorize dictionary-encodes data: codes[i] is the position of data[i] in the
// returned uniques, with naSentinel substituted where isNA reports missing.
// Missing values do not contribute a dictionary entry.
func Factorize[T comparable](data []T, isNA func(T) bool, naSentinel int64) (codes []int64, uniques []T) {
	idx := make(map[T]int64, len(data))
	codes = make([]int64, len(data))
	for i, v := range data {
		if isNA != nil && isNA(v) {
			codes[i] = naSentinel
			continue
		}
		code, ok := idx[v]
		if !ok {
			code = int64(len(uniques))
			idx[v] = code
			uniques = append(uniques, v)
		}
		codes[i] = code
	}
	return codes, uniques
}
