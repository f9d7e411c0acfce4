package archive

import "sort"

// SortPages orders names by the first run of decimal digits in each name,
// numerically ascending. Names without digits count as 0. Ties keep their
// input order.
func SortPages(names []string) PageList {
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = pageNumber(n)
	}

	order := make([]int, len(names))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return compareNumbers(keys[order[a]], keys[order[b]]) < 0
	})

	out := make(PageList, len(names))
	for i, j := range order {
		out[i] = names[j]
	}
	return out
}

// pageNumber returns the first digit run of name without leading zeros,
// or "" when the name has no digits or the run is all zeros.
func pageNumber(name string) string {
	start := -1
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= '0' && c <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return trimZeros(name[start:i])
		}
	}
	if start >= 0 {
		return trimZeros(name[start:])
	}
	return ""
}

func trimZeros(digits string) string {
	i := 0
	for i < len(digits) && digits[i] == '0' {
		i++
	}
	return digits[i:]
}

// compareNumbers compares two zero-trimmed digit strings of any length.
func compareNumbers(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
