package validation

import (
	"math"
	"sort"
	"strconv"
)

// round1 rounds to one decimal place.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// round2 rounds to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// smartSortValues orders observed values for reporting: values that
// parse as numbers come first in numeric order, then the rest
// alphabetically. "2" sorts before "10", and both before "A".
func smartSortValues(values []string) []string {
	type numbered struct {
		num float64
		raw string
	}
	var nums []numbered
	var strs []string

	for _, v := range values {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			nums = append(nums, numbered{num: f, raw: v})
		} else {
			strs = append(strs, v)
		}
	}

	sort.Slice(nums, func(i, j int) bool {
		if nums[i].num != nums[j].num {
			return nums[i].num < nums[j].num
		}
		return nums[i].raw < nums[j].raw
	})
	sort.Strings(strs)

	out := make([]string, 0, len(values))
	for _, n := range nums {
		out = append(out, n.raw)
	}
	return append(out, strs...)
}

// sortedStrings returns a sorted copy of a string set.
func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
