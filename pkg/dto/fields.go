package dto

import "sort"

func present(set map[string]bool) []string {
	fields := make([]string, 0, len(set))
	for name, ok := range set {
		if ok {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}
