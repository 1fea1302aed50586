package utils

import "strings"

// StringContainsSliceElements if the string contains one of the elements
// of a slice
func StringContainsSliceElements(target string, slice []string) bool {
	for _, elem := range slice {
		if strings.Contains(target, elem) {
			return true
		}
	}
	return false
}

// DedupeStrings returns input without its duplicates, keeping the first occurrence
func DedupeStrings(input []string) []string {
	keys := make(map[string]bool)
	list := []string{}
	for _, entry := range input {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}
