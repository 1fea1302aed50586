package utils

import (
	"github.com/zeebo/xxh3"
)

// DedupeURLs returns URLs without duplicates, comparing their xxh3 hashes.
func DedupeURLs(URLs []string) []string {
	seen := make(map[uint64]struct{}, len(URLs))
	deduped := make([]string, 0, len(URLs))

	for _, URL := range URLs {
		hash := xxh3.HashString(URL)
		if _, ok := seen[hash]; ok {
			continue
		}
		seen[hash] = struct{}{}
		deduped = append(deduped, URL)
	}

	return deduped
}
