package crawler

import (
	"github.com/internetarchive/linzstac/internal/pkg/stac"
	"github.com/internetarchive/linzstac/internal/pkg/utils"
)

// SetCollectionFilter replaces the filtered view with the collections whose
// identifier or title contains one of include (any when include is empty),
// none of exclude, and whose extent overlaps extent when it is not nil.
// Exclusion wins over inclusion.
func (s *Session) SetCollectionFilter(include, exclude []string, extent *stac.BBox) {
	working := make([]*stac.Collection, 0, len(s.collections))

	for _, collection := range s.collections {
		if matchesFilter(collection, include, exclude, extent) {
			working = append(working, collection)
		}
	}

	s.working = working
	s.filtered = true

	s.logger.Debug("collection filter set",
		"include", include,
		"exclude", exclude,
		"collections", len(working))
}

func matchesFilter(collection *stac.Collection, include, exclude []string, extent *stac.BBox) bool {
	if len(include) > 0 && !nameContains(collection, include) {
		return false
	}

	if len(exclude) > 0 && nameContains(collection, exclude) {
		return false
	}

	return extent == nil || collection.Overlaps(*extent)
}

func nameContains(collection *stac.Collection, names []string) bool {
	return utils.StringContainsSliceElements(collection.ID, names) ||
		utils.StringContainsSliceElements(collection.Title, names)
}
