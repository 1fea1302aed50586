// Package tiles turns the items matched by a search into ranked groups of
// asset locations.
package tiles

import (
	"cmp"
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/internetarchive/linzstac/internal/pkg/stac"
)

var resolutionHintRegex = regexp.MustCompile(`(\d+(\.\d+)?)m\s+`)

// MatchingItems is the result of the search of one collection.
type MatchingItems struct {
	Title string
	Items []*stac.Item
}

// TileGroup is a collection title with the absolute locations of its matched assets.
type TileGroup struct {
	Title string   `yaml:"title"`
	Hrefs []string `yaml:"hrefs"`
}

// ExtractResolutionHint returns the resolution in metres embedded in a title
// such as "Southland 1m DEM (2020-2024)", or +Inf when there is none.
func ExtractResolutionHint(title string) float64 {
	match := resolutionHintRegex.FindStringSubmatch(title)
	if match == nil {
		return math.Inf(1)
	}

	hint, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return math.Inf(1)
	}

	return hint
}

// ResolveAssetReference returns the location of an asset: references starting
// with "./" are relative to the directory of the item, anything else is used as is.
func ResolveAssetReference(itemHref, ref string) string {
	if !strings.HasPrefix(ref, "./") {
		return ref
	}
	return stac.Dir(itemHref) + "/" + strings.TrimPrefix(ref, "./")
}

// GetHrefs resolves the assets of every match and returns one group per
// match, finest resolution first.
func GetHrefs(matches []MatchingItems) []TileGroup {
	groups := make([]TileGroup, 0, len(matches))

	for _, match := range matches {
		items := slices.Clone(match.Items)
		slices.SortFunc(items, func(a, b *stac.Item) int {
			return cmp.Compare(a.SelfHref(), b.SelfHref())
		})

		var hrefs []string
		for _, item := range items {
			itemHref := item.SelfHref()
			for _, key := range slices.Sorted(maps.Keys(item.Assets)) {
				hrefs = append(hrefs, ResolveAssetReference(itemHref, item.Assets[key].Href))
			}
		}

		groups = append(groups, TileGroup{Title: match.Title, Hrefs: hrefs})
	}

	Sort(groups)

	return groups
}

// Sort orders groups by ascending resolution hint, then by title.
func Sort(groups []TileGroup) {
	slices.SortStableFunc(groups, func(a, b TileGroup) int {
		if c := cmp.Compare(ExtractResolutionHint(a.Title), ExtractResolutionHint(b.Title)); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})
}
