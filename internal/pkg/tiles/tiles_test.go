package tiles

import (
	"math"
	"testing"

	"github.com/internetarchive/linzstac/internal/pkg/stac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractResolutionHint(t *testing.T) {
	tests := []struct {
		title    string
		expected float64
	}{
		{"100m elevation", 100},
		{"0.96m elevation", 0.96},
		{"Southland LiDAR 1m DEM (2020-2024)", 1},
		{"Wellington 0.075m Urban Aerial Photos (2021)", 0.075},
		{"no value", math.Inf(1)},
		{"ends with 8m", math.Inf(1)},
		{"", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractResolutionHint(tt.title))
		})
	}
}

func TestResolveAssetReference(t *testing.T) {
	itemHref := "https://nz-elevation.s3.ap-southeast-2.amazonaws.com/southland/dem_1m/2193/CE10_10000_0101.json"

	assert.Equal(t,
		"https://nz-elevation.s3.ap-southeast-2.amazonaws.com/southland/dem_1m/2193/CE10_10000_0101.tiff",
		ResolveAssetReference(itemHref, "./CE10_10000_0101.tiff"))

	absolute := "https://example.org/tile.tiff"
	assert.Equal(t, absolute, ResolveAssetReference(itemHref, absolute))

	assert.Equal(t, "/data/southland/tile.tiff", ResolveAssetReference("/data/southland/item.json", "./tile.tiff"))
	assert.Equal(t, "./tile.tiff", ResolveAssetReference("item.json", "./tile.tiff"))
}

func TestSort(t *testing.T) {
	groups := []TileGroup{
		{Title: "Untitled survey"},
		{Title: "100m elevation"},
		{Title: "Canterbury 1m DEM"},
		{Title: "0.96m elevation"},
		{Title: "Auckland 1m DEM"},
		{Title: "Another survey"},
	}

	Sort(groups)

	titles := make([]string, 0, len(groups))
	for _, g := range groups {
		titles = append(titles, g.Title)
	}

	assert.Equal(t, []string{
		"0.96m elevation",
		"Auckland 1m DEM",
		"Canterbury 1m DEM",
		"100m elevation",
		"Another survey",
		"Untitled survey",
	}, titles)
}

func TestGetHrefs(t *testing.T) {
	matches := []MatchingItems{
		{
			Title: "Otago 8m DEM (2012)",
			Items: []*stac.Item{
				{
					ID:     "b",
					Href:   "https://bucket.example/otago/b.json",
					Assets: map[string]stac.Asset{"visual": {Href: "./b.tiff"}},
				},
			},
		},
		{
			Title: "Southland 1m DEM (2020-2024)",
			Items: []*stac.Item{
				{
					ID:   "tile-2",
					Href: "https://bucket.example/southland/tile-2.json",
					Assets: map[string]stac.Asset{
						"visual":   {Href: "./tile-2.tiff"},
						"metadata": {Href: "https://other.example/tile-2.xml"},
					},
				},
				{
					ID:     "tile-1",
					Href:   "https://bucket.example/southland/tile-1.json",
					Assets: map[string]stac.Asset{"visual": {Href: "./tile-1.tiff"}},
					Links:  []stac.Link{{Rel: stac.RelSelf, Href: "https://mirror.example/southland/tile-1.json"}},
				},
			},
		},
	}

	groups := GetHrefs(matches)
	require.Len(t, groups, 2)

	assert.Equal(t, "Southland 1m DEM (2020-2024)", groups[0].Title)
	assert.Equal(t, []string{
		"https://other.example/tile-2.xml",
		"https://bucket.example/southland/tile-2.tiff",
		"https://mirror.example/southland/tile-1.tiff",
	}, groups[0].Hrefs, "items ordered by location, assets by key")

	assert.Equal(t, "Otago 8m DEM (2012)", groups[1].Title)
	assert.Equal(t, []string{"https://bucket.example/otago/b.tiff"}, groups[1].Hrefs)
}

func TestGetHrefsEmpty(t *testing.T) {
	assert.Empty(t, GetHrefs(nil))
}
