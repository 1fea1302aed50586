package elevation

import (
	"context"
	"strings"
	"testing"

	"github.com/internetarchive/linzstac/e2e"
	"github.com/internetarchive/linzstac/internal/pkg/config"
	"github.com/internetarchive/linzstac/internal/pkg/crawler"
	"github.com/internetarchive/linzstac/internal/pkg/tiles"
)

func TestPointInSouthland(t *testing.T) {
	e2e.SkipUnlessEnabled(t)

	session := e2e.Session(t, config.Elevation)

	groups, err := crawler.Search(context.Background(), session, crawler.SearchParams{
		Spatial: &crawler.SpatialParams{Lat: -45.0, Lon: 167.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(groups) == 0 {
		t.Fatal("expected datasets covering -45.0, 167.0")
	}

	first := tiles.ExtractResolutionHint(groups[0].Title)
	for _, group := range groups[1:] {
		if hint := tiles.ExtractResolutionHint(group.Title); hint < first {
			t.Errorf("%q (%gm) ranked after %q (%gm)", group.Title, hint, groups[0].Title, first)
		}
	}
}

func TestPointOutsideEveryExtent(t *testing.T) {
	e2e.SkipUnlessEnabled(t)

	session := e2e.Session(t, config.Elevation)

	groups, err := crawler.Search(context.Background(), session, crawler.SearchParams{
		Spatial: &crawler.SpatialParams{Lat: -90.0, Lon: -180.0},
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(groups) != 0 {
		t.Errorf("expected no dataset, got %d", len(groups))
	}
}

func TestNameFilter(t *testing.T) {
	e2e.SkipUnlessEnabled(t)

	session := e2e.Session(t, config.Elevation)

	groups, err := crawler.Search(context.Background(), session, crawler.SearchParams{
		Include: []string{"Southland"},
		Exclude: []string{"DEM"},
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, group := range groups {
		if strings.Contains(group.Title, "DEM") {
			t.Errorf("excluded dataset returned: %q", group.Title)
		}
	}
}
