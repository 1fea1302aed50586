package crawler

import (
	"context"

	"github.com/internetarchive/linzstac/internal/pkg/tiles"
)

// SearchParams are the filters of a search.
type SearchParams struct {
	Spatial *SpatialParams
	Include []string
	Exclude []string

	// AllCollections allows a search without any spatial or name filter.
	AllCollections bool
}

// Search sets the collection filter of session from params and runs the
// search. A search with no spatial filter and no name to include is refused
// with ErrNoFilterProvided unless AllCollections is set.
func Search(ctx context.Context, session *Session, params SearchParams) ([]tiles.TileGroup, error) {
	if params.Spatial != nil {
		corners, err := params.Spatial.Resolve()
		if err != nil {
			return nil, err
		}

		rect, err := QueryRect(corners...)
		if err != nil {
			return nil, err
		}

		session.SetCollectionFilter(params.Include, params.Exclude, rect)

		return session.GetTiles(ctx, corners...)
	}

	switch {
	case len(params.Include) > 0:
		session.SetCollectionFilter(params.Include, params.Exclude, nil)
	case params.AllCollections:
		session.SetCollectionFilter(nil, params.Exclude, nil)
	default:
		return nil, ErrNoFilterProvided
	}

	return session.GetAllTiles(ctx), nil
}
